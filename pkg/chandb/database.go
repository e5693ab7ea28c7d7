package chandb

import (
	"errors"
	"fmt"

	magnify "github.com/bnlif/magnify_go/pkg"
	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

// Schema creates the bad channel table on a local database.
const Schema = `CREATE TABLE IF NOT EXISTS BadChannels (
	Channel   INTEGER NOT NULL,
	Plane     INTEGER NOT NULL,
	StartTick INTEGER NOT NULL,
	EndTick   INTEGER NOT NULL,
	MinRun    INTEGER NOT NULL,
	MaxRun    INTEGER NOT NULL
)`

type BadChannelEntry struct {
	Channel   int `db:"Channel"`
	Plane     int `db:"Plane"`
	StartTick int `db:"StartTick"`
	EndTick   int `db:"EndTick"`
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// OpenDatabase connects with any registered driver, "mysql" or "sqlite".
func OpenDatabase(driver string, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s database: %w", driver, err)
	}
	return db, nil
}

// Connect opens the database selected by the configuration: a local file
// when DBFile is set, the mysql server otherwise.
func Connect(config magnify.Configuration) (*sqlx.DB, error) {
	if config.DBFile != "" {
		driver := config.DBDriver
		if driver == "" {
			driver = "sqlite"
		}
		return OpenDatabase(driver, config.DBFile)
	}
	return ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
}

func CreateSchema(db *sqlx.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// LoadBadChannels returns the bad channel regions valid for runNumber.
func LoadBadChannels(db *sqlx.DB, runNumber int) ([]magnify.BadChannelRegion, error) {
	query := "SELECT Channel, Plane, StartTick, EndTick FROM BadChannels WHERE MinRun <= ? AND MaxRun >= ? ORDER BY Channel, StartTick"

	config := magnify.GetConfiguration()
	if config.Verbosity > 0 {
		message := fmt.Sprintf("Reading bad channels for run %d from database", runNumber)
		magnify.GetLogger().Info(message, "database")
	}
	if config.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		magnify.GetLogger().Info(message, "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}
	defer rows.Close()

	regions := make([]magnify.BadChannelRegion, 0)
	for rows.Next() {
		result := BadChannelEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		regions = append(regions, magnify.BadChannelRegion{
			Channel:   result.Channel,
			Plane:     magnify.Plane(result.Plane),
			StartTick: result.StartTick,
			EndTick:   result.EndTick,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}
	return regions, nil
}

func LoadBadChannelSet(db *sqlx.DB, runNumber int) (*magnify.BadChannelSet, error) {
	regions, err := LoadBadChannels(db, runNumber)
	if err != nil {
		logger := magnify.GetLogger()
		errMessage := fmt.Errorf("error getting bad channels from database: %w", err)
		logger.Error(errMessage.Error())
		return nil, errMessage
	}
	return magnify.NewBadChannelSet(regions), nil
}

// InsertBadChannels stores regions valid for runs minRun to maxRun in one transaction.
func InsertBadChannels(db *sqlx.DB, minRun int, maxRun int, regions []magnify.BadChannelRegion) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	query := "INSERT INTO BadChannels (Channel, Plane, StartTick, EndTick, MinRun, MaxRun) VALUES (?, ?, ?, ?, ?, ?)"
	for _, r := range regions {
		_, err := tx.Exec(query, r.Channel, int(r.Plane), r.StartTick, r.EndTick, minRun, maxRun)
		if err != nil {
			return fmt.Errorf("error inserting channel %d: %w", r.Channel, errors.Join(err, tx.Rollback()))
		}
	}
	return tx.Commit()
}
