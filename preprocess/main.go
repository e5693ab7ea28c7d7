package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	magnify "github.com/bnlif/magnify_go/pkg"
	"github.com/bnlif/magnify_go/pkg/chandb"
	"github.com/bnlif/magnify_go/pkg/h5store"
	sqlx "github.com/jmoiron/sqlx"
)

var configuration magnify.Configuration

var logger magnify.Logger

func init() {
	logger = magnify.NewStdLogger()
}

// dbSink also stores merged bad channel regions in the channel database,
// valid for the configured run only.
type dbSink struct {
	sink
	db  *sqlx.DB
	run int
}

func (s dbSink) WriteBadChannels(tag string, regions []magnify.BadChannelRegion) error {
	if err := s.sink.WriteBadChannels(tag, regions); err != nil {
		return err
	}
	if err := chandb.CreateSchema(s.db); err != nil {
		return err
	}
	return chandb.InsertBadChannels(s.db, s.run, s.run, regions)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	fileIn := flag.String("in", "", "Input file, overrides config")
	outDir := flag.String("out-dir", "", "Output directory, overrides config")
	inTag := flag.String("in-tag", "", "Input tag, overrides config")
	outTag := flag.String("out-tag", "", "Output tag, overrides config")
	suffix := flag.String("suffix", "", "Output file suffix, overrides config")
	baseline := flag.Bool("baseline", false, "Subtract the per-channel median baseline")
	mode := flag.String("mode", "", "Output file mode: create or update")
	kind := flag.String("kind", "", "Dataset kind of the merged grids, raw or decon")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	overrideString(&configuration.FileIn, *fileIn)
	overrideString(&configuration.OutDir, *outDir)
	overrideString(&configuration.InTag, *inTag)
	overrideString(&configuration.OutTag, *outTag)
	overrideString(&configuration.Suffix, *suffix)
	if *baseline {
		configuration.SubtractBaseline = true
	}
	if *mode != "" {
		configuration.FileMode, err = magnify.ParseFileMode(*mode)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if *kind != "" {
		if err := configuration.SetKind(*kind); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}
	magnify.SetConfiguration(configuration)
	magnify.SetLogger(logger)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if err := run(configuration); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func run(config magnify.Configuration) (err error) {
	outPath := outputPath(config.FileIn, config.OutDir, config.Suffix)
	logger.Info(fmt.Sprintf("input file: %s", config.FileIn), "main")
	logger.Info(fmt.Sprintf("output file: %s", outPath), "main")

	in, err := h5store.Open(config.FileIn)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, in.Close())
	}()

	out, err := h5store.Create(outPath, config.FileMode, config.CompressionLevel)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	var dst sink = out
	if config.DBFile != "" {
		dbConn, err := chandb.Connect(config)
		if err != nil {
			return fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()
		dst = dbSink{sink: out, db: dbConn, run: config.RunNumber}
	}

	if err := preprocess(in, dst, config); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Now try: magnify -in %s", outPath), "main")
	return nil
}
