package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	magnify "github.com/bnlif/magnify_go/pkg"
	"github.com/bnlif/magnify_go/pkg/chandb"
	"github.com/bnlif/magnify_go/pkg/h5store"
)

var configuration magnify.Configuration

var logger magnify.Logger

func init() {
	logger = magnify.NewStdLogger()
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	fileIn := flag.String("in", "", "Input file, overrides config")
	tag := flag.String("tag", "", "Grid tag suffix, e.g. decon, overrides config")
	kind := flag.String("kind", "", "Dataset kind, raw or decon, overrides the stored kind")
	threshold := flag.Float64("threshold", -1, "Global threshold, overrides config")
	channel := flag.Int("channel", -1, "Channel to project")
	tick := flag.Int("tick", -1, "Tick to project")
	plotDir := flag.String("plot-dir", "", "Output directory for plots, overrides config")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *fileIn != "" {
		configuration.FileIn = *fileIn
	}
	if *tag != "" {
		configuration.InTag = *tag
	}
	if *kind != "" {
		if err := configuration.SetKind(*kind); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if *threshold >= 0 {
		configuration.Threshold = *threshold
	}
	if *channel >= 0 {
		configuration.Channel = *channel
	}
	if *tick >= 0 {
		configuration.Tick = *tick
	}
	if *plotDir != "" {
		configuration.PlotDir = *plotDir
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

func run(config magnify.Configuration) (err error) {
	file, err := h5store.Open(config.FileIn)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	if config.Verbosity > 0 {
		tags, err := file.Tags()
		if err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Tags in %s: %v", config.FileIn, tags), "main")
	}

	var mask *magnify.BadChannelSet
	if config.NoDB {
		mask, err = fileMask(file, config.BadChannelTag)
		if err != nil {
			return fmt.Errorf("error reading bad channels %s: %w", config.BadChannelTag, err)
		}
	} else {
		dbConn, err := chandb.Connect(config)
		if err != nil {
			return fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()
		mask, err = chandb.LoadBadChannelSet(dbConn, config.RunNumber)
		if err != nil {
			return err
		}
	}
	logger.Info(fmt.Sprintf("Bad channels: %v", mask.Channels()), "main")

	if err := os.MkdirAll(config.PlotDir, 0o755); err != nil {
		return err
	}
	return view(file, mask, config)
}
