package main

import (
	"encoding/json"
	"fmt"
	"os"

	magnify "github.com/bnlif/magnify_go/pkg"
)

func LoadConfiguration(filename string) (magnify.Configuration, error) {
	var config magnify.Configuration

	// Set default values
	config.Verbosity = 0
	config.InTag = "decon"
	config.Scale = 1
	config.Threshold = 600
	config.ThresholdScaling = 1
	config.ZMin = magnify.DefaultZMin
	config.ZMax = magnify.DefaultZMax
	config.Channel = -1
	config.Tick = -1
	config.PlotDir = "."
	config.PlotFormat = "png"
	config.ExcludeBadChannels = false
	config.BadChannelTag = "bad_channel"
	config.NoDB = true
	config.Host = "localhost"
	config.User = "magnify"
	config.DBName = "channels"

	if filename == "" {
		return config, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config magnify.Configuration, logger magnify.Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Tag: %s", config.InTag), "config")
	if config.Kind != nil {
		logger.Info(fmt.Sprintf("Kind: %s", *config.Kind), "config")
	} else {
		logger.Info("Kind: as stored", "config")
	}
	logger.Info(fmt.Sprintf("Scale: %g", config.Scale), "config")
	logger.Info(fmt.Sprintf("Threshold: %g", config.Threshold), "config")
	logger.Info(fmt.Sprintf("Channel threshold: %s", config.ChannelThreshold), "config")
	logger.Info(fmt.Sprintf("Threshold scaling: %g", config.ThresholdScaling), "config")
	logger.Info(fmt.Sprintf("Z range: [%g, %g]", config.ZMin, config.ZMax), "config")
	logger.Info(fmt.Sprintf("Channel: %d", config.Channel), "config")
	logger.Info(fmt.Sprintf("Tick: %d", config.Tick), "config")
	logger.Info(fmt.Sprintf("Plot dir: %s", config.PlotDir), "config")
	logger.Info(fmt.Sprintf("Plot format: %s", config.PlotFormat), "config")
	logger.Info(fmt.Sprintf("Exclude bad channels: %t", config.ExcludeBadChannels), "config")
	logger.Info(fmt.Sprintf("Bad channel tag: %s", config.BadChannelTag), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("DB file: %s", config.DBFile), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
