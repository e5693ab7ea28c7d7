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
	config.OutDir = "data"
	config.InTag = "orig"
	config.OutTag = "orig"
	config.Suffix = "v2"
	config.SubtractBaseline = false
	config.FileMode = magnify.ModeUpdate
	config.NTicks = magnify.DefaultTicks
	config.OutputScale = 1
	config.CompressionLevel = 4
	config.Parallel = false
	config.NoDB = true
	config.RunNumber = 0

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
	logger.Info(fmt.Sprintf("Out dir: %s", config.OutDir), "config")
	logger.Info(fmt.Sprintf("In tag: %s", config.InTag), "config")
	logger.Info(fmt.Sprintf("Out tag: %s", config.OutTag), "config")
	logger.Info(fmt.Sprintf("Suffix: %s", config.Suffix), "config")
	logger.Info(fmt.Sprintf("Subtract baseline: %t", config.SubtractBaseline), "config")
	logger.Info(fmt.Sprintf("File mode: %s", config.FileMode), "config")
	logger.Info(fmt.Sprintf("Ticks: %d", config.NTicks), "config")
	logger.Info(fmt.Sprintf("Output scale: %g", config.OutputScale), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
	logger.Info(fmt.Sprintf("DB file: %s", config.DBFile), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
