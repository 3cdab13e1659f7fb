package config

import (
	"fmt"
	"slices"
)

// Config holds the application configuration of the txtwriter CLI.
type Config struct {
	Core  Core
	Paths Paths
	// Warnings collects non-fatal problems found while loading.
	Warnings []string
}

// Core holds settings shared by every command.
type Core struct {
	Debug     bool
	LogFormat string
	Quiet     bool
	// Tasks is the default task count used when a command does not set one.
	Tasks int
}

// Paths holds file locations.
type Paths struct {
	ConfigFileUsed  string
	LogFile         string
	BaseConfig      string
	DirtyFile       string
	MetricsTextfile string
}

var supportedLogFormats = []string{"text", "json"}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if !slices.Contains(supportedLogFormats, c.Core.LogFormat) {
		return fmt.Errorf("invalid log format %q, must be one of %v", c.Core.LogFormat, supportedLogFormats)
	}
	if c.Core.Tasks < 1 {
		return fmt.Errorf("invalid tasks value %d, must be at least 1", c.Core.Tasks)
	}
	return nil
}
