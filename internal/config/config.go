// Package config loads the CLI configuration from file, environment
// variables and defaults.
package config

import (
	"fmt"
	"log/slog"
)

// Default values applied when neither the config file nor the environment
// overrides them.
const (
	DefaultRowsIncrement    = 1024
	DefaultPayloadIncrement = 4096
	DefaultLogLevel         = "info"
)

// TablesConfig holds the growth increments for every table.
type TablesConfig struct {
	RowsIncrement    int `mapstructure:"rows_increment"`
	PayloadIncrement int `mapstructure:"payload_increment"`
}

// Config is the root CLI configuration.
type Config struct {
	Tables   TablesConfig `mapstructure:"tables"`
	LogLevel string       `mapstructure:"log_level"`
	NoColor  bool         `mapstructure:"no_color"`
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Tables.RowsIncrement <= 0 {
		return fmt.Errorf("tables.rows_increment must be positive, got %d", c.Tables.RowsIncrement)
	}

	if c.Tables.PayloadIncrement <= 0 {
		return fmt.Errorf("tables.payload_increment must be positive, got %d", c.Tables.PayloadIncrement)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel parses the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.LogLevel))
	if err != nil {
		return level, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}

	return level, nil
}
