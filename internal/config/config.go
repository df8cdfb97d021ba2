// Package config loads nexbench settings from a YAML file. Values missing
// from the file keep their defaults and command line flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TuftsBCB/nexbench/internal/logger"
)

// DefaultPath is where the CLI looks for a config file when --config is
// not given.
const DefaultPath = "nexbench.yaml"

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Enabled records every benchmark run, as if --record were given.
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
}

// Config represents nexbench configuration options
type Config struct {
	// File is the NEXUS file to benchmark when none is given on the
	// command line.
	File string `yaml:"file"`

	// Iterations is the number of parses timed per parser.
	Iterations int `yaml:"iterations"`

	// Parsers names the parsers to time, in order.
	Parsers []string `yaml:"parsers"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with the default values: ten iterations of
// the nexus parser followed by the gotree parser.
func DefaultConfig() *Config {
	return &Config{
		File:       "",
		Iterations: 10,
		Parsers:    []string{"nexus", "gotree"},
		LogLevel:   "info",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  ".nexbench/history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys that are absent leave the defaults in place.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(file *string, iterations *int, parsers []string, logLevel *string) {
	if file != nil {
		c.File = *file
	}
	if iterations != nil {
		c.Iterations = *iterations
	}
	if parsers != nil {
		c.Parsers = parsers
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be > 0, got %d", c.Iterations)
	}
	if len(c.Parsers) == 0 {
		return fmt.Errorf("at least one parser must be given")
	}
	seen := make(map[string]bool, len(c.Parsers))
	for _, name := range c.Parsers {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return fmt.Errorf("parser names cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("parser %q is listed twice", name)
		}
		seen[name] = true
	}

	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}
	return nil
}
