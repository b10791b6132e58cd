// Package config loads server configuration from JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fold-data/running.report/internal/reduce"
)

// Defaults applied by the Get* accessors when a field is absent.
const (
	DefaultListenAddr    = ":8080"
	DefaultDBPath        = "running.db"
	DefaultMigrationsDir = "migrations"
	DefaultReducer       = reduce.Sum
	DefaultMaxValues     = 100000
)

// Config is the root server configuration. Fields are pointers so a
// partial JSON file only overrides what it names; the Get* accessors
// supply defaults for the rest.
type Config struct {
	ListenAddr     *string `json:"listen_addr,omitempty"`
	DBPath         *string `json:"db_path,omitempty"`
	MigrationsDir  *string `json:"migrations_dir,omitempty"`
	DefaultReducer *string `json:"default_reducer,omitempty"`

	// MaxValues caps the number of values accepted in one run request.
	MaxValues *int `json:"max_values,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The path must end in .json and
// the file must be under 1MB. Omitted fields keep their defaults, so
// partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field values that have been set.
func (c *Config) Validate() error {
	if c.DefaultReducer != nil {
		if _, err := reduce.Lookup(*c.DefaultReducer); err != nil {
			return fmt.Errorf("default_reducer: %w", err)
		}
	}
	if c.MaxValues != nil && *c.MaxValues <= 0 {
		return fmt.Errorf("max_values must be positive, got %d", *c.MaxValues)
	}
	if c.ListenAddr != nil && *c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DBPath != nil && *c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	return nil
}

// GetListenAddr returns the listen address, or the default.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr != nil {
		return *c.ListenAddr
	}
	return DefaultListenAddr
}

// GetDBPath returns the sqlite database path, or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath != nil {
		return *c.DBPath
	}
	return DefaultDBPath
}

// GetMigrationsDir returns the migrations directory, or the default.
func (c *Config) GetMigrationsDir() string {
	if c.MigrationsDir != nil {
		return *c.MigrationsDir
	}
	return DefaultMigrationsDir
}

// GetDefaultReducer returns the reducer used when a request names none.
func (c *Config) GetDefaultReducer() string {
	if c.DefaultReducer != nil {
		return *c.DefaultReducer
	}
	return DefaultReducer
}

// GetMaxValues returns the per-request value cap.
func (c *Config) GetMaxValues() int {
	if c.MaxValues != nil {
		return *c.MaxValues
	}
	return DefaultMaxValues
}
