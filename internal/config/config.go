// Package config loads memory-stitch settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/memory-stitch/internal/codec"
)

// Environment variables consulted when no flag is given.
const (
	EnvConfig = "MEMORY_STITCH_CONFIG"
	EnvDB     = "MEMORY_STITCH_DB"
)

// SchemeConfig selects the encoding scheme for new patterns.
type SchemeConfig struct {
	IDLength        int   `yaml:"id_length"`
	CellSize        int   `yaml:"cell_size"`
	LegacyGridSizes []int `yaml:"legacy_grid_sizes"` // grid sizes of retired schemes
}

// OpticalConfig points at the grid detection service.
type OpticalConfig struct {
	URL           string        `yaml:"url,omitempty"` // empty = $MEMORY_STITCH_OPTICAL_URL or localhost
	Timeout       time.Duration `yaml:"timeout"`
	MinConfidence float64       `yaml:"min_confidence"` // below this, read results are rejected
}

// MigrateConfig controls batch migration.
type MigrateConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Config is the top-level config.yml.
type Config struct {
	DB      string        `yaml:"db,omitempty"`
	Scheme  SchemeConfig  `yaml:"scheme"`
	Optical OpticalConfig `yaml:"optical"`
	Migrate MigrateConfig `yaml:"migrate"`
	Log     LogConfig     `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scheme: SchemeConfig{
			IDLength:        codec.DefaultLength,
			CellSize:        codec.DefaultCellSize,
			LegacyGridSizes: []int{16},
		},
		Optical: OpticalConfig{
			Timeout:       30 * time.Second,
			MinConfidence: 0.6,
		},
		Migrate: MigrateConfig{Concurrency: 4},
		Log:     LogConfig{Level: "warn", Format: "console"},
	}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Scheme.IDLength < 1 {
		return fmt.Errorf("scheme.id_length must be >= 1, got %d", c.Scheme.IDLength)
	}
	if c.Scheme.CellSize < 1 {
		return fmt.Errorf("scheme.cell_size must be >= 1, got %d", c.Scheme.CellSize)
	}
	current := codec.GridSize(c.Scheme.IDLength)
	for _, n := range c.Scheme.LegacyGridSizes {
		if n < 1 {
			return fmt.Errorf("scheme.legacy_grid_sizes: invalid size %d", n)
		}
		if n == current {
			return fmt.Errorf("scheme.legacy_grid_sizes: %d is the current grid size", n)
		}
	}

	if c.Optical.Timeout < 0 {
		return fmt.Errorf("optical.timeout must be >= 0, got %s", c.Optical.Timeout)
	}
	if c.Optical.MinConfidence < 0 || c.Optical.MinConfidence > 1 {
		return fmt.Errorf("optical.min_confidence must be in [0, 1], got %g", c.Optical.MinConfidence)
	}

	if c.Migrate.Concurrency < 1 {
		return fmt.Errorf("migrate.concurrency must be >= 1, got %d", c.Migrate.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level '%s' (valid: debug, info, warn, error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log.format '%s' (valid: console, json)", c.Log.Format)
	}
	return nil
}

// CodecScheme returns the codec scheme for new patterns.
func (c *Config) CodecScheme() codec.Scheme {
	return codec.Scheme{IDLength: c.Scheme.IDLength, CellSize: c.Scheme.CellSize}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Path resolves the config file location: flag, then $MEMORY_STITCH_CONFIG,
// then ~/.memory-stitch/config.yml.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	return filepath.Join(homeDir(), ".memory-stitch", "config.yml")
}

// DBPath resolves the database location: flag, then $MEMORY_STITCH_DB,
// then the config file, then ~/.memory-stitch/patterns.db.
func (c *Config) DBPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvDB); env != "" {
		return env
	}
	if c.DB != "" {
		return c.DB
	}
	return filepath.Join(homeDir(), ".memory-stitch", "patterns.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
