package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/memory-stitch/internal/codec"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `db: /tmp/patterns.db
scheme:
  id_length: 8
  cell_size: 12
  legacy_grid_sizes: [7, 16]
optical:
  url: http://grid.local:5001
  timeout: 5s
  min_confidence: 0.75
migrate:
  concurrency: 2
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/patterns.db", cfg.DB)
	assert.Equal(t, codec.Scheme{IDLength: 8, CellSize: 12}, cfg.CodecScheme())
	assert.Equal(t, []int{7, 16}, cfg.Scheme.LegacyGridSizes)
	assert.Equal(t, "http://grid.local:5001", cfg.Optical.URL)
	assert.Equal(t, 5*time.Second, cfg.Optical.Timeout)
	assert.Equal(t, 0.75, cfg.Optical.MinConfidence)
	assert.Equal(t, 2, cfg.Migrate.Concurrency)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `optical:
  min_confidence: 0.9
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Optical.MinConfidence)
	assert.Equal(t, 30*time.Second, cfg.Optical.Timeout)
	assert.Equal(t, codec.DefaultScheme(), cfg.CodecScheme())
	assert.Equal(t, []int{16}, cfg.Scheme.LegacyGridSizes)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `scheme:
  - this is invalid
    yaml syntax
`)

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero id length", func(c *Config) { c.Scheme.IDLength = 0 }, "scheme.id_length"},
		{"zero cell size", func(c *Config) { c.Scheme.CellSize = 0 }, "scheme.cell_size"},
		{"legacy includes current", func(c *Config) { c.Scheme.LegacyGridSizes = []int{7} }, "current grid size"},
		{"negative legacy", func(c *Config) { c.Scheme.LegacyGridSizes = []int{-1} }, "invalid size"},
		{"negative timeout", func(c *Config) { c.Optical.Timeout = -time.Second }, "optical.timeout"},
		{"confidence above one", func(c *Config) { c.Optical.MinConfidence = 1.5 }, "optical.min_confidence"},
		{"no workers", func(c *Config) { c.Migrate.Concurrency = 0 }, "migrate.concurrency"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/etc/stitch.yml", Path("/etc/stitch.yml"))
	assert.Equal(t, "/home/tester/.memory-stitch/config.yml", Path(""))

	t.Setenv(EnvConfig, "/env/config.yml")
	assert.Equal(t, "/env/config.yml", Path(""))
}

func TestDBPath(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv("HOME", "/home/tester")
	cfg := Default()

	assert.Equal(t, "/home/tester/.memory-stitch/patterns.db", cfg.DBPath(""))

	cfg.DB = "/data/from-config.db"
	assert.Equal(t, "/data/from-config.db", cfg.DBPath(""))

	t.Setenv(EnvDB, "/data/from-env.db")
	assert.Equal(t, "/data/from-env.db", cfg.DBPath(""))
	assert.Equal(t, "/data/flag.db", cfg.DBPath("/data/flag.db"))
}
