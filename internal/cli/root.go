// Package cli implements the memory-stitch CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/memory-stitch/internal/codec"
	"github.com/rcliao/memory-stitch/internal/config"
	"github.com/rcliao/memory-stitch/internal/store"
)

var (
	dbPath     string
	configPath string

	cfg    = config.Default()
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "memory-stitch",
	Short: "Turn memories into stitchable patterns and read them back",
	Long: "Generates a short identifier from a memory, encodes it as a grid of stitches, " +
		"exports the stitch path, and resolves photographed or hand-copied grids back to the memory. " +
		"SQLite-backed, single binary.",
	PersistentPreRun: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MEMORY_STITCH_DB, config db, or ~/.memory-stitch/patterns.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $MEMORY_STITCH_CONFIG or ~/.memory-stitch/config.yml)")
}

func setup(cmd *cobra.Command, args []string) {
	loaded, err := config.Load(config.Path(configPath))
	if err != nil {
		exitErr("load config", err)
	}
	cfg = loaded

	l, err := newLogger(cfg.Log)
	if err != nil {
		exitErr("init logger", err)
	}
	logger = l
}

func newLogger(c config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func getDBPath() string {
	return cfg.DBPath(dbPath)
}

func openStore() (*store.SQLiteStore, error) {
	path := getDBPath()
	logger.Debug("opening store", zap.String("path", path))
	return store.NewSQLiteStore(path)
}

func newBuilder() (*codec.Builder, error) {
	return codec.NewBuilder(cfg.CodecScheme())
}

func exitErr(msg string, err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
