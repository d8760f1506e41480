// Package commands implements the storesight subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/storesight-labs/storesight/internal/cli/config"
	"github.com/storesight-labs/storesight/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Store  *state.Store
}

// NewCommandContext creates a CommandContext with an open run-history
// store. Returns the context and a cleanup function that must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, nil, err
		}
	}

	store, err := state.Open(cfg.StatePath)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{Cfg: cfg, Logger: logger, Store: store}, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without opening
// the run-history store. Useful for commands that never record runs.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// getConfig returns the current configuration, falling back to environment
// variables with defaults when LoadConfig has not run (e.g. in tests that
// call a command constructor directly).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cfg := &config.Config{
		DataDir:           getEnvOrDefault("STORESIGHT_DATA_DIR", config.DefaultDataDir),
		StatePath:         getEnvOrDefault("STORESIGHT_STATE_PATH", config.DefaultStateFile),
		EvalDate:          os.Getenv("STORESIGHT_EVAL_DATE"),
		LowStockThreshold: config.DefaultLowStockThreshold,
		Seed:              config.DefaultSeed,
		Trees:             config.DefaultTrees,
		Port:              config.DefaultPort,
		Verbose:           os.Getenv("STORESIGHT_VERBOSE") == "true",
		OutputFormat:      getEnvOrDefault("STORESIGHT_OUTPUT", config.DefaultOutput),
	}
	if v, err := strconv.Atoi(os.Getenv("STORESIGHT_LOW_STOCK_THRESHOLD")); err == nil && v > 0 {
		cfg.LowStockThreshold = v
	}
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
