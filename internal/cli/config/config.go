// Package config loads StoreSight configuration with the precedence
// defaults < storesight.yaml < STORESIGHT_* environment < CLI flags.
package config

import (
	"fmt"
	"time"
)

// Defaults.
const (
	DefaultDataDir           = "data"
	DefaultStateFile         = ".storesight/state.db"
	DefaultLowStockThreshold = 10
	DefaultSeed              = 42
	DefaultTrees             = 100
	DefaultPort              = 8080
	DefaultOutput            = "table"
)

// EvalDateLayout is the accepted format of the --eval-date flag.
const EvalDateLayout = "2006-01-02"

// Config is the resolved runtime configuration.
type Config struct {
	// DataDir holds the five CSV sources.
	DataDir string `koanf:"data_dir"`
	// StatePath is the SQLite run-history database.
	StatePath string `koanf:"state_path"`
	// EvalDate pins the evaluation date for recency calculations
	// (YYYY-MM-DD). Empty means the current UTC date.
	EvalDate string `koanf:"eval_date"`
	// LowStockThreshold is the missed-opportunity stock cutoff.
	LowStockThreshold int `koanf:"low_stock_threshold"`
	// Seed drives the synthetic target noise, the estimator, and the data
	// generator.
	Seed uint64 `koanf:"seed"`
	// Trees is the estimator's ensemble size.
	Trees int `koanf:"trees"`
	// Port is the HTTP API port for serve.
	Port int `koanf:"port"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
	// OutputFormat is table, markdown or json.
	OutputFormat string `koanf:"output"`
}

// EvalTime resolves EvalDate to a time, defaulting to the current UTC date.
func (c *Config) EvalTime() (time.Time, error) {
	if c.EvalDate == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(EvalDateLayout, c.EvalDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid eval date %q (want %s): %w", c.EvalDate, EvalDateLayout, err)
	}
	return t, nil
}
