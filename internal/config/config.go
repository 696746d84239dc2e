// Package config loads service settings from MASHABILITY_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ewilliams-labs/mashability/internal/core/domain"
)

const prefix = "mashability"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"mashability.db"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	AnalysisURL          string        `envconfig:"ANALYSIS_URL" default:"http://localhost:8000"`
	AnalysisToken        string        `envconfig:"ANALYSIS_TOKEN"`
	AnalysisClientID     string        `envconfig:"ANALYSIS_CLIENT_ID"`
	AnalysisClientSecret string        `envconfig:"ANALYSIS_CLIENT_SECRET"`
	AnalysisTokenURL     string        `envconfig:"ANALYSIS_TOKEN_URL"`
	AnalysisMaxRetries   int           `envconfig:"ANALYSIS_MAX_RETRIES" default:"3"`
	AnalysisBackoff      time.Duration `envconfig:"ANALYSIS_BACKOFF" default:"500ms"`
	AnalysisTimeout      time.Duration `envconfig:"ANALYSIS_TIMEOUT" default:"60s"`

	Workers   int `envconfig:"WORKERS" default:"2"`
	QueueSize int `envconfig:"QUEUE_SIZE" default:"100"`

	WeightHarmonic float64 `envconfig:"WEIGHT_HARMONIC" default:"0.4"`
	WeightRhythmic float64 `envconfig:"WEIGHT_RHYTHMIC" default:"0.3"`
	WeightSpectral float64 `envconfig:"WEIGHT_SPECTRAL" default:"0.2"`
	WeightEnergy   float64 `envconfig:"WEIGHT_ENERGY" default:"0.1"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config: SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.StorageDriver)
	}

	if c.AnalysisURL == "" {
		return fmt.Errorf("config: ANALYSIS_URL is required")
	}
	if c.AnalysisClientID != "" && c.AnalysisTokenURL == "" {
		return fmt.Errorf("config: ANALYSIS_TOKEN_URL is required with ANALYSIS_CLIENT_ID")
	}
	if c.AnalysisMaxRetries < 0 {
		return fmt.Errorf("config: ANALYSIS_MAX_RETRIES cannot be negative")
	}
	if c.Workers < 1 || c.QueueSize < 1 {
		return fmt.Errorf("config: WORKERS and QUEUE_SIZE must be positive")
	}
	if err := c.Weights().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Weights returns the configured default weights.
func (c Config) Weights() domain.Weights {
	return domain.Weights{
		Harmonic: c.WeightHarmonic,
		Rhythmic: c.WeightRhythmic,
		Spectral: c.WeightSpectral,
		Energy:   c.WeightEnergy,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
