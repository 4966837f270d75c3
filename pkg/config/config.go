// Package config provides configuration loading and validation for oracle-ark.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that carry per-source API keys. Absence is valid
// for every source except CoinMarketCap, which checks at fetch time.
var apiKeyEnvVars = map[string]string{
	"coingecko":     "COINGECKO_API_KEY",
	"coinmarketcap": "COINMARKETCAP_API_KEY",
	"twelvedata":    "TWELVEDATA_API_KEY",
}

// Load loads configuration from an optional YAML file and environment variables.
// An empty path returns defaults plus environment API keys.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		cleanPath := filepath.Clean(path)
		absPath, err := filepath.Abs(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}

		data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in YAML
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	loadAPIKeys(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Fetch.Timeout.ToDuration() == 0 {
		cfg.Fetch.Timeout = Duration(10 * time.Second)
	}
	if cfg.Weights == nil {
		cfg.Weights = map[string]float64{}
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = map[string]string{}
	}
}

// loadAPIKeys reads per-source API keys from the environment into an explicit
// map so fetch logic never touches ambient process state.
func loadAPIKeys(cfg *Config) {
	cfg.APIKeys = make(map[string]string, len(apiKeyEnvVars))
	for source, envVar := range apiKeyEnvVars {
		if key := os.Getenv(envVar); key != "" {
			cfg.APIKeys[source] = key
		}
	}
}

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	level := strings.ToLower(cfg.Logging.Level)
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, cfg.Logging.Level)
	}

	format := strings.ToLower(cfg.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Logging.Format)
	}

	if cfg.Fetch.Timeout.ToDuration() <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, cfg.Fetch.Timeout.ToDuration())
	}

	for source, weight := range cfg.Weights {
		if weight < 0 {
			return fmt.Errorf("%w: %s has weight %f", ErrNegativeWeight, source, weight)
		}
	}

	return nil
}
