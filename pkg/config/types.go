package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	Logging   LoggingConfig      `yaml:"logging"`
	Fetch     FetchConfig        `yaml:"fetch"`
	Weights   map[string]float64 `yaml:"weights"`
	Endpoints map[string]string  `yaml:"endpoints"`

	// APIKeys maps source name to its API key. Populated from the
	// environment, never from the config file.
	APIKeys map[string]string `yaml:"-"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FetchConfig configures per-source HTTP fetching
type FetchConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// ToDuration converts to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
