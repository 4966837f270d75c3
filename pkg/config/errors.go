// Package config provides configuration loading and validation for oracle-ark.
package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the logging level is invalid.
	ErrInvalidLogLevel = errors.New("invalid logging level")
	// ErrInvalidLogFormat indicates that the logging format is invalid.
	ErrInvalidLogFormat = errors.New("invalid logging format")
	// ErrInvalidTimeout indicates that the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("fetch timeout must be positive")
	// ErrNegativeWeight indicates a negative source weight.
	ErrNegativeWeight = errors.New("source weight must not be negative")
)
