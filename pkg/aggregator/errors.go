// Package aggregator provides pure price aggregation strategies.
package aggregator

import "errors"

var (
	// ErrNoQuotes indicates that no quotes were provided for aggregation.
	ErrNoQuotes = errors.New("no quotes to aggregate")
	// ErrUnknownMethod indicates an unrecognized aggregation method.
	ErrUnknownMethod = errors.New("unknown aggregation method")
)
