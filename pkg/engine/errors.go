package engine

import "errors"

// Request-level validation errors. Any of these aborts the whole invocation
// before a single fetch; no envelope is emitted.
var (
	// ErrTooManyTokens indicates the request exceeds the token limit.
	ErrTooManyTokens = errors.New("too many tokens requested")
	// ErrNoTokens indicates an empty token list.
	ErrNoTokens = errors.New("no tokens requested")
	// ErrEmptyTokenID indicates a token spec without an id.
	ErrEmptyTokenID = errors.New("token_id must not be empty")
	// ErrEmptySourceList indicates a token spec without sources.
	ErrEmptySourceList = errors.New("sources must not be empty")
	// ErrInvalidMinSources indicates min_sources_num larger than the source list.
	ErrInvalidMinSources = errors.New("min_sources_num exceeds the number of sources")
	// ErrInvalidAggregationMethod indicates an unknown aggregation method.
	ErrInvalidAggregationMethod = errors.New("invalid aggregation method")
	// ErrNegativeDeviation indicates a negative max_price_deviation_percent.
	ErrNegativeDeviation = errors.New("max_price_deviation_percent must not be negative")
)
