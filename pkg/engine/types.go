// Package engine implements the request model and the per-token
// orchestration of fetching, validation and aggregation.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/zavodil/oracle-ark/pkg/aggregator"
	"github.com/zavodil/oracle-ark/pkg/sources"
)

// PriceRequest is the whole input document: an ordered batch of token
// requests plus the shared deviation limit.
type PriceRequest struct {
	Tokens                   []TokenSpec `json:"tokens"`
	MaxPriceDeviationPercent float64     `json:"max_price_deviation_percent"`
}

// TokenSpec describes one requested token: which sources to query, how to
// combine their quotes and how many must succeed.
type TokenSpec struct {
	TokenID           string            `json:"token_id"`
	Sources           []SourceSpec      `json:"sources"`
	AggregationMethod aggregator.Method `json:"aggregation_method"`
	MinSourcesNum     int               `json:"min_sources_num"`
}

// SourceSpec names one source and optionally overrides the token id with a
// source-specific one. The custom block is only meaningful for the "custom"
// source.
type SourceSpec struct {
	Name    string                `json:"name"`
	TokenID *string               `json:"token_id"`
	Custom  *sources.CustomConfig `json:"custom,omitempty"`
}

// EffectiveTokenID returns the source-specific id, falling back to the
// token-level id when none is set.
func (s SourceSpec) EffectiveTokenID(tokenID string) string {
	if s.TokenID != nil && *s.TokenID != "" {
		return *s.TokenID
	}
	return tokenID
}

// TokenData is the successful payload of a token result.
type TokenData struct {
	Price     float64  `json:"price"`
	Timestamp int64    `json:"timestamp"`
	Sources   []string `json:"sources"`
}

// TokenResult is the per-token outcome. Data is nil on soft failure; Message
// is nil only on full success.
type TokenResult struct {
	Token   string     `json:"token"`
	Data    *TokenData `json:"data"`
	Message *string    `json:"message"`
}

// Response is the output envelope: exactly one result per input token, in
// request order.
type Response struct {
	Tokens []TokenResult `json:"tokens"`
}

// ParseRequest decodes the input document and applies the schema defaults:
// aggregation method "average" and min_sources_num 1.
func ParseRequest(data []byte) (*PriceRequest, error) {
	var req PriceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	for i := range req.Tokens {
		if req.Tokens[i].AggregationMethod == "" {
			req.Tokens[i].AggregationMethod = aggregator.MethodAverage
		}
		if req.Tokens[i].MinSourcesNum == 0 {
			req.Tokens[i].MinSourcesNum = 1
		}
	}

	return &req, nil
}
