package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/aggregator"
	"github.com/zavodil/oracle-ark/pkg/config"
	"github.com/zavodil/oracle-ark/pkg/logging"
	"github.com/zavodil/oracle-ark/pkg/sources"
)

// Engine orchestrates one invocation: for each requested token it queries the
// configured sources strictly sequentially, validates the collected quotes
// and aggregates them into a single price. Per-source and per-token failures
// never cross token boundaries; the envelope always carries one result per
// input token.
type Engine struct {
	cfg    *config.Config
	client *sources.Client
	logger *logging.Logger
	now    func() time.Time
}

// New creates an engine. API keys, endpoint overrides and the weight table
// come from the configuration; nothing is read from ambient state later.
func New(cfg *config.Config, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Engine{
		cfg:    cfg,
		client: sources.NewClient(cfg.Fetch.Timeout.ToDuration()),
		logger: logger,
		now:    time.Now,
	}
}

// Run processes a validated request and returns the response envelope.
func (e *Engine) Run(ctx context.Context, req *PriceRequest) *Response {
	maxDeviation := decimal.NewFromFloat(req.MaxPriceDeviationPercent)

	results := make([]TokenResult, 0, len(req.Tokens))
	for _, spec := range req.Tokens {
		results = append(results, e.processToken(ctx, spec, maxDeviation))
	}

	return &Response{Tokens: results}
}

// processToken runs the full per-token pipeline: fetch all sources in order,
// validate the successes, aggregate, assemble the result.
func (e *Engine) processToken(ctx context.Context, spec TokenSpec, maxDeviation decimal.Decimal) TokenResult {
	quotes, fetchErrs := e.fetchAll(ctx, spec)

	if err := validateQuotes(quotes, fetchErrs, spec.MinSourcesNum, maxDeviation); err != nil {
		e.logger.Warn("Token failed validation", "token", spec.TokenID, "error", err)
		msg := err.Error()
		return TokenResult{Token: spec.TokenID, Message: &msg}
	}

	price, err := aggregator.Aggregate(spec.AggregationMethod, quotes, e.cfg.Weights)
	if err != nil {
		// Unreachable after validation confirmed at least one quote, but a
		// token never escalates into a process failure.
		e.logger.Error("Aggregation failed", "token", spec.TokenID, "error", err)
		msg := fmt.Sprintf("aggregation failed: %v", err)
		return TokenResult{Token: spec.TokenID, Message: &msg}
	}

	names := make([]string, len(quotes))
	for i, q := range quotes {
		names[i] = q.Source
	}

	result := TokenResult{
		Token: spec.TokenID,
		Data: &TokenData{
			Price:     price.InexactFloat64(),
			Timestamp: e.now().Unix(),
			Sources:   names,
		},
	}

	// Partial success: enough sources answered, but the failed ones stay
	// visible in the message.
	if len(fetchErrs) > 0 {
		msg := joinErrors(fetchErrs)
		result.Message = &msg
	}

	e.logger.Info("Token aggregated",
		"token", spec.TokenID,
		"method", spec.AggregationMethod,
		"price", price,
		"sources", len(quotes),
		"errors", len(fetchErrs))

	return result
}

// fetchAll queries every source of the token spec in order, collecting
// successes and classified errors. A failed fetch never halts the remaining
// sources.
func (e *Engine) fetchAll(ctx context.Context, spec TokenSpec) ([]sources.Quote, []error) {
	var quotes []sources.Quote
	var fetchErrs []error

	for _, sourceSpec := range spec.Sources {
		src, err := sources.New(sourceSpec.Name, sources.Config{
			APIKey:  e.cfg.APIKeys[sourceSpec.Name],
			BaseURL: e.cfg.Endpoints[sourceSpec.Name],
			Client:  e.client,
			Logger:  e.logger,
			Custom:  sourceSpec.Custom,
		})
		if err != nil {
			e.logger.Warn("Source unavailable", "source", sourceSpec.Name, "error", err)
			fetchErrs = append(fetchErrs, fmt.Errorf("%s: %w", sourceSpec.Name, err))
			continue
		}

		id := sourceSpec.EffectiveTokenID(spec.TokenID)
		quote, err := src.Fetch(ctx, id)
		if err != nil {
			e.logger.Warn("Fetch failed", "source", sourceSpec.Name, "id", id, "error", err)
			fetchErrs = append(fetchErrs, err)
			continue
		}

		e.logger.Debug("Fetch succeeded", "source", sourceSpec.Name, "id", id, "price", quote.Price)
		quotes = append(quotes, quote)
	}

	return quotes, fetchErrs
}
