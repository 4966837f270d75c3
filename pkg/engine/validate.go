package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/aggregator"
	"github.com/zavodil/oracle-ark/pkg/sources"
)

// MaxTokensPerRequest bounds the batch size.
const MaxTokensPerRequest = 10

// ValidateRequest checks request-shape constraints before any fetching
// starts. Every failure here is fatal for the whole invocation.
func ValidateRequest(req *PriceRequest) error {
	if len(req.Tokens) == 0 {
		return ErrNoTokens
	}
	if len(req.Tokens) > MaxTokensPerRequest {
		return fmt.Errorf("%w: %d (max: %d)", ErrTooManyTokens, len(req.Tokens), MaxTokensPerRequest)
	}
	if req.MaxPriceDeviationPercent < 0 {
		return fmt.Errorf("%w: %f", ErrNegativeDeviation, req.MaxPriceDeviationPercent)
	}

	for i, token := range req.Tokens {
		if token.TokenID == "" {
			return fmt.Errorf("token %d: %w", i, ErrEmptyTokenID)
		}
		if len(token.Sources) == 0 {
			return fmt.Errorf("token %q: %w", token.TokenID, ErrEmptySourceList)
		}
		if token.MinSourcesNum < 1 || token.MinSourcesNum > len(token.Sources) {
			return fmt.Errorf("token %q: %w (%d of %d)",
				token.TokenID, ErrInvalidMinSources, token.MinSourcesNum, len(token.Sources))
		}
		if !token.AggregationMethod.Valid() {
			return fmt.Errorf("token %q: %w: %s", token.TokenID, ErrInvalidAggregationMethod, token.AggregationMethod)
		}
	}

	return nil
}

// InsufficientSourcesError is a per-token soft failure: fewer sources
// succeeded than the token spec requires.
type InsufficientSourcesError struct {
	Got    int
	Want   int
	Errors []error
}

func (e *InsufficientSourcesError) Error() string {
	msg := fmt.Sprintf("not enough sources responded (%d/%d)", e.Got, e.Want)
	if len(e.Errors) > 0 {
		msg += ": " + joinErrors(e.Errors)
	}
	return msg
}

// DeviationExceededError is a per-token soft failure: the spread between the
// successful quotes exceeds the request's deviation limit.
type DeviationExceededError struct {
	Deviation decimal.Decimal
	Limit     decimal.Decimal
}

func (e *DeviationExceededError) Error() string {
	return fmt.Sprintf("price deviation too high: %s%% (max: %s%%)",
		e.Deviation.StringFixed(2), e.Limit.StringFixed(2))
}

// validateQuotes applies the per-token checks after all sources have been
// attempted: minimum successful source count, then maximum deviation.
func validateQuotes(quotes []sources.Quote, fetchErrs []error, minSources int, maxDeviation decimal.Decimal) error {
	if len(quotes) < minSources {
		return &InsufficientSourcesError{
			Got:    len(quotes),
			Want:   minSources,
			Errors: fetchErrs,
		}
	}

	// A single quote has no spread and always passes.
	if deviation := aggregator.Deviation(quotes); deviation.GreaterThan(maxDeviation) {
		return &DeviationExceededError{
			Deviation: deviation,
			Limit:     maxDeviation,
		}
	}

	return nil
}

// joinErrors folds collected per-source errors into the compact display form,
// e.g. "coingecko: HTTP 429, coinmarketcap: HTTP 401".
func joinErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, ", ")
}
