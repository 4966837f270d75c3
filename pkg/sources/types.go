package sources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/logging"
)

// Quote is a single price observation returned by one source for one token.
type Quote struct {
	Source    string
	Price     decimal.Decimal
	Timestamp time.Time
}

// Source defines the capability every price source implements: translate a
// source-specific token id into one HTTP request and parse the response.
type Source interface {
	// Name returns the unique name of this source
	Name() string

	// Fetch retrieves a single quote for the given source-specific token id.
	// A non-nil error is always a *FetchError.
	Fetch(ctx context.Context, id string) (Quote, error)
}

// Config carries everything a source needs at construction time. API keys are
// injected here, never read from the environment inside fetch logic.
type Config struct {
	// APIKey for the source, empty when none is configured.
	APIKey string

	// BaseURL overrides the source's default endpoint. Used by tests and
	// the endpoints section of the config file.
	BaseURL string

	// Client is the shared HTTP client. Required.
	Client *Client

	// Logger for diagnostics. Defaults to a noop logger when nil.
	Logger *logging.Logger

	// Custom holds the request description for the "custom" source and is
	// ignored by every other source.
	Custom *CustomConfig
}

func (c Config) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.NewNoopLogger()
	}
	return c.Logger
}

// CustomConfig describes a caller-supplied HTTP source: where to send the
// request and which JSON path holds the numeric value.
type CustomConfig struct {
	URL      string            `json:"url"`
	JSONPath string            `json:"json_path"`
	Method   string            `json:"method,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     json.RawMessage   `json:"body,omitempty"`
}
