package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/zavodil/oracle-ark/pkg/logging"
)

const customName = "custom"

// CustomSource fetches a numeric value from a caller-described HTTP endpoint.
// The request shape (URL, method, headers, body) and the JSON path of the
// value come from the source spec's custom block; the token id is unused.
// Paths use dot notation, e.g. "data.price" or "rates.USD".
type CustomSource struct {
	cfg    CustomConfig
	client *Client
	logger *logging.Logger
}

// NewCustomSource creates a source from a caller-supplied request description.
func NewCustomSource(cfg Config) (Source, error) {
	if cfg.Custom == nil {
		return nil, fmt.Errorf("custom source requires a custom config block")
	}
	if cfg.Custom.URL == "" {
		return nil, fmt.Errorf("custom source requires a url")
	}
	if cfg.Custom.JSONPath == "" {
		return nil, fmt.Errorf("custom source requires a json_path")
	}

	method := strings.ToUpper(cfg.Custom.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported HTTP method for custom source: %s", cfg.Custom.Method)
	}

	custom := *cfg.Custom
	custom.Method = method

	return &CustomSource{
		cfg:    custom,
		client: cfg.Client,
		logger: cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *CustomSource) Name() string {
	return customName
}

// Fetch performs the described request and extracts the value at json_path.
func (s *CustomSource) Fetch(ctx context.Context, _ string) (Quote, error) {
	body, ferr := s.client.Do(ctx, customName, s.cfg.Method, s.cfg.URL, s.cfg.Headers, s.cfg.Body)
	if ferr != nil {
		return Quote{}, ferr
	}

	value := gjson.GetBytes(body, s.cfg.JSONPath)
	if !value.Exists() {
		return Quote{}, newMalformedError(customName, fmt.Errorf("json path %q not found in response", s.cfg.JSONPath))
	}

	price, err := numericValue(value)
	if err != nil {
		return Quote{}, newMalformedError(customName, err)
	}
	if !price.IsPositive() {
		return Quote{}, newMalformedError(customName, fmt.Errorf("non-positive value %s at %q", price, s.cfg.JSONPath))
	}

	s.logger.Debug("Fetched value from custom source", "url", s.cfg.URL, "path", s.cfg.JSONPath, "value", price)

	return Quote{
		Source:    customName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

// numericValue converts a gjson result into a decimal, accepting JSON numbers
// and numeric strings.
func numericValue(value gjson.Result) (decimal.Decimal, error) {
	switch value.Type {
	case gjson.Number:
		return decimal.NewFromFloat(value.Float()), nil
	case gjson.String:
		d, err := decimal.NewFromString(value.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse %q as number: %w", value.String(), err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("value %q is not a number", value.Raw)
	}
}

func init() {
	Register(customName, NewCustomSource)
}
