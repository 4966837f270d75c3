package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/logging"
)

const (
	exchangerateName    = "exchangerate-api"
	exchangerateBaseURL = "https://open.er-api.com"
)

// ExchangeRateSource fetches fiat exchange rates from the free
// ExchangeRate-API endpoint. Token ids are BASE/TARGET pairs, e.g.
// "EUR/USD". No API key is needed.
type ExchangeRateSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewExchangeRateSource creates a new ExchangeRate-API source
func NewExchangeRateSource(cfg Config) (Source, error) {
	baseURL := exchangerateBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &ExchangeRateSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *ExchangeRateSource) Name() string {
	return exchangerateName
}

// Fetch retrieves the BASE/TARGET rate for a single forex pair.
func (s *ExchangeRateSource) Fetch(ctx context.Context, id string) (Quote, error) {
	parts := strings.Split(id, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Quote{}, newMalformedError(exchangerateName,
			fmt.Errorf("invalid forex pair %q, expected BASE/TARGET (e.g. EUR/USD)", id))
	}
	base, target := parts[0], parts[1]

	requestURL := fmt.Sprintf("%s/v6/latest/%s", s.baseURL, url.PathEscape(base))

	body, ferr := s.client.Get(ctx, exchangerateName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	// Response format: {"rates": {"USD": 1.0542, ...}}
	var data struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Quote{}, newMalformedError(exchangerateName, err)
	}

	rate, ok := data.Rates[target]
	if !ok {
		return Quote{}, newMalformedError(exchangerateName, fmt.Errorf("rate for %q not found in response", target))
	}

	price := decimal.NewFromFloat(rate)
	if !price.IsPositive() {
		return Quote{}, newMalformedError(exchangerateName, fmt.Errorf("non-positive rate %s for %q", price, id))
	}

	s.logger.Debug("Fetched rate from ExchangeRate-API", "pair", id, "rate", price)

	return Quote{
		Source:    exchangerateName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(exchangerateName, NewExchangeRateSource)
}
