package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/logging"
)

const (
	twelvedataName    = "twelvedata"
	twelvedataBaseURL = "https://api.twelvedata.com"
)

// TwelveDataSource fetches prices from the TwelveData REST API, which covers
// commodities, forex and crypto. Token ids are slash-delimited pairs,
// e.g. "XAU/USD". The API key is optional (free tier).
type TwelveDataSource struct {
	apiKey  string
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewTwelveDataSource creates a new TwelveData source
func NewTwelveDataSource(cfg Config) (Source, error) {
	baseURL := twelvedataBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &TwelveDataSource{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *TwelveDataSource) Name() string {
	return twelvedataName
}

// Fetch retrieves the price for a single symbol pair.
func (s *TwelveDataSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/price?symbol=%s", s.baseURL, url.QueryEscape(id))
	if s.apiKey != "" {
		requestURL += "&apikey=" + url.QueryEscape(s.apiKey)
	}

	body, ferr := s.client.Get(ctx, twelvedataName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	// Response format: {"price": "1850.25"}. API errors come back with
	// HTTP 200 and no price field, so those land here as malformed.
	var data struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return Quote{}, newMalformedError(twelvedataName, err)
	}
	if data.Price == "" {
		return Quote{}, newMalformedError(twelvedataName, fmt.Errorf("price for %q not found in response", id))
	}

	price, err := decimal.NewFromString(data.Price)
	if err != nil {
		return Quote{}, newMalformedError(twelvedataName, err)
	}
	if !price.IsPositive() {
		return Quote{}, newMalformedError(twelvedataName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from TwelveData", "symbol", id, "price", price)

	return Quote{
		Source:    twelvedataName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(twelvedataName, NewTwelveDataSource)
}
