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
	cryptocomName    = "cryptocom"
	cryptocomBaseURL = "https://api.crypto.com"
)

// CryptoComTickerResponse represents the get-ticker response. Ticker fields
// are string decimals: b is best bid, k is best ask, a is the last trade.
type CryptoComTickerResponse struct {
	Result struct {
		Data []struct {
			Bid  string `json:"b"`
			Ask  string `json:"k"`
			Last string `json:"a"`
		} `json:"data"`
	} `json:"result"`
}

// CryptoComSource fetches prices from the Crypto.com REST API.
// Token ids are underscore-delimited instrument names, e.g. "BTC_USDT".
// No API key. The quoted price averages bid, ask and last trade when all
// three are present, falls back to the bid/ask midpoint, then to the last
// trade alone.
type CryptoComSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewCryptoComSource creates a new Crypto.com source
func NewCryptoComSource(cfg Config) (Source, error) {
	baseURL := cryptocomBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &CryptoComSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *CryptoComSource) Name() string {
	return cryptocomName
}

// Fetch retrieves a blended price for a single instrument name.
func (s *CryptoComSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/v2/public/get-ticker?instrument_name=%s", s.baseURL, url.QueryEscape(id))

	body, ferr := s.client.Get(ctx, cryptocomName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	var response CryptoComTickerResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Quote{}, newMalformedError(cryptocomName, err)
	}
	if len(response.Result.Data) == 0 {
		return Quote{}, newMalformedError(cryptocomName, fmt.Errorf("no ticker data for %q", id))
	}
	ticker := response.Result.Data[0]

	bid, bidOK := parseDecimal(ticker.Bid)
	ask, askOK := parseDecimal(ticker.Ask)
	last, lastOK := parseDecimal(ticker.Last)

	var price decimal.Decimal
	switch {
	case bidOK && askOK && lastOK:
		price = bid.Add(ask).Add(last).Div(decimal.NewFromInt(3))
	case bidOK && askOK:
		price = bid.Add(ask).Div(decimal.NewFromInt(2))
	case lastOK:
		price = last
	default:
		return Quote{}, newMalformedError(cryptocomName, fmt.Errorf("price for %q not found in response", id))
	}
	if !price.IsPositive() {
		return Quote{}, newMalformedError(cryptocomName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from Crypto.com", "instrument", id, "price", price)

	return Quote{
		Source:    cryptocomName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

// parseDecimal parses a string decimal, reporting whether a value was present
// and valid.
func parseDecimal(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func init() {
	Register(cryptocomName, NewCryptoComSource)
}
