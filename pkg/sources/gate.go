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
	gateName    = "gate"
	gateBaseURL = "https://data.gateapi.io"
)

// GateTickerResponse represents the Gate.io ticker response.
// Result is the string "true" on success; prices are string decimals.
type GateTickerResponse struct {
	Result     string `json:"result"`
	HighestBid string `json:"highestBid"`
	LowestAsk  string `json:"lowestAsk"`
	Last       string `json:"last"`
}

// GateSource fetches prices from the Gate.io REST API.
// Token ids are underscore-delimited pair symbols, e.g. "btc_usdt". No API key.
type GateSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewGateSource creates a new Gate.io source
func NewGateSource(cfg Config) (Source, error) {
	baseURL := gateBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &GateSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *GateSource) Name() string {
	return gateName
}

// Fetch retrieves a blended price for a single pair symbol.
func (s *GateSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/api2/1/ticker/%s", s.baseURL, url.PathEscape(id))

	body, ferr := s.client.Get(ctx, gateName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	var response GateTickerResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Quote{}, newMalformedError(gateName, err)
	}
	if response.Result != "true" {
		return Quote{}, newMalformedError(gateName, fmt.Errorf("unsuccessful result for %q", id))
	}

	values := make([]decimal.Decimal, 0, 3)
	for _, raw := range []string{response.HighestBid, response.LowestAsk, response.Last} {
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return Quote{}, newMalformedError(gateName, fmt.Errorf("price for %q not found in response", id))
	}

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	price := sum.Div(decimal.NewFromInt(int64(len(values))))
	if !price.IsPositive() {
		return Quote{}, newMalformedError(gateName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from Gate.io", "symbol", id, "price", price)

	return Quote{
		Source:    gateName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(gateName, NewGateSource)
}
