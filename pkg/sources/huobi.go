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
	huobiName    = "huobi"
	huobiBaseURL = "https://api.huobi.pro"
)

// HuobiMergedResponse represents the merged market detail response.
// Bid and ask are [price, size] arrays.
type HuobiMergedResponse struct {
	Status string `json:"status"`
	Tick   struct {
		Bid []float64 `json:"bid"`
		Ask []float64 `json:"ask"`
	} `json:"tick"`
}

// HuobiSource fetches mid prices from the Huobi REST API.
// Token ids are lowercase pair symbols, e.g. "btcusdt". No API key.
// The quoted price is the bid/ask midpoint.
type HuobiSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewHuobiSource creates a new Huobi source
func NewHuobiSource(cfg Config) (Source, error) {
	baseURL := huobiBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &HuobiSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *HuobiSource) Name() string {
	return huobiName
}

// Fetch retrieves the bid/ask midpoint for a single pair symbol.
func (s *HuobiSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/market/detail/merged?symbol=%s", s.baseURL, url.QueryEscape(id))

	body, ferr := s.client.Get(ctx, huobiName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	var response HuobiMergedResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Quote{}, newMalformedError(huobiName, err)
	}
	if len(response.Tick.Bid) == 0 || len(response.Tick.Ask) == 0 {
		return Quote{}, newMalformedError(huobiName, fmt.Errorf("bid/ask for %q not found in response", id))
	}

	bid := decimal.NewFromFloat(response.Tick.Bid[0])
	ask := decimal.NewFromFloat(response.Tick.Ask[0])
	price := bid.Add(ask).Div(decimal.NewFromInt(2))
	if !price.IsPositive() {
		return Quote{}, newMalformedError(huobiName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from Huobi", "symbol", id, "price", price)

	return Quote{
		Source:    huobiName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(huobiName, NewHuobiSource)
}
