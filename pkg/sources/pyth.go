package sources

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/zavodil/oracle-ark/pkg/logging"
)

const (
	pythName    = "pyth"
	pythBaseURL = "https://hermes.pyth.network"

	// pythMaxStaleness rejects prices published too long ago.
	pythMaxStaleness = 120 * time.Second
)

// PythSource fetches prices from the Pyth Network Hermes API.
// Token ids are hex price-feed ids. The quote timestamp is the feed's
// publish time, and stale feeds are rejected.
type PythSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewPythSource creates a new Pyth source
func NewPythSource(cfg Config) (Source, error) {
	baseURL := pythBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &PythSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *PythSource) Name() string {
	return pythName
}

// Fetch retrieves the latest published price for a single feed id.
func (s *PythSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/v2/updates/price/latest?ids[]=%s", s.baseURL, url.QueryEscape(id))

	body, ferr := s.client.Get(ctx, pythName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	// Response format: {"parsed": [{"price": {"price": "123", "expo": -8, "publish_time": 1700000000}}]}
	feed := gjson.GetBytes(body, "parsed.0.price")
	if !feed.Exists() {
		return Quote{}, newMalformedError(pythName, fmt.Errorf("price data for %q not found in response", id))
	}

	raw := feed.Get("price")
	expo := feed.Get("expo")
	publishTime := feed.Get("publish_time")
	if !raw.Exists() || !expo.Exists() || !publishTime.Exists() {
		return Quote{}, newMalformedError(pythName, fmt.Errorf("incomplete price data for %q", id))
	}

	published := time.Unix(publishTime.Int(), 0)
	if age := time.Since(published); age > pythMaxStaleness {
		return Quote{}, newMalformedError(pythName,
			fmt.Errorf("stale price for %q, published %s ago", id, age.Truncate(time.Second)))
	}

	mantissa, err := decimal.NewFromString(raw.String())
	if err != nil {
		return Quote{}, newMalformedError(pythName, err)
	}
	e := expo.Int()
	if e < math.MinInt32 || e > math.MaxInt32 {
		return Quote{}, newMalformedError(pythName, fmt.Errorf("exponent %d out of range", e))
	}
	price := mantissa.Shift(int32(e))
	if !price.IsPositive() {
		return Quote{}, newMalformedError(pythName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from Pyth", "feed", id, "price", price)

	return Quote{
		Source:    pythName,
		Price:     price,
		Timestamp: published,
	}, nil
}

func init() {
	Register(pythName, NewPythSource)
}
