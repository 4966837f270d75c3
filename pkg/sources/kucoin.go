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
	kucoinName    = "kucoin"
	kucoinBaseURL = "https://api.kucoin.com"
)

// KuCoinLevel1Response represents the level1 orderbook response.
// Prices are string decimals.
type KuCoinLevel1Response struct {
	Data struct {
		BestBid string `json:"bestBid"`
		BestAsk string `json:"bestAsk"`
		Price   string `json:"price"`
	} `json:"data"`
}

// KuCoinSource fetches prices from the KuCoin REST API.
// Token ids are dash-delimited pair symbols, e.g. "BTC-USDT". No API key.
// The quoted price averages best bid, best ask and last trade when all
// three are present, falling back to whatever subset is available.
type KuCoinSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewKuCoinSource creates a new KuCoin source
func NewKuCoinSource(cfg Config) (Source, error) {
	baseURL := kucoinBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &KuCoinSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *KuCoinSource) Name() string {
	return kucoinName
}

// Fetch retrieves a blended price for a single pair symbol.
func (s *KuCoinSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/api/v1/market/orderbook/level1?symbol=%s", s.baseURL, url.QueryEscape(id))

	body, ferr := s.client.Get(ctx, kucoinName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	var response KuCoinLevel1Response
	if err := json.Unmarshal(body, &response); err != nil {
		return Quote{}, newMalformedError(kucoinName, err)
	}

	values := make([]decimal.Decimal, 0, 3)
	for _, raw := range []string{response.Data.BestBid, response.Data.BestAsk, response.Data.Price} {
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
		return Quote{}, newMalformedError(kucoinName, fmt.Errorf("price for %q not found in response", id))
	}

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	price := sum.Div(decimal.NewFromInt(int64(len(values))))
	if !price.IsPositive() {
		return Quote{}, newMalformedError(kucoinName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from KuCoin", "symbol", id, "price", price)

	return Quote{
		Source:    kucoinName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(kucoinName, NewKuCoinSource)
}
