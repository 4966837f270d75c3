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
	binanceName    = "binance"
	binanceBaseURL = "https://api.binance.com"
)

// BinancePriceTicker represents price data from the /ticker/price endpoint
type BinancePriceTicker struct {
	Symbol string `json:"symbol"` // e.g., "BTCUSDT"
	Price  string `json:"price"`  // Current price, string decimal
}

// BinanceSource fetches last-trade prices from the Binance REST API.
// Token ids are concatenated pair symbols, e.g. "BTCUSDT". No API key.
type BinanceSource struct {
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewBinanceSource creates a new Binance source
func NewBinanceSource(cfg Config) (Source, error) {
	baseURL := binanceBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &BinanceSource{
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *BinanceSource) Name() string {
	return binanceName
}

// Fetch retrieves the last price for a single pair symbol.
func (s *BinanceSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", s.baseURL, url.QueryEscape(id))

	body, ferr := s.client.Get(ctx, binanceName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	var ticker BinancePriceTicker
	if err := json.Unmarshal(body, &ticker); err != nil {
		return Quote{}, newMalformedError(binanceName, err)
	}
	if ticker.Price == "" {
		return Quote{}, newMalformedError(binanceName, fmt.Errorf("price for %q not found in response", id))
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return Quote{}, newMalformedError(binanceName, err)
	}
	if !price.IsPositive() {
		return Quote{}, newMalformedError(binanceName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from Binance", "symbol", id, "price", price)

	return Quote{
		Source:    binanceName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(binanceName, NewBinanceSource)
}
