package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zavodil/oracle-ark/pkg/logging"
)

const (
	coinmarketcapName   = "coinmarketcap"
	coinmarketcapAPIURL = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"
)

// CoinMarketCapQuote represents a quote in USD
type CoinMarketCapQuote struct {
	Price float64 `json:"price"`
}

// CoinMarketCapData represents cryptocurrency data
type CoinMarketCapData struct {
	Quote map[string]CoinMarketCapQuote `json:"quote"`
}

// CoinMarketCapResponse represents the API response
type CoinMarketCapResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]CoinMarketCapData `json:"data"`
}

// CoinMarketCapSource fetches prices from the CoinMarketCap REST API.
// Token ids are uppercase tickers, e.g. "BTC". An API key is mandatory;
// a missing key fails as unauthorized before any network call.
type CoinMarketCapSource struct {
	apiKey string
	apiURL string
	client *Client
	logger *logging.Logger
}

// NewCoinMarketCapSource creates a new CoinMarketCap source
func NewCoinMarketCapSource(cfg Config) (Source, error) {
	apiURL := coinmarketcapAPIURL
	if cfg.BaseURL != "" {
		apiURL = cfg.BaseURL
	}
	return &CoinMarketCapSource{
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		client: cfg.Client,
		logger: cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *CoinMarketCapSource) Name() string {
	return coinmarketcapName
}

// Fetch retrieves the USD price for a single ticker symbol.
func (s *CoinMarketCapSource) Fetch(ctx context.Context, id string) (Quote, error) {
	if s.apiKey == "" {
		return Quote{}, newStatusError(coinmarketcapName, http.StatusUnauthorized)
	}

	params := url.Values{}
	params.Add("symbol", id)
	params.Add("convert", "USD")
	requestURL := fmt.Sprintf("%s?%s", s.apiURL, params.Encode())

	headers := map[string]string{"X-CMC_PRO_API_KEY": s.apiKey}
	body, ferr := s.client.Get(ctx, coinmarketcapName, requestURL, headers)
	if ferr != nil {
		return Quote{}, ferr
	}

	// Response format: {"data": {"BTC": {"quote": {"USD": {"price": 100000.0}}}}}
	var response CoinMarketCapResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Quote{}, newMalformedError(coinmarketcapName, err)
	}

	if response.Status.ErrorCode != 0 {
		return Quote{}, newMalformedError(coinmarketcapName,
			fmt.Errorf("API error %d: %s", response.Status.ErrorCode, response.Status.ErrorMessage))
	}

	usdQuote, ok := response.Data[id].Quote["USD"]
	if !ok {
		return Quote{}, newMalformedError(coinmarketcapName, fmt.Errorf("price for %q not found in response", id))
	}

	price := decimal.NewFromFloat(usdQuote.Price)
	if !price.IsPositive() {
		return Quote{}, newMalformedError(coinmarketcapName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from CoinMarketCap", "symbol", id, "price", price)

	return Quote{
		Source:    coinmarketcapName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(coinmarketcapName, NewCoinMarketCapSource)
}
