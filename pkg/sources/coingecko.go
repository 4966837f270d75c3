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
	coingeckoName    = "coingecko"
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"
)

// CoinGeckoSource fetches spot prices from the CoinGecko REST API.
// Token ids are CoinGecko slugs, e.g. "bitcoin". The API key is optional;
// when present it is passed as the pro-API query parameter.
type CoinGeckoSource struct {
	apiKey  string
	baseURL string
	client  *Client
	logger  *logging.Logger
}

// NewCoinGeckoSource creates a new CoinGecko source
func NewCoinGeckoSource(cfg Config) (Source, error) {
	baseURL := coingeckoBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &CoinGeckoSource{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  cfg.Client,
		logger:  cfg.logger(),
	}, nil
}

// Name returns the source name
func (s *CoinGeckoSource) Name() string {
	return coingeckoName
}

// Fetch retrieves the USD price for a single CoinGecko id.
func (s *CoinGeckoSource) Fetch(ctx context.Context, id string) (Quote, error) {
	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", s.baseURL, url.QueryEscape(id))
	if s.apiKey != "" {
		requestURL += "&x_cg_pro_api_key=" + url.QueryEscape(s.apiKey)
	}

	body, ferr := s.client.Get(ctx, coingeckoName, requestURL, nil)
	if ferr != nil {
		return Quote{}, ferr
	}

	// Response format: {"bitcoin": {"usd": 100000.0}}
	var data map[string]map[string]float64
	if err := json.Unmarshal(body, &data); err != nil {
		return Quote{}, newMalformedError(coingeckoName, err)
	}

	usd, ok := data[id]["usd"]
	if !ok {
		return Quote{}, newMalformedError(coingeckoName, fmt.Errorf("price for %q not found in response", id))
	}

	price := decimal.NewFromFloat(usd)
	if !price.IsPositive() {
		return Quote{}, newMalformedError(coingeckoName, fmt.Errorf("non-positive price %s for %q", price, id))
	}

	s.logger.Debug("Fetched price from CoinGecko", "id", id, "price", price)

	return Quote{
		Source:    coingeckoName,
		Price:     price,
		Timestamp: time.Now(),
	}, nil
}

func init() {
	Register(coingeckoName, NewCoinGeckoSource)
}
