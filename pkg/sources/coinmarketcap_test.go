package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCoinMarketCapSource_MissingKeyFailsWithoutNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	source, err := NewCoinMarketCapSource(Config{
		BaseURL: server.URL,
		Client:  testClient(),
	})
	if err != nil {
		t.Fatalf("NewCoinMarketCapSource failed: %v", err)
	}

	_, err = source.Fetch(context.Background(), "BTC")

	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if ferr.Reason != ReasonHTTPStatus || ferr.Status != http.StatusUnauthorized {
		t.Errorf("expected http_status 401, got %s %d", ferr.Reason, ferr.Status)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network I/O, server saw %d requests", hits.Load())
	}
}

func TestCoinMarketCapSource_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantPrice  string
		wantReason Reason
	}{
		{
			name:      "successful fetch",
			status:    http.StatusOK,
			body:      `{"status": {"error_code": 0}, "data": {"BTC": {"quote": {"USD": {"price": 100000.5}}}}}`,
			wantPrice: "100000.5",
		},
		{
			name:       "API-level error",
			status:     http.StatusOK,
			body:       `{"status": {"error_code": 400, "error_message": "Invalid symbol"}, "data": {}}`,
			wantReason: ReasonMalformed,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{}`,
			wantReason: ReasonHTTPStatus,
		},
		{
			name:       "symbol missing from response",
			status:     http.StatusOK,
			body:       `{"status": {"error_code": 0}, "data": {"ETH": {"quote": {"USD": {"price": 4000.0}}}}}`,
			wantReason: ReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("X-CMC_PRO_API_KEY"); got != "cmc_key" {
					t.Errorf("expected API key header, got %q", got)
				}
				if got := r.URL.Query().Get("symbol"); got != "BTC" {
					t.Errorf("expected symbol=BTC, got %s", got)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			source, err := NewCoinMarketCapSource(Config{
				APIKey:  "cmc_key",
				BaseURL: server.URL,
				Client:  testClient(),
			})
			if err != nil {
				t.Fatalf("NewCoinMarketCapSource failed: %v", err)
			}

			quote, err := source.Fetch(context.Background(), "BTC")
			if tt.wantReason != "" {
				var ferr *FetchError
				if !errors.As(err, &ferr) {
					t.Fatalf("expected *FetchError, got %v", err)
				}
				if ferr.Reason != tt.wantReason {
					t.Errorf("expected reason %s, got %s", tt.wantReason, ferr.Reason)
				}
				return
			}

			if err != nil {
				t.Fatalf("Fetch failed: %v", err)
			}
			expected, _ := decimal.NewFromString(tt.wantPrice)
			if !quote.Price.Equal(expected) {
				t.Errorf("expected price %s, got %s", expected, quote.Price)
			}
		})
	}
}
