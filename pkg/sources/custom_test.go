package sources

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCustomSource_Validation(t *testing.T) {
	tests := []struct {
		name    string
		custom  *CustomConfig
		wantErr bool
	}{
		{name: "nil config", custom: nil, wantErr: true},
		{name: "missing url", custom: &CustomConfig{JSONPath: "price"}, wantErr: true},
		{name: "missing json path", custom: &CustomConfig{URL: "http://example.com"}, wantErr: true},
		{name: "unsupported method", custom: &CustomConfig{URL: "http://example.com", JSONPath: "price", Method: "DELETE"}, wantErr: true},
		{name: "valid GET", custom: &CustomConfig{URL: "http://example.com", JSONPath: "price"}, wantErr: false},
		{name: "valid POST", custom: &CustomConfig{URL: "http://example.com", JSONPath: "price", Method: "post"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCustomSource(Config{Client: testClient(), Custom: tt.custom})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCustomSource() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCustomSource_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantPrice  string
		wantReason Reason
	}{
		{
			name:      "number at nested path",
			path:      "data.price",
			body:      `{"data": {"price": 42.5}}`,
			wantPrice: "42.5",
		},
		{
			name:      "numeric string",
			path:      "rates.USD",
			body:      `{"rates": {"USD": "1.0542"}}`,
			wantPrice: "1.0542",
		},
		{
			name:      "array index path",
			path:      "blocks.0.height",
			body:      `{"blocks": [{"height": 12345}]}`,
			wantPrice: "12345",
		},
		{
			name:       "path not found",
			path:       "data.missing",
			body:       `{"data": {"price": 42.5}}`,
			wantReason: ReasonMalformed,
		},
		{
			name:       "non-numeric value",
			path:       "data.validator",
			body:       `{"data": {"validator": true}}`,
			wantReason: ReasonMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			source, err := NewCustomSource(Config{
				Client: testClient(),
				Custom: &CustomConfig{URL: server.URL, JSONPath: tt.path},
			})
			if err != nil {
				t.Fatalf("NewCustomSource failed: %v", err)
			}

			quote, err := source.Fetch(context.Background(), "")
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

func TestCustomSource_PostWithBodyAndHeaders(t *testing.T) {
	var gotMethod, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"result": {"balance": "99.9"}}`))
	}))
	defer server.Close()

	source, err := NewCustomSource(Config{
		Client: testClient(),
		Custom: &CustomConfig{
			URL:      server.URL,
			JSONPath: "result.balance",
			Method:   "POST",
			Headers:  map[string]string{"Authorization": "Bearer token123"},
			Body:     []byte(`{"method": "eth_getBalance"}`),
		},
	})
	if err != nil {
		t.Fatalf("NewCustomSource failed: %v", err)
	}

	quote, err := source.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotAuth != "Bearer token123" {
		t.Errorf("expected Authorization header, got %q", gotAuth)
	}
	if gotBody != `{"method": "eth_getBalance"}` {
		t.Errorf("unexpected body: %s", gotBody)
	}
	if !quote.Price.Equal(decimal.RequireFromString("99.9")) {
		t.Errorf("expected price 99.9, got %s", quote.Price)
	}
}
