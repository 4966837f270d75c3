package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPythSource_Fetch(t *testing.T) {
	publishTime := time.Now().Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"parsed": [{"price": {"price": "9700123456789", "expo": -8, "publish_time": %d}}]}`, publishTime)
	}))
	defer server.Close()

	source, err := NewPythSource(Config{BaseURL: server.URL, Client: testClient()})
	if err != nil {
		t.Fatalf("NewPythSource failed: %v", err)
	}

	quote, err := source.Fetch(context.Background(), "0xe62df6c8")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	// 9700123456789 * 10^-8
	if !quote.Price.Equal(decimal.RequireFromString("97001.23456789")) {
		t.Errorf("expected price 97001.23456789, got %s", quote.Price)
	}
	if quote.Timestamp.Unix() != publishTime {
		t.Errorf("expected publish time %d, got %d", publishTime, quote.Timestamp.Unix())
	}
}

func TestPythSource_StalePrice(t *testing.T) {
	publishTime := time.Now().Add(-10 * time.Minute).Unix()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"parsed": [{"price": {"price": "100", "expo": 0, "publish_time": %d}}]}`, publishTime)
	}))
	defer server.Close()

	source, err := NewPythSource(Config{BaseURL: server.URL, Client: testClient()})
	if err != nil {
		t.Fatalf("NewPythSource failed: %v", err)
	}

	_, err = source.Fetch(context.Background(), "0xe62df6c8")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if ferr.Reason != ReasonMalformed {
		t.Errorf("expected reason malformed_response, got %s", ferr.Reason)
	}
}
