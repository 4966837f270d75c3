package sources

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/zavodil/oracle-ark/pkg/version"
)

// Client is a small wrapper around http.Client shared by all sources.
// Every request is bounded by the fetch timeout; a request that exceeds it
// resolves to a timeout FetchError instead of blocking.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// NewClient creates a client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: version.AgentString(),
	}
}

// Get performs a GET request for a source and returns the body on any 2xx
// status. Transport failures, non-2xx statuses and unreadable bodies come
// back as classified *FetchError values.
func (c *Client) Get(ctx context.Context, source, url string, headers map[string]string) ([]byte, *FetchError) {
	return c.do(ctx, source, http.MethodGet, url, headers, nil)
}

// Do performs a request with an arbitrary method and optional JSON body.
// Used by the custom source; everything else is plain GET.
func (c *Client) Do(ctx context.Context, source, method, url string, headers map[string]string, body []byte) ([]byte, *FetchError) {
	return c.do(ctx, source, method, url, headers, body)
}

func (c *Client) do(ctx context.Context, source, method, url string, headers map[string]string, body []byte) ([]byte, *FetchError) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, newMalformedError(source, err)
	}

	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, newTransportError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(source, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(source, err)
	}

	return data, nil
}
