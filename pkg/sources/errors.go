// Package sources provides price source interfaces and implementations.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Reason classifies why a fetch attempt failed.
type Reason string

const (
	// ReasonHTTPStatus indicates a non-2xx HTTP response.
	ReasonHTTPStatus Reason = "http_status"
	// ReasonNetwork indicates a transport-level failure before a response arrived.
	ReasonNetwork Reason = "network"
	// ReasonMalformed indicates a response body that could not be parsed into a price.
	ReasonMalformed Reason = "malformed_response"
	// ReasonTimeout indicates the request exceeded the fetch timeout.
	ReasonTimeout Reason = "timeout"
)

// ErrUnknownSource indicates a source name with no registered factory.
var ErrUnknownSource = errors.New("unknown source")

// FetchError is the classified failure of a single fetch attempt. It stays a
// structured value through the whole pipeline and is folded into display text
// only at response assembly.
type FetchError struct {
	Source string
	Reason Reason
	Status int // HTTP status code, set when Reason is ReasonHTTPStatus
	Err    error
}

// Error renders the compact form used in per-token diagnostic messages,
// e.g. "coingecko: HTTP 429".
func (e *FetchError) Error() string {
	switch e.Reason {
	case ReasonHTTPStatus:
		return fmt.Sprintf("%s: HTTP %d", e.Source, e.Status)
	case ReasonTimeout:
		return fmt.Sprintf("%s: timeout", e.Source)
	case ReasonNetwork:
		return fmt.Sprintf("%s: network error", e.Source)
	default:
		return fmt.Sprintf("%s: malformed response", e.Source)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// newStatusError builds a FetchError for a non-2xx HTTP response.
func newStatusError(source string, status int) *FetchError {
	return &FetchError{Source: source, Reason: ReasonHTTPStatus, Status: status}
}

// newTransportError classifies a transport failure as timeout or network.
func newTransportError(source string, err error) *FetchError {
	reason := ReasonNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		reason = ReasonTimeout
	}
	return &FetchError{Source: source, Reason: reason, Err: err}
}

// newMalformedError builds a FetchError for an unparsable response body.
func newMalformedError(source string, err error) *FetchError {
	return &FetchError{Source: source, Reason: ReasonMalformed, Err: err}
}
