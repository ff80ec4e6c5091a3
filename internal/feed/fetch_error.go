package feed

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FetchErrorType classifies feed fetch failures. Retryable failures get
// backed-off retries within a run; permanent failures fail the source
// immediately and only count against its health record.
type FetchErrorType string

const (
	// FetchErrorTypeNetwork covers connection-level failures.
	FetchErrorTypeNetwork FetchErrorType = "network"
	// FetchErrorTypeTimeout covers request deadline expiry.
	FetchErrorTypeTimeout FetchErrorType = "timeout"
	// FetchErrorTypeHTTP covers non-2xx HTTP responses.
	FetchErrorTypeHTTP FetchErrorType = "http"
	// FetchErrorTypeParse covers malformed feed documents.
	FetchErrorTypeParse FetchErrorType = "parse"
)

// FetchError is a classified feed fetch failure.
type FetchError struct {
	SourceID   string
	Type       FetchErrorType
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Type == FetchErrorTypeHTTP {
		return fmt.Sprintf("fetch %s: HTTP %d", e.SourceID, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.SourceID, e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the failure is worth retrying within this
// run. Network errors, timeouts, rate limiting, and server errors are
// transient; parse failures and other client errors are not.
func (e *FetchError) IsRetryable() bool {
	switch e.Type {
	case FetchErrorTypeNetwork, FetchErrorTypeTimeout:
		return true
	case FetchErrorTypeHTTP:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}

// newRequestError classifies a transport-level error from the HTTP client.
func newRequestError(sourceID string, err error) *FetchError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{SourceID: sourceID, Type: FetchErrorTypeTimeout, Err: err}
	}
	return &FetchError{SourceID: sourceID, Type: FetchErrorTypeNetwork, Err: err}
}

// isRetryableFetchError adapts FetchError classification to a retry predicate.
func isRetryableFetchError(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.IsRetryable()
	}
	return false
}
