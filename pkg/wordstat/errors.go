package wordstat

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// TransportError wraps a network-level failure: the request never
// produced an HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wordstat: transport failure on %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RateLimitedError is returned when the remote answers HTTP 429.
// RetryAfter carries the remote's hint as metadata; the client never
// acts on it.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("wordstat: rate limited by remote (retry after %v)", e.RetryAfter)
	}
	return "wordstat: rate limited by remote"
}

// QuotaExceededError is returned when the remote answers HTTP 503,
// which this API uses to signal an exhausted usage quota.
type QuotaExceededError struct {
	Body string
}

func (e *QuotaExceededError) Error() string {
	return "wordstat: API quota exceeded"
}

// RemoteError is any other non-2xx response. Body carries the raw
// response for diagnostics.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("wordstat: remote returned HTTP %d: %s", e.Status, e.Body)
}

// IsRateLimited checks if an error is a remote rate limit rejection.
func IsRateLimited(err error) bool {
	var e *RateLimitedError
	return errors.As(err, &e)
}

// IsQuotaExceeded checks if an error is a quota exhaustion rejection.
func IsQuotaExceeded(err error) bool {
	var e *QuotaExceededError
	return errors.As(err, &e)
}

// IsTransport checks if an error is a network-level failure.
func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// RetryAfterHint extracts the Retry-After metadata from a rate limit
// error, or zero when absent.
func RetryAfterHint(err error) time.Duration {
	var e *RateLimitedError
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// parseRetryAfter reads a Retry-After header as integer seconds or an
// HTTP date. Returns zero when the header is absent or malformed.
func parseRetryAfter(headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
