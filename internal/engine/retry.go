package engine

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimited marks a response with HTTP 429.
var ErrRateLimited = errors.New("rate limited")

// LinearBackOff waits Step × n before the n-th retry (600ms, 1.2s, ...).
// Implements backoff.BackOff.
type LinearBackOff struct {
	Step time.Duration
	n    int
}

// NextBackOff returns the wait before the next attempt.
func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.Step
}

// Reset restarts the sequence.
func (b *LinearBackOff) Reset() { b.n = 0 }

// statusError wraps a non-2xx HTTP status code.
type statusError struct {
	StatusCode int
	Snippet    string
}

func (e *statusError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *statusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// FetchError is returned once the attempt budget is exhausted or a terminal status is hit.
type FetchError struct {
	URL      string
	Status   int // last HTTP status, 0 for transport failures
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusOf extracts the last HTTP status from a fetch error chain (0 if none).
func StatusOf(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) && fe.Status != 0 {
		return fe.Status
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// isRetryable returns true for transient errors worth retrying. HTTP statuses
// follow IsRetryableStatus; any transport failure (dial, DNS, TLS, dropped
// connection, per-attempt deadline) counts as a failed attempt. Cancellation
// of the caller's context is handled by Fetcher.Do before this is consulted.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return IsRetryableStatus(se.StatusCode)
	}
	return true
}

// IsRetryableStatus returns true for HTTP status codes worth retrying.
func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
