// Package retry holds the retry and backoff policy shared by the transport
// middleware and the resource change stream.
package retry

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// ShouldRetry returns true if the HTTP status code indicates a retryable error.
// Retryable errors include:
//   - 429 (Too Many Requests) - rate limit exceeded
//   - 502, 503, 504 - gateway and availability issues on the controller
//
// 500 is not retried: the controller reports SOAP faults with that status,
// and a fault is an answer, not a transport problem.
func ShouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// ParseRetryAfter parses the Retry-After HTTP header and returns the duration to wait.
// The Retry-After header can contain either:
//   - Number of seconds (e.g., "120")
//   - HTTP-date (not currently supported, returns 0)
//
// Returns 0 if the header is empty or cannot be parsed.
func ParseRetryAfter(retryAfterHeader string) time.Duration {
	if retryAfterHeader == "" {
		return 0
	}

	seconds, err := strconv.Atoi(retryAfterHeader)
	if err == nil {
		return time.Duration(seconds) * time.Second
	}

	return 0
}

// QuadraticBackoff returns failures² × unit, the wait applied after the given
// number of consecutive failures. Zero or negative failure counts yield 0.
func QuadraticBackoff(failures int, unit time.Duration) time.Duration {
	if failures <= 0 {
		return 0
	}
	return time.Duration(failures*failures) * unit
}

type disabledKey struct{}

// Disable returns a context that tells the retry middleware to send the
// request exactly once. Long-polls use it so that failures are counted by
// the caller's own policy.
func Disable(ctx context.Context) context.Context {
	return context.WithValue(ctx, disabledKey{}, true)
}

// Disabled reports whether retries were turned off for ctx.
func Disabled(ctx context.Context) bool {
	v, _ := ctx.Value(disabledKey{}).(bool)
	return v
}
