// Package ratelimit builds the client-side token bucket that protects the
// controller from request bursts.
package ratelimit

import "golang.org/x/time/rate"

// DefaultBurst is the burst size used when none is configured. Embedded
// controllers handle a handful of parallel SOAP calls at best.
const DefaultBurst = 5

// NewRateLimiter creates a new rate limiter with specified requests per minute.
// Tokens are replenished continuously at requestsPerMinute/60 per second. The
// bucket holds at most burst tokens; burst <= 0 selects DefaultBurst, and the
// burst never exceeds requestsPerMinute.
func NewRateLimiter(requestsPerMinute, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	if burst > requestsPerMinute {
		burst = requestsPerMinute
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}
