package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/lexfrei/go-homectl/internal/middleware"
	"github.com/lexfrei/go-homectl/internal/soap"
	"github.com/lexfrei/go-homectl/internal/testutil"
)

func okServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

// only routes every request to limiter.
func only(limiter *rate.Limiter) middleware.RateLimiterSelector {
	return func(*http.Request) (*rate.Limiter, string) {
		return limiter, "call"
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("one bucket", func(t *testing.T) {
		t.Parallel()

		server := okServer(t)
		metrics := &testutil.RecordingMetrics{}

		// Allow 2 requests per second
		limiter := rate.NewLimiter(2, 2)

		transport := middleware.RateLimit(middleware.RateLimitConfig{
			Selector: only(limiter),
			Metrics:  metrics,
		})(http.DefaultTransport)

		for i := range 2 {
			start := time.Now()
			resp, err := transport.RoundTrip(newSOAPRequest(t, server.URL, "GetResourceValues"))
			duration := time.Since(start)

			require.NoError(t, err)
			resp.Body.Close()

			assert.Less(t, duration, 100*time.Millisecond, "request %d should complete quickly", i+1)
		}

		start := time.Now()
		resp, err := transport.RoundTrip(newSOAPRequest(t, server.URL, "GetResourceValues"))
		duration := time.Since(start)

		require.NoError(t, err)
		resp.Body.Close()

		assert.GreaterOrEqual(t, duration, 100*time.Millisecond, "third request should be rate limited")
		assert.Equal(t, 1, metrics.RateLimits())
	})

	t.Run("selector mode", func(t *testing.T) {
		t.Parallel()

		server := okServer(t)

		pollLimiter := rate.NewLimiter(100, 100)
		callLimiter := rate.NewLimiter(1, 1)

		selector := func(req *http.Request) (*rate.Limiter, string) {
			if soap.OperationFromRequest(req) == "ResourceService.GetResourceValueChanges" {
				return pollLimiter, "poll"
			}
			return callLimiter, "default"
		}

		transport := middleware.RateLimit(middleware.RateLimitConfig{
			Selector: selector,
		})(http.DefaultTransport)

		// Use up the default bucket
		resp, err := transport.RoundTrip(newSOAPRequest(t, server.URL, "SetResourceValues"))
		require.NoError(t, err)
		resp.Body.Close()

		// Long-polls draw from their own bucket
		start := time.Now()
		resp, err = transport.RoundTrip(newSOAPRequest(t, server.URL, "GetResourceValueChanges"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Less(t, time.Since(start), 50*time.Millisecond, "poll should not wait on the default bucket")

		start = time.Now()
		resp, err = transport.RoundTrip(newSOAPRequest(t, server.URL, "SetResourceValues"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond, "default bucket should be rate limited")
	})

	t.Run("no limiter - no rate limiting", func(t *testing.T) {
		t.Parallel()

		server := okServer(t)

		for name, cfg := range map[string]middleware.RateLimitConfig{
			"nil selector": {},
			"nil limiter":  {Selector: only(nil)},
		} {
			transport := middleware.RateLimit(cfg)(http.DefaultTransport)

			start := time.Now()
			resp, err := transport.RoundTrip(newSOAPRequest(t, server.URL, "GetResourceValues"))
			duration := time.Since(start)

			require.NoError(t, err, name)
			resp.Body.Close()

			assert.Less(t, duration, 50*time.Millisecond, "%s: request should complete quickly", name)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		server := okServer(t)

		limiter := rate.NewLimiter(0.1, 1)
		limiter.Allow() // Use up the token

		transport := middleware.RateLimit(middleware.RateLimitConfig{
			Selector: only(limiter),
		})(http.DefaultTransport)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		req := newSOAPRequest(t, server.URL, "GetResourceValues").WithContext(ctx)
		resp, err := transport.RoundTrip(req)
		if resp != nil {
			resp.Body.Close()
		}

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
