package observability_test

import (
	"testing"
	"time"

	"github.com/lexfrei/go-homectl/observability"
)

func TestNoopMetricsRecorder(t *testing.T) {
	t.Parallel()

	recorder := observability.NoopMetricsRecorder()

	// All methods should execute without panicking
	recorder.RecordHTTPRequest("POST", "/soap/ResourceService", 200, time.Second)
	recorder.RecordRetry(1, "GetResourceValueChanges")
	recorder.RecordRateLimit("/soap/ResourceService", time.Millisecond*100)
	recorder.RecordError("poll_changes", "PollFailure")
	recorder.RecordChanges(3)
}

// BenchmarkNoopMetricsRecorder measures the overhead of noop metrics recorder calls.
func BenchmarkNoopMetricsRecorder(b *testing.B) {
	recorder := observability.NoopMetricsRecorder()

	b.Run("RecordHTTPRequest", func(b *testing.B) {
		for range b.N {
			recorder.RecordHTTPRequest("POST", "/soap/ResourceService", 200, time.Second)
		}
	})

	b.Run("RecordRetry", func(b *testing.B) {
		for range b.N {
			recorder.RecordRetry(1, "GetResourceValueChanges")
		}
	})

	b.Run("RecordChanges", func(b *testing.B) {
		for range b.N {
			recorder.RecordChanges(1)
		}
	})
}
