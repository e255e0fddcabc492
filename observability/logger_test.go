package observability_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/lexfrei/go-homectl/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLogger(t *testing.T) {
	t.Parallel()

	logger := observability.NoopLogger()

	// All methods should execute without panicking
	logger.Debug("test debug")
	logger.Info("test info")
	logger.Warn("test warn")
	logger.Error("test error")

	newLogger := logger.With(observability.Field{Key: "stream_id", Value: "abc"})
	require.NotNil(t, newLogger)
	newLogger.Info("test with logger")
}

func newJSONLogger(buf *bytes.Buffer, level slog.Level) *observability.SlogLogger {
	return observability.NewSlogLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})))
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		log       func(observability.Logger)
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "warn with fields",
			log:       func(l observability.Logger) { l.Warn("poll failed", observability.Field{Key: "attempt", Value: 2}) },
			wantLevel: "WARN",
			wantMsg:   "poll failed",
		},
		{
			name:      "error",
			log:       func(l observability.Logger) { l.Error("disable failed") },
			wantLevel: "ERROR",
			wantMsg:   "disable failed",
		},
		{
			name:      "info",
			log:       func(l observability.Logger) { l.Info("stream started") },
			wantLevel: "INFO",
			wantMsg:   "stream started",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.log(newJSONLogger(&buf, slog.LevelDebug))

			record := decodeRecord(t, &buf)
			assert.Equal(t, tt.wantLevel, record["level"])
			assert.Equal(t, tt.wantMsg, record["msg"])
		})
	}
}

func TestSlogLoggerFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newJSONLogger(&buf, slog.LevelDebug).With(observability.Field{Key: "stream_id", Value: "s-1"})
	logger.Warn("poll failed", observability.Field{Key: "attempt", Value: 3})

	record := decodeRecord(t, &buf)
	assert.Equal(t, "s-1", record["stream_id"])
	assert.InDelta(t, 3, record["attempt"], 0)
}

func TestSlogLoggerLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newJSONLogger(&buf, slog.LevelWarn)
	logger.Debug("hidden")
	logger.Info("hidden")

	assert.Zero(t, buf.Len())
}

func TestNewSlogLoggerNil(t *testing.T) {
	t.Parallel()

	require.NotNil(t, observability.NewSlogLogger(nil))
}

// BenchmarkNoopLogger measures the overhead of noop logger calls.
func BenchmarkNoopLogger(b *testing.B) {
	logger := observability.NoopLogger()

	b.Run("Info", func(b *testing.B) {
		for range b.N {
			logger.Info("test message")
		}
	})

	b.Run("InfoWithFields", func(b *testing.B) {
		fields := []observability.Field{
			{Key: "resource_ids", Value: []int{101, 102}},
			{Key: "attempt", Value: 2},
		}

		for range b.N {
			logger.Info("test message", fields...)
		}
	})
}
