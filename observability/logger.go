package observability

// Field is one structured key-value pair, e.g. stream_id or resource_ids.
type Field struct {
	Key   string
	Value any
}

// Logger receives the library's structured log events: transport retries and
// rate-limit waits at debug/warn, failed polls at warn, and change streams
// giving up or failing to disable notifications at error.
//
// Adapters for slog, zap, logrus or similar only need to map levels and
// fields; NewSlogLogger is the slog one.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a logger that adds fields to every event. A change stream
	// uses it to tag all of its events with stream_id and resource_ids.
	With(fields ...Field) Logger
}

type noopLogger struct{}

// NoopLogger returns a logger that drops every event. Clients and streams use
// it when no Logger is configured.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Warn(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l noopLogger) With(...Field) Logger { return l }
