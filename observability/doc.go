// Package observability provides interfaces for logging and metrics collection
// in the go-homectl library.
//
// This package defines standard interfaces that allow users to integrate their
// own logging and metrics implementations with controller API clients.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := observability.NewSlogLogger(slog.Default())
//	client, err := homectl.NewClient(homectl.ClientConfig{
//		ControllerURL: "https://homeserver.local",
//		Username:      "admin",
//		Password:      "secret",
//		Logger:        logger,
//	})
//
// Supported log levels:
//   - Debug: Detailed diagnostic information
//   - Info: General informational messages
//   - Warn: Warning messages, e.g. a single failed long-poll
//   - Error: Error messages, e.g. an exhausted change stream
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks API client metrics:
//
//	metrics, err := prommetrics.NewRecorder(prometheus.DefaultRegisterer)
//	client, err := homectl.NewClient(homectl.ClientConfig{
//		ControllerURL: "https://homeserver.local",
//		Username:      "admin",
//		Metrics:       metrics,
//	})
//
// Tracked metrics include:
//   - SOAP request count, status codes, and duration
//   - Retry attempts for failed requests and long-polls
//   - Rate limiting events and wait times
//   - Error occurrences by type
//   - Resource value changes delivered by the change stream
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events. This ensures zero overhead
// when observability is not needed.
//
// # Example
//
// See examples/observability/main.go for a complete working example.
package observability
