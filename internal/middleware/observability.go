package middleware

import (
	"net/http"
	"time"

	"github.com/lexfrei/go-homectl/internal/soap"
	"github.com/lexfrei/go-homectl/observability"
)

// Observability returns a middleware that logs and records metrics for SOAP calls.
// Requests are labelled by their SOAP operation ("ResourceService.EnableNotification"),
// since every call of a service shares one URL.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	operation := soap.OperationFromRequest(req)

	t.logger.Debug("soap request started",
		observability.Field{Key: "method", Value: req.Method},
		observability.Field{Key: "url", Value: req.URL.Redacted()},
		observability.Field{Key: "operation", Value: operation},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("soap request failed",
			observability.Field{Key: "operation", Value: operation},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)

		t.metrics.RecordError(operation, "NetworkError")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		{Key: "operation", Value: operation},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("soap request completed with error", fields...)
	} else {
		t.logger.Debug("soap request completed", fields...)
	}

	t.metrics.RecordHTTPRequest(req.Method, operation, resp.StatusCode, duration)

	return resp, nil
}
