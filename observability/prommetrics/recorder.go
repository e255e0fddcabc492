// Package prommetrics implements observability.MetricsRecorder on top of
// Prometheus client_golang collectors.
package prommetrics

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexfrei/go-homectl/observability"
)

const namespace = "homectl"

// Recorder records client metrics into Prometheus collectors.
type Recorder struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	retries   *prometheus.CounterVec
	rateWait  *prometheus.HistogramVec
	errs      *prometheus.CounterVec
	changes   prometheus.Counter
	pollSizes prometheus.Histogram
}

// Compile-time check to ensure Recorder implements observability.MetricsRecorder.
var _ observability.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them via promhttp.Handler().
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("registerer is required")
	}

	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soap_requests_total",
			Help:      "SOAP requests sent to the controller by path and status code.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "soap_request_duration_seconds",
			Help:      "SOAP request latency, including long-poll wait time.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 13),
		}, []string{"path"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retried requests and failed long-polls by endpoint.",
		}, []string{"endpoint"}),
		rateWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the client-side rate limiter.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"endpoint"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors by operation and type.",
		}, []string{"operation", "type"}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_changes_total",
			Help:      "Resource value changes delivered by change streams.",
		}),
		pollSizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resource_changes_per_poll",
			Help:      "Number of changes returned by a single long-poll.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
	}

	collectors := []prometheus.Collector{
		r.requests, r.latency, r.retries, r.rateWait, r.errs, r.changes, r.pollSizes,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return r, nil
}

// RecordHTTPRequest implements observability.MetricsRecorder.
func (r *Recorder) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	r.requests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	r.latency.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordRetry implements observability.MetricsRecorder.
func (r *Recorder) RecordRetry(_ int, endpoint string) {
	r.retries.WithLabelValues(endpoint).Inc()
}

// RecordRateLimit implements observability.MetricsRecorder.
func (r *Recorder) RecordRateLimit(endpoint string, wait time.Duration) {
	r.rateWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

// RecordError implements observability.MetricsRecorder.
func (r *Recorder) RecordError(operation, errorType string) {
	r.errs.WithLabelValues(operation, errorType).Inc()
}

// RecordChanges implements observability.MetricsRecorder.
func (r *Recorder) RecordChanges(count int) {
	r.pollSizes.Observe(float64(count))
	r.changes.Add(float64(count))
}
