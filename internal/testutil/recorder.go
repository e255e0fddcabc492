package testutil

import (
	"sync"
	"time"

	"github.com/lexfrei/go-homectl/observability"
)

// LogEntry is one record captured by RecordingLogger.
type LogEntry struct {
	Level  string
	Msg    string
	Fields []observability.Field
}

// Field returns the value of the named field and whether it was present.
func (e LogEntry) Field(key string) (any, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// RecordingLogger is an observability.Logger that keeps every record in memory.
// Loggers derived with With share the same sink.
type RecordingLogger struct {
	sink   *logSink
	fields []observability.Field
}

// NewRecordingLogger returns an empty recording logger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &logSink{}}
}

func (l *RecordingLogger) Debug(msg string, fields ...observability.Field) { l.add("debug", msg, fields) }
func (l *RecordingLogger) Info(msg string, fields ...observability.Field)  { l.add("info", msg, fields) }
func (l *RecordingLogger) Warn(msg string, fields ...observability.Field)  { l.add("warn", msg, fields) }
func (l *RecordingLogger) Error(msg string, fields ...observability.Field) { l.add("error", msg, fields) }

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *RecordingLogger) With(fields ...observability.Field) observability.Logger {
	merged := append(append([]observability.Field{}, l.fields...), fields...)
	return &RecordingLogger{sink: l.sink, fields: merged}
}

func (l *RecordingLogger) add(level, msg string, fields []observability.Field) {
	all := append(append([]observability.Field{}, l.fields...), fields...)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, LogEntry{Level: level, Msg: msg, Fields: all})
}

// Entries returns a copy of all captured records.
func (l *RecordingLogger) Entries() []LogEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]LogEntry(nil), l.sink.entries...)
}

// Count returns the number of records logged at level.
func (l *RecordingLogger) Count(level string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// RecordingMetrics is an observability.MetricsRecorder that counts events in memory.
type RecordingMetrics struct {
	mu         sync.Mutex
	requests   []string
	retries    []string
	rateLimits int
	errs       []string
	changes    []int
}

func (m *RecordingMetrics) RecordHTTPRequest(_, path string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, path)
}

func (m *RecordingMetrics) RecordRetry(_ int, endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries = append(m.retries, endpoint)
}

func (m *RecordingMetrics) RecordRateLimit(string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimits++
}

func (m *RecordingMetrics) RecordError(operation, errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, operation+":"+errorType)
}

func (m *RecordingMetrics) RecordChanges(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, count)
}

// Requests returns the recorded request paths or operations.
func (m *RecordingMetrics) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requests...)
}

// Retries returns the endpoints recorded by RecordRetry.
func (m *RecordingMetrics) Retries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.retries...)
}

// RateLimits returns how often RecordRateLimit was called.
func (m *RecordingMetrics) RateLimits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rateLimits
}

// Errors returns "operation:type" for every recorded error.
func (m *RecordingMetrics) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errs...)
}

// Changes returns the per-poll change counts.
func (m *RecordingMetrics) Changes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.changes...)
}
