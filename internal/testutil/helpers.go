// Package testutil provides common testing utilities and helpers.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-homectl/internal/soap"
)

// Envelope wraps inner XML into a SOAP response envelope.
func Envelope(inner string) string {
	return `<?xml version="1.0" encoding="utf-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
		inner +
		`</soap:Body></soap:Envelope>`
}

// FaultEnvelope builds a SOAP fault response.
func FaultEnvelope(code, message string) string {
	return Envelope(fmt.Sprintf(`<soap:Fault><faultcode>%s</faultcode><faultstring>%s</faultstring></soap:Fault>`, code, message))
}

// Operation extracts the bare operation name ("EnableNotification") from a SOAP request.
func Operation(r *http.Request) string {
	op := soap.OperationFromRequest(r)
	if _, after, found := strings.Cut(op, "."); found {
		return after
	}
	return op
}

// WriteXML writes body as a SOAP response with the given status.
func WriteXML(t *testing.T, w http.ResponseWriter, statusCode int, body string) {
	t.Helper()

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err := w.Write([]byte(body))
	assert.NoError(t, err, "Failed to write response body")
}

// NewMockServer creates a test SOAP server with a predefined response.
// It validates the request path and SOAP operation, then returns the specified response.
func NewMockServer(t *testing.T, expectedPath, expectedOperation, responseBody string, statusCode int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method, "SOAP requests must be POSTs")
		assert.Equal(t, expectedPath, r.URL.Path, "Request path should match expected")
		assert.Equal(t, expectedOperation, Operation(r), "SOAP operation should match expected")

		WriteXML(t, w, statusCode, responseBody)
	}))
}

// NewMockServerMulti creates a test SOAP server dispatching on the operation name.
func NewMockServerMulti(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[Operation(r)]
		if !ok {
			t.Errorf("Unexpected SOAP operation: %s", Operation(r))
			WriteXML(t, w, http.StatusInternalServerError, FaultEnvelope("soap:Client", "unknown operation"))
			return
		}
		handler(w, r)
	}))
}

// MockResponse is one canned reply of NewMockServerSequence.
type MockResponse struct {
	Body       string
	StatusCode int
}

// NewMockServerSequence creates a test server that returns responses in sequence.
// Each call to the server returns the next response in the slice.
// Useful for testing retry logic.
func NewMockServerSequence(t *testing.T, responses []MockResponse) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	callCount := 0

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		idx := callCount
		callCount++
		mu.Unlock()

		if idx >= len(responses) {
			t.Errorf("More requests than configured responses (got %d requests, have %d responses)",
				idx+1, len(responses))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		WriteXML(t, w, responses[idx].StatusCode, responses[idx].Body)
	}))
}

// RequireBasicAuth asserts the request carries the given basic credentials.
func RequireBasicAuth(t *testing.T, r *http.Request, username, password string) {
	t.Helper()

	user, pass, ok := r.BasicAuth()
	require.True(t, ok, "request should carry basic auth")
	assert.Equal(t, username, user)
	assert.Equal(t, password, pass)
}
