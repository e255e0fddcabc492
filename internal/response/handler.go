// Package response turns raw controller HTTP responses into decoded SOAP
// payloads or errors, so service methods stay free of boilerplate.
package response

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-homectl/internal/soap"
)

// maxBodySize bounds how much of a response body is read into memory.
const maxBodySize = 8 << 20

// Handle is a generic handler for SOAP responses.
// It checks for transport errors, validates the status code, and decodes the
// SOAP body into a new T. HTTP 500 responses carrying a SOAP fault are
// returned as a *soap.Fault wrapped with errorMsg.
//
// Usage:
//
//	resp, err := c.soap.Post(ctx, opEnableNotification, req)
//	out, err := response.Handle[enableNotificationResponse](resp, err, "failed to enable notifications")
func Handle[T any](resp *http.Response, err error, errorMsg string) (*T, error) {
	return HandleWithStatus[T](resp, err, errorMsg, http.StatusOK)
}

// HandleWithStatus is like Handle but allows specifying the expected status code.
func HandleWithStatus[T any](resp *http.Response, err error, errorMsg string, expectedStatus int) (*T, error) {
	if err != nil {
		return nil, errors.Wrap(err, errorMsg)
	}
	if resp == nil {
		return nil, errors.New("empty response from API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, errorMsg+": failed to read response body")
	}

	if resp.StatusCode != expectedStatus {
		return nil, statusError(resp.StatusCode, body, errorMsg)
	}

	out := new(T)
	if err := soap.Unmarshal(body, out); err != nil {
		return nil, errors.Wrap(err, errorMsg)
	}

	return out, nil
}

// statusError prefers the SOAP fault carried by an error response over the bare status.
func statusError(statusCode int, body []byte, errorMsg string) error {
	var probe struct{}
	err := soap.Unmarshal(body, &probe)

	var fault *soap.Fault
	if errors.As(err, &fault) {
		return errors.Wrapf(fault, "%s: status=%d", errorMsg, statusCode)
	}

	//nolint:wrapcheck // Creating new error for non-expected status, no source error to wrap
	return errors.Newf("%s: API error: status=%d", errorMsg, statusCode)
}
