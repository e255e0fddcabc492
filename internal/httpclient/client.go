// Package httpclient builds the *http.Client every service talks to the
// controller through: one base client wrapped in a chain of middleware.
package httpclient

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request. It must stay above the longest
// long-poll timeout the controller accepts (20s).
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client that supports middleware chaining.
type Client struct {
	base       *http.Client
	middleware []Middleware
}

// Middleware wraps an http.RoundTripper to add behavior.
// Middleware is applied in order: first middleware is outermost.
type Middleware func(http.RoundTripper) http.RoundTripper

// New creates a new HTTP client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		base: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.middleware) == 0 {
		return c
	}

	transport := c.base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	for i := len(c.middleware) - 1; i >= 0; i-- {
		transport = c.middleware[i](transport)
	}

	c.base.Transport = transport

	return c
}

// Do executes an HTTP request using the configured middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	//nolint:wrapcheck // Callers wrap with the SOAP operation name
	return c.base.Do(req)
}

// HTTPClient returns the underlying http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}
