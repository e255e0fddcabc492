package soap

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ActionPrefix prefixes every SOAPAction header value.
const ActionPrefix = "urn:homectl:"

// Action builds the SOAPAction header value for an operation of a service.
func Action(service, operation string) string {
	return ActionPrefix + service + "#" + operation
}

// OperationFromRequest returns "Service.Operation" for requests carrying a
// SOAPAction header, or the URL path for anything else.
func OperationFromRequest(req *http.Request) string {
	action := strings.Trim(req.Header.Get("SOAPAction"), `"`)
	if action == "" {
		return req.URL.Path
	}

	action = strings.TrimPrefix(action, ActionPrefix)
	service, operation, found := strings.Cut(action, "#")
	if !found {
		return action
	}

	return service + "." + operation
}

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts SOAP envelopes to one service endpoint of the controller.
type Client struct {
	doer     Doer
	endpoint string
	service  string
}

// NewClient creates a client for the given service. endpoint is the full URL
// of the service, e.g. "https://homeserver.local/soap/ResourceService".
func NewClient(doer Doer, endpoint, service string) *Client {
	return &Client{
		doer:     doer,
		endpoint: endpoint,
		service:  service,
	}
}

// Post encodes payload into an envelope and sends it as operation.
// The caller owns the returned response body.
func (c *Client) Post(ctx context.Context, operation string, payload any) (*http.Response, error) {
	body, err := Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s request", operation)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("Accept", "text/xml")
	req.Header.Set("SOAPAction", `"`+Action(c.service, operation)+`"`)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request failed", operation)
	}

	return resp, nil
}
