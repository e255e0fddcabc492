package middleware

import (
	"maps"
	"net/http"
)

// BasicAuth returns a middleware that authenticates every request with HTTP
// basic credentials, the scheme the controller's SOAP endpoints accept.
// The session cookie the controller hands out is kept by the client's cookie jar.
func BasicAuth(username, password string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = cloneRequest(req)
			req.SetBasicAuth(username, password)

			//nolint:wrapcheck // Middleware passes through errors from next handler in chain
			return next.RoundTrip(req)
		})
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
