package resource

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/lexfrei/go-homectl/internal/httpclient"
	"github.com/lexfrei/go-homectl/internal/middleware"
	"github.com/lexfrei/go-homectl/internal/ratelimit"
	"github.com/lexfrei/go-homectl/internal/response"
	"github.com/lexfrei/go-homectl/internal/retry"
	"github.com/lexfrei/go-homectl/internal/soap"
	"github.com/lexfrei/go-homectl/observability"
)

const (
	// DefaultRateLimit is the default rate limit for regular calls (requests per minute).
	DefaultRateLimit = 600
	// DefaultPollRateLimit is the default rate limit for long-polls (requests per minute).
	DefaultPollRateLimit = 240

	// DefaultMaxRetries is the default number of transport retries for failed requests.
	DefaultMaxRetries = 3
	// DefaultRetryWaitTime is the default wait time between transport retries.
	DefaultRetryWaitTime = 1 * time.Second
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = httpclient.DefaultTimeout

	// pollGrace is added to the long-poll timeout to bound the whole HTTP exchange.
	pollGrace = 5 * time.Second
)

// APIClient talks to the resource service of one controller.
// It is safe for concurrent use; several change streams may share it.
type APIClient struct {
	soap    *soap.Client
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

// Compile-time check to ensure APIClient implements ResourceAPIClient interface.
var _ ResourceAPIClient = (*APIClient)(nil)

// ClientConfig holds configuration for the resource service client.
type ClientConfig struct {
	// ControllerURL is the base URL of the controller, e.g. https://homeserver.local
	ControllerURL string

	// Username and Password authenticate every request (HTTP basic auth)
	Username string
	Password string

	// HTTPClient is the HTTP client to use (optional). It is copied, not modified.
	// A non-zero Timeout must cover a long-poll like Timeout below.
	HTTPClient *http.Client

	// TLSConfig customizes TLS, e.g. for a controller with a private CA (optional)
	TLSConfig *tls.Config

	// InsecureSkipVerify disables certificate verification for self-signed controllers
	InsecureSkipVerify bool

	// CookieJar keeps the controller session (defaults to HTTPClient.Jar, then an in-memory jar)
	CookieJar http.CookieJar

	// RateLimitPerMinute sets the rate limit for regular calls (defaults to 600)
	RateLimitPerMinute int

	// PollRateLimitPerMinute sets the rate limit for long-polls (defaults to 240)
	PollRateLimitPerMinute int

	// MaxRetries sets maximum number of transport retries for failed requests
	MaxRetries int

	// RetryWaitTime sets the wait time between transport retries
	RetryWaitTime time.Duration

	// Timeout sets the HTTP client timeout; it must exceed the longest poll timeout.
	// It also applies to an HTTPClient without a timeout of its own.
	Timeout time.Duration

	// Logger for observability (optional, uses noop logger if nil)
	Logger observability.Logger

	// Metrics recorder for observability (optional, uses noop recorder if nil)
	Metrics observability.MetricsRecorder
}

// New creates a resource client with default settings.
//
// Example:
//
//	client, err := resource.New("https://homeserver.local", "admin", "secret")
func New(controllerURL, username, password string) (*APIClient, error) {
	return NewWithConfig(&ClientConfig{
		ControllerURL: controllerURL,
		Username:      username,
		Password:      password,
	})
}

// NewWithConfig creates a resource client with custom configuration.
//
// Requests pass through, from outside to inside:
// Observability -> RateLimit -> Retry -> BasicAuth -> TLS.
// Long-polls draw from their own rate limit bucket and are never retried by
// the transport; the change stream handles their failures.
//
// Example:
//
//	client, err := resource.NewWithConfig(&resource.ClientConfig{
//	    ControllerURL:      "https://homeserver.local",
//	    Username:           "admin",
//	    Password:           "secret",
//	    InsecureSkipVerify: true,
//	    Logger:             myLogger,
//	    Metrics:            myMetrics,
//	})
func NewWithConfig(cfg *ClientConfig) (*APIClient, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ControllerURL == "" {
		return nil, errors.New("controller URL is required")
	}
	if !strings.HasPrefix(cfg.ControllerURL, "http://") && !strings.HasPrefix(cfg.ControllerURL, "https://") {
		return nil, errors.Newf("controller URL %q must start with http:// or https://", cfg.ControllerURL)
	}
	if cfg.Username == "" {
		return nil, errors.New("username is required")
	}

	// Set defaults
	if cfg.RateLimitPerMinute == 0 {
		cfg.RateLimitPerMinute = DefaultRateLimit
	}
	if cfg.PollRateLimitPerMinute == 0 {
		cfg.PollRateLimitPerMinute = DefaultPollRateLimit
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryWaitTime == 0 {
		cfg.RetryWaitTime = DefaultRetryWaitTime
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Timeout < MaxPollTimeout+pollGrace {
		return nil, errors.Newf("timeout %s is too short for long-polls, need at least %s",
			cfg.Timeout, MaxPollTimeout+pollGrace)
	}
	if cfg.HTTPClient != nil && cfg.HTTPClient.Timeout != 0 && cfg.HTTPClient.Timeout < MaxPollTimeout+pollGrace {
		return nil, errors.Newf("HTTP client timeout %s is too short for long-polls, need at least %s",
			cfg.HTTPClient.Timeout, MaxPollTimeout+pollGrace)
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}
	if cfg.CookieJar == nil && cfg.HTTPClient != nil {
		cfg.CookieJar = cfg.HTTPClient.Jar
	}
	if cfg.CookieJar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		cfg.CookieJar = jar
	}

	callLimiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute, ratelimit.DefaultBurst)
	pollLimiter := ratelimit.NewRateLimiter(cfg.PollRateLimitPerMinute, ratelimit.DefaultBurst)

	pollOperation := ServiceName + "." + opGetResourceValueChanges
	rateLimiterSelector := func(req *http.Request) (*rate.Limiter, string) {
		if soap.OperationFromRequest(req) == pollOperation {
			return pollLimiter, "poll"
		}
		return callLimiter, "call"
	}

	chain := []httpclient.Middleware{
		middleware.Observability(cfg.Logger, cfg.Metrics),
		middleware.RateLimit(middleware.RateLimitConfig{
			Selector: rateLimiterSelector,
			Logger:   cfg.Logger,
			Metrics:  cfg.Metrics,
		}),
		middleware.Retry(middleware.RetryConfig{
			MaxRetries:  cfg.MaxRetries,
			InitialWait: cfg.RetryWaitTime,
			Logger:      cfg.Logger,
			Metrics:     cfg.Metrics,
		}),
		middleware.BasicAuth(cfg.Username, cfg.Password),
	}

	tlsConfig := cfg.TLSConfig
	if tlsConfig == nil && cfg.InsecureSkipVerify {
		tlsConfig = middleware.InsecureSkipVerify()
	}
	if tlsConfig != nil {
		chain = append(chain, middleware.TLSConfig(tlsConfig))
	}

	opts := []httpclient.Option{
		httpclient.WithMiddleware(chain...),
		httpclient.WithCookieJar(cfg.CookieJar),
	}
	if cfg.HTTPClient != nil {
		base := *cfg.HTTPClient
		if base.Timeout == 0 {
			base.Timeout = cfg.Timeout
		}
		opts = append([]httpclient.Option{httpclient.WithHTTPClient(&base)}, opts...)
	} else {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}

	httpClient := httpclient.New(opts...)

	endpoint := strings.TrimSuffix(cfg.ControllerURL, "/") + ServicePath

	return &APIClient{
		soap:    soap.NewClient(httpClient, endpoint, ServiceName),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// EnableNotifications subscribes to value changes of ids and returns their
// current values.
func (c *APIClient) EnableNotifications(ctx context.Context, ids []ID) ([]Value, error) {
	set, err := NewIDSet(ids...)
	if err != nil {
		return nil, err
	}

	resp, err := c.soap.Post(ctx, opEnableNotification, &enableNotificationRequest{IDs: set})
	out, err := response.Handle[enableNotificationResponse](resp, err, "failed to enable notifications")
	if err != nil {
		return nil, err
	}

	return fromWireValues(out.Values)
}

// PollChanges long-polls the controller for changes of subscribed resources.
// timeout is sent in whole seconds and must lie in [MinPollTimeout, MaxPollTimeout).
// An empty result means nothing changed within timeout.
func (c *APIClient) PollChanges(ctx context.Context, timeout time.Duration) ([]Value, error) {
	if err := validatePollTimeout(timeout); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(retry.Disable(ctx), timeout+pollGrace)
	defer cancel()

	req := &getResourceValueChangesRequest{Timeout: int(timeout / time.Second)}

	resp, err := c.soap.Post(ctx, opGetResourceValueChanges, req)
	out, err := response.Handle[getResourceValueChangesResponse](resp, err, "failed to poll value changes")
	if err != nil {
		return nil, err
	}

	return fromWireValues(out.Values)
}

// DisableNotifications cancels the subscription of ids and returns the
// controller's acknowledgement.
func (c *APIClient) DisableNotifications(ctx context.Context, ids []ID) (bool, error) {
	set, err := NewIDSet(ids...)
	if err != nil {
		return false, err
	}

	resp, err := c.soap.Post(ctx, opDisableNotification, &disableNotificationRequest{IDs: set})
	out, err := response.Handle[disableNotificationResponse](resp, err, "failed to disable notifications")
	if err != nil {
		return false, err
	}

	return out.Result, nil
}

// GetValues reads the current values of ids.
func (c *APIClient) GetValues(ctx context.Context, ids []ID) ([]Value, error) {
	set, err := NewIDSet(ids...)
	if err != nil {
		return nil, err
	}

	resp, err := c.soap.Post(ctx, opGetResourceValues, &getResourceValuesRequest{IDs: set})
	out, err := response.Handle[getResourceValuesResponse](resp, err, "failed to get resource values")
	if err != nil {
		return nil, err
	}

	return fromWireValues(out.Values)
}

// SetValues writes values to the controller. A value per resource is expected;
// the call fails if the controller does not confirm the write.
func (c *APIClient) SetValues(ctx context.Context, values []Value) error {
	if len(values) == 0 {
		return errors.New("at least one value is required")
	}

	req := &setResourceValuesRequest{Values: make([]wireValue, 0, len(values))}
	for _, v := range values {
		if !v.ID().Valid() {
			return errors.Newf("invalid resource ID %d: must be positive", v.ID())
		}
		w, err := toWire(v)
		if err != nil {
			return err
		}
		req.Values = append(req.Values, w)
	}

	resp, err := c.soap.Post(ctx, opSetResourceValues, req)
	out, err := response.Handle[setResourceValuesResponse](resp, err, "failed to set resource values")
	if err != nil {
		return err
	}
	if !out.Result {
		return errors.New("controller rejected resource values")
	}

	return nil
}

// StreamChanges subscribes to ids and streams their value changes.
// Logger and Metrics left unset in opts fall back to the client's.
// See the package-level StreamChanges for the stream's lifecycle.
func (c *APIClient) StreamChanges(ctx context.Context, ids []ID, opts *StreamOptions) (*ChangeStream, error) {
	var o StreamOptions
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = c.logger
	}
	if o.Metrics == nil {
		o.Metrics = c.metrics
	}

	return StreamChanges(ctx, c, ids, &o)
}
