// Package config loads the YAML configuration of the homectl-watch command.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/lexfrei/go-homectl/api/resource"
	"github.com/lexfrei/go-homectl/observability"
)

// PasswordEnv overrides controller.password when set.
const PasswordEnv = "HOMECTL_PASSWORD"

// Config is the whole homectl-watch configuration file.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Stream     StreamConfig     `yaml:"stream"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ControllerConfig locates and authenticates against the controller.
// Zero values select the client defaults.
type ControllerConfig struct {
	URL                string        `yaml:"url"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
}

// StreamConfig selects the resources the watch command streams.
type StreamConfig struct {
	ResourceIDs []int64       `yaml:"resource_ids"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

// LogConfig sets the slog level (debug, info, warn, error) and format (json, text).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9100".
	Addr string `yaml:"addr"`
}

// Load reads the file at path, applies defaults and the password override,
// and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	return Parse(raw)
}

// Parse is Load for configuration already in memory.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if password, ok := os.LookupEnv(PasswordEnv); ok {
		cfg.Controller.Password = password
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Controller.URL = strings.TrimSuffix(c.Controller.URL, "/")
	if c.Controller.Timeout == 0 {
		c.Controller.Timeout = resource.DefaultTimeout
	}
	if c.Controller.MaxRetries == 0 {
		c.Controller.MaxRetries = resource.DefaultMaxRetries
	}
	if c.Controller.RateLimitPerMinute == 0 {
		c.Controller.RateLimitPerMinute = resource.DefaultRateLimit
	}
	if c.Stream.PollTimeout == 0 {
		c.Stream.PollTimeout = resource.DefaultPollTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.Controller.URL == "" {
		return errors.New("controller.url is required")
	}
	if c.Controller.Username == "" {
		return errors.New("controller.username is required")
	}
	if c.Controller.MaxRetries < 0 {
		return errors.New("controller.max_retries must not be negative")
	}
	if _, err := c.ResourceIDs(); err != nil {
		return errors.Wrap(err, "stream.resource_ids")
	}
	if c.Stream.PollTimeout < resource.MinPollTimeout || c.Stream.PollTimeout >= resource.MaxPollTimeout {
		return errors.Newf("stream.poll_timeout must be in [%s, %s)", resource.MinPollTimeout, resource.MaxPollTimeout)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.Newf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// ResourceIDs returns the configured IDs as a validated set.
func (c *Config) ResourceIDs() (resource.IDSet, error) {
	ids := make([]resource.ID, 0, len(c.Stream.ResourceIDs))
	for _, id := range c.Stream.ResourceIDs {
		ids = append(ids, resource.ID(id))
	}
	return resource.NewIDSet(ids...)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(err, "log.level %q", l.Level)
	}
	return level, nil
}

// ClientConfig builds the resource client configuration.
func (c *Config) ClientConfig(logger observability.Logger, metrics observability.MetricsRecorder) *resource.ClientConfig {
	return &resource.ClientConfig{
		ControllerURL:      c.Controller.URL,
		Username:           c.Controller.Username,
		Password:           c.Controller.Password,
		InsecureSkipVerify: c.Controller.InsecureSkipVerify,
		Timeout:            c.Controller.Timeout,
		MaxRetries:         c.Controller.MaxRetries,
		RateLimitPerMinute: c.Controller.RateLimitPerMinute,
		Logger:             logger,
		Metrics:            metrics,
	}
}

// StreamOptions builds the change stream options.
func (c *Config) StreamOptions() *resource.StreamOptions {
	return &resource.StreamOptions{
		PollTimeout: c.Stream.PollTimeout,
	}
}
