// Package gateway provides the HTTP gateway implementation for the
// Latitude prompt execution API.
package gateway

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/petal-labs/latitude-go/core"
)

// DefaultBaseURL is the default base URL for the Latitude API.
const DefaultBaseURL = "https://gateway.latitude.so/api/v2"

// DefaultVersionID is the document version used when none is configured.
const DefaultVersionID = "live"

// DefaultStreamBufferSize is the default capacity of the event channel
// for streaming runs.
const DefaultStreamBufferSize = 100

// Config holds the configuration for the Latitude gateway client.
type Config struct {
	// APIKey is the API key for authentication.
	APIKey core.Secret

	// ProjectID is the default project for requests that do not set one.
	ProjectID uint64

	// VersionID is the default document version for requests that do
	// not set one. Defaults to DefaultVersionID.
	VersionID string

	// BaseURL is the base URL for the API. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient is the HTTP client to use for requests.
	HTTPClient *http.Client

	// Headers are additional headers to include in requests.
	Headers http.Header

	// Timeout is the request timeout. It covers the whole request
	// including streaming reads, so prefer context deadlines for
	// streamed runs. Zero means no timeout.
	Timeout time.Duration

	// Limiter rate limits outgoing requests when set. Nil disables
	// client-side limiting.
	Limiter *rate.Limiter

	// Logger receives debug logging for stream anomalies such as
	// unrecognized events. Defaults to a no-op logger.
	Logger zerolog.Logger

	// StreamBufferSize is the capacity of the event channel for
	// streaming runs. Defaults to DefaultStreamBufferSize.
	StreamBufferSize int
}

// Option is a functional option for configuring the gateway client.
type Option func(*Config)

// WithProjectID sets the default project for requests.
func WithProjectID(id uint64) Option {
	return func(c *Config) {
		c.ProjectID = id
	}
}

// WithVersionID sets the default document version for requests.
func WithVersionID(id string) Option {
	return func(c *Config) {
		c.VersionID = id
	}
}

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeaders sets additional headers to include in requests.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRateLimiter sets a client-side rate limiter applied before each
// request.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Config) {
		c.Limiter = l
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStreamBufferSize sets the capacity of the event channel for
// streaming runs.
func WithStreamBufferSize(n int) Option {
	return func(c *Config) {
		c.StreamBufferSize = n
	}
}
