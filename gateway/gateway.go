package gateway

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/petal-labs/latitude-go/core"
)

// Client is the HTTP gateway for the Latitude API. It implements
// core.Gateway along with the optional log, evaluation and document
// interfaces. Client is safe for concurrent use.
type Client struct {
	config Config
}

// New creates a new gateway client with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	cfg := Config{
		APIKey:           core.NewSecret(apiKey),
		VersionID:        DefaultVersionID,
		BaseURL:          DefaultBaseURL,
		HTTPClient:       http.DefaultClient,
		Logger:           zerolog.Nop(),
		StreamBufferSize: DefaultStreamBufferSize,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	// Timeout applies to a copy so a shared http.Client is left alone.
	if cfg.Timeout > 0 {
		client := *cfg.HTTPClient
		client.Timeout = cfg.Timeout
		cfg.HTTPClient = &client
	}
	if cfg.StreamBufferSize <= 0 {
		cfg.StreamBufferSize = DefaultStreamBufferSize
	}

	return &Client{config: cfg}
}

// buildHeaders constructs the HTTP headers for an API request.
func (c *Client) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+c.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")

	for key, values := range c.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// resolveProject returns the project id for a request, falling back to
// the configured default.
func (c *Client) resolveProject(id uint64) (uint64, error) {
	if id != 0 {
		return id, nil
	}
	if c.config.ProjectID != 0 {
		return c.config.ProjectID, nil
	}
	return 0, core.ErrProjectRequired
}

// resolveVersion returns the document version for a request, falling
// back to the configured default.
func (c *Client) resolveVersion(id string) string {
	if id != "" {
		return id
	}
	if c.config.VersionID != "" {
		return c.config.VersionID
	}
	return DefaultVersionID
}

// Compile-time checks that Client implements the gateway interfaces.
var (
	_ core.Gateway         = (*Client)(nil)
	_ core.LogWriter       = (*Client)(nil)
	_ core.Evaluator       = (*Client)(nil)
	_ core.DocumentFetcher = (*Client)(nil)
)
