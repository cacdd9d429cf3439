package gateway

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIKeyEnvVar is the environment variable name for the
// Latitude API key.
const DefaultAPIKeyEnvVar = "LATITUDE_API_KEY"

// ErrAPIKeyNotFound is returned when the API key environment variable
// is not set.
var ErrAPIKeyNotFound = errors.New("latitude: LATITUDE_API_KEY environment variable not set")

// envConfig mirrors the environment variables recognized by NewFromEnv.
type envConfig struct {
	APIKey    string `env:"LATITUDE_API_KEY"`
	ProjectID uint64 `env:"LATITUDE_PROJECT_ID"`
	VersionID string `env:"LATITUDE_VERSION_UUID"`
	BaseURL   string `env:"LATITUDE_BASE_URL"`
}

// NewFromEnv creates a gateway client configured from the environment.
// LATITUDE_API_KEY is required. LATITUDE_PROJECT_ID,
// LATITUDE_VERSION_UUID and LATITUDE_BASE_URL are optional; explicit
// options take precedence over environment values.
//
//	gw, err := gateway.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(gw)
func NewFromEnv(opts ...Option) (*Client, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, err
	}
	if ec.APIKey == "" {
		return nil, ErrAPIKeyNotFound
	}

	envOpts := make([]Option, 0, len(opts)+3)
	if ec.ProjectID != 0 {
		envOpts = append(envOpts, WithProjectID(ec.ProjectID))
	}
	if ec.VersionID != "" {
		envOpts = append(envOpts, WithVersionID(ec.VersionID))
	}
	if ec.BaseURL != "" {
		envOpts = append(envOpts, WithBaseURL(ec.BaseURL))
	}
	envOpts = append(envOpts, opts...)

	return New(ec.APIKey, envOpts...), nil
}
