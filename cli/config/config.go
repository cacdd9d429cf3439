// Package config handles CLI configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	Project     uint64 `yaml:"project"`
	VersionUUID string `yaml:"version_uuid"`
	BaseURL     string `yaml:"base_url"`
	Profile     string `yaml:"profile"`

	Profiles map[string]ProfileConfig `yaml:"profiles"`
}

// ProfileConfig overrides the top-level settings for a named profile.
// The profile name doubles as the keystore entry holding its API key.
type ProfileConfig struct {
	Project     uint64 `yaml:"project,omitempty"`
	VersionUUID string `yaml:"version_uuid,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.latitude/config.yaml
// - Windows: %USERPROFILE%\.latitude\config.yaml
func DefaultConfigPath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		// Fallback to current directory
		return "config.yaml"
	}

	return filepath.Join(homeDir, ".latitude", "config.yaml")
}

// LoadConfig loads configuration from the specified path.
// If the file doesn't exist, returns an empty config without error.
// Returns an error only if the file exists but cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Profiles: make(map[string]ProfileConfig),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is not an error
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Ensure Profiles map is initialized
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]ProfileConfig)
	}

	return cfg, nil
}

// GetProfile returns the profile config for the given name.
// Returns nil if the profile is not configured.
func (c *Config) GetProfile(name string) *ProfileConfig {
	if c.Profiles == nil {
		return nil
	}
	if pc, ok := c.Profiles[name]; ok {
		return &pc
	}
	return nil
}
