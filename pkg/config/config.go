// Package config provides configuration types and loading for Wordscope.
//
// Configuration is read from a YAML file with environment variable
// expansion (${VAR:-default}, ${VAR}, $VAR), layered on top of .env
// files loaded via godotenv.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL           = "https://api.wordstat.yandex.net/v1"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 10
	DefaultHTTPAddr          = "127.0.0.1:8090"
	DefaultLogLevel          = "info"

	// TokenEnvVar is consulted when api.token is absent from the file.
	TokenEnvVar = "WORDSCOPE_TOKEN"
)

// Config is the root configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig configures the upstream statistics API.
type APIConfig struct {
	// BaseURL is the upstream API root, without a trailing slash.
	BaseURL string `yaml:"base_url"`

	// Token is the OAuth access token, treated as an opaque string.
	Token string `yaml:"token"`

	// Timeout bounds a single upstream HTTP exchange.
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig configures the local outbound rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the admission ceiling for the trailing
	// one-second window.
	RequestsPerSecond int `yaml:"requests_per_second"`
}

// ServerConfig configures the optional REST facade.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads the YAML file at path, expands environment variables,
// applies defaults, and validates the result. An empty path yields the
// default configuration (token still resolved from the environment).
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Token == "" {
		c.API.Token = os.Getenv(TokenEnvVar)
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultHTTPAddr
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.RateLimit.RequestsPerSecond < 1 {
		return fmt.Errorf("rate_limit.requests_per_second must be at least 1, got %d", c.RateLimit.RequestsPerSecond)
	}
	return nil
}
