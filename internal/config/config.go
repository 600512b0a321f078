// Package config defines gamerec configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, .env file and env vars.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address of the gamerec API, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// APIBaseURL is the remote recommendation backend, e.g. "http://localhost:5000/api".
	APIBaseURL string `koanf:"api_base_url" validate:"required,url"`

	// APITimeoutMS bounds every call to the remote backend.
	APITimeoutMS int `koanf:"api_timeout_ms" validate:"gt=0"`

	// StorePath is the badger directory of the client key-value store.
	// Empty keeps the store in memory.
	StorePath string `koanf:"store_path"`

	// BreakerFailures is the number of consecutive backend failures that opens the breaker.
	BreakerFailures int `koanf:"breaker_failures" validate:"gte=1"`

	// BreakerTimeoutMS is how long the breaker stays open before probing again.
	BreakerTimeoutMS int `koanf:"breaker_timeout_ms" validate:"gt=0"`

	// CORSOrigins is a comma separated list of allowed browser origins.
	CORSOrigins string `koanf:"cors_origins"`

	// MockAddr is the listen address of cmd/mockapi.
	MockAddr string `koanf:"mock_addr" validate:"required"`

	// MockJWTSecret signs bearer tokens issued by cmd/mockapi.
	MockJWTSecret string `koanf:"mock_jwt_secret" validate:"required,min=8"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8080",
		APIBaseURL:       "http://localhost:5000/api",
		APITimeoutMS:     5000,
		StorePath:        "",
		BreakerFailures:  5,
		BreakerTimeoutMS: 30_000,
		CORSOrigins:      "http://localhost:3000",
		MockAddr:         ":5000",
		MockJWTSecret:    "gamerec-dev-secret",
	}
}

// APITimeout returns APITimeoutMS as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// BreakerTimeout returns BreakerTimeoutMS as a duration.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.BreakerTimeoutMS) * time.Millisecond
}

// AllowedOrigins splits CORSOrigins, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
