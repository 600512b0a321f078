package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/gamerec/pkg/logger"
)

// TokenSource yields the current bearer token, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout bounds every request, including dial and TLS handshake.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the tuned default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource attaches bearer tokens to requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// WithUnauthorizedHook is called whenever the backend answers 401.
func WithUnauthorizedHook(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		if fn != nil {
			c.onUnauthorized = fn
		}
	}
}

// WithBreaker configures the circuit breaker: it opens after failures
// consecutive failures and probes again after timeout.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.breakerFailures = failures
		}
		if timeout > 0 {
			c.breakerTimeout = timeout
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
