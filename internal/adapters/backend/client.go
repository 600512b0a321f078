// Package backend is the HTTP client of the remote game recommendation API.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/gamerec/pkg/logger"
	"github.com/okian/gamerec/pkg/metrics"
)

// Client defaults.
const (
	defaultTimeout         = 5 * time.Second
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	maxResponseBytes       = 4 << 20
	breakerName            = "backend"
)

// Client talks JSON over HTTP to the remote API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration

	tokens         TokenSource
	onUnauthorized func(ctx context.Context)

	breakerFailures uint32
	breakerTimeout  time.Duration
	breaker         *gobreaker.CircuitBreaker[[]byte]

	logger logger.Logger
}

// New constructs a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse backend url: %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:         parsed,
		timeout:         defaultTimeout,
		onUnauthorized:  func(context.Context) {},
		breakerFailures: defaultBreakerFailures,
		breakerTimeout:  defaultBreakerTimeout,
		logger:          logger.Get().Named("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = newHTTPClient(c.timeout)
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientFault(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			c.logger.Warn(context.Background(), "backend breaker state changed",
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(breakerName, int(gobreaker.StateClosed))
	return c, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConnsPerHost:   16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// BreakerState reports the circuit breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// call describes one request.
type call struct {
	endpoint string // metrics label
	method   string
	path     []string // unescaped path segments below the base URL
	query    url.Values
	body     any
}

// do runs a call through the breaker and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, cl)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordBackendRequest(cl.endpoint, cl.method, "breaker_open", 0)
			return fmt.Errorf("%w: %s %s", ErrCircuitOpen, cl.method, cl.endpoint)
		}
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, cl.endpoint, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) ([]byte, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.RecordBackendRequest(cl.endpoint, cl.method, status, float64(time.Since(start).Milliseconds()))
	}()

	segments := make([]string, len(cl.path))
	for i, s := range cl.path {
		segments[i] = url.PathEscape(s)
	}
	endpoint := c.baseURL.JoinPath(segments...)
	if len(cl.query) > 0 {
		endpoint.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", cl.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", cl.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, cl.method, endpoint.Path, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrTransport, cl.endpoint, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	serr := &StatusError{Method: cl.method, Path: endpoint.Path, Code: resp.StatusCode, Body: string(raw)}
	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info(ctx, "backend rejected credentials; clearing session", logger.String("endpoint", cl.endpoint))
		c.onUnauthorized(ctx)
	} else if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn(ctx, "backend returned server error",
			logger.String("endpoint", cl.endpoint),
			logger.Int("status", resp.StatusCode),
		)
	}
	return nil, serr
}
