package loadtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// HTTPClient talks to the gamerec HTTP API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON and decodes a 2xx answer into out. It returns the
// status code so callers can tell an unexpected answer from a failure.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	return err
}

func (c *HTTPClient) login(ctx context.Context, email, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/session", map[string]string{"email": email, "password": password}, nil)
	return err
}

func (c *HTTPClient) mount(ctx context.Context, subject string) (widgetState, error) {
	var st widgetState
	_, err := c.do(ctx, http.MethodPut, "/api/widgets/"+subject, nil, &st)
	return st, err
}

func (c *HTTPClient) widget(ctx context.Context, subject string) (widgetState, error) {
	var st widgetState
	_, err := c.do(ctx, http.MethodGet, "/api/widgets/"+subject, nil, &st)
	return st, err
}

func (c *HTTPClient) selectRating(ctx context.Context, subject string, value int) (selectResponse, error) {
	var out selectResponse
	_, err := c.do(ctx, http.MethodPost, "/api/widgets/"+subject+"/rating", map[string]int{"rating": value}, &out)
	return out, err
}

func (c *HTTPClient) recommendations(ctx context.Context) (recommendations, error) {
	var out recommendations
	_, err := c.do(ctx, http.MethodGet, "/api/recommendations", nil, &out)
	return out, err
}
