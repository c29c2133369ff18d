// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/l8vibe-tui/internal/logging"
)

// Configuration constants for the project backend.
const (
	// DefaultProjectPath is the project collection endpoint.
	DefaultProjectPath = "/l8vibe/0/proj"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	userAgent = "l8vibe-tui/1.0"
)

// Error variables for common client failures.
var (
	// ErrNoBaseURL indicates the client was built without a server URL.
	ErrNoBaseURL = errors.New("server URL not configured")

	// ErrEmptyResponse indicates a 2xx response carried no usable body.
	ErrEmptyResponse = errors.New("empty response from server")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response exceeds size limit")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API request failed: %d", e.Status)
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("API request failed: %d: %s", e.Status, body)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the project backend.
type Client struct {
	baseURL     string
	projectPath string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the backend at baseURL
// (e.g. "https://localhost:1443").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		projectPath: DefaultProjectPath,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Inf, 1),
		logger:      slog.Default(),
	}
}

// WithProjectPath sets the project collection endpoint.
func (c *Client) WithProjectPath(path string) *Client {
	if path != "" {
		c.projectPath = "/" + strings.TrimPrefix(path, "/")
	}
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client (tests use the
// httptest server's client).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithInsecureSkipVerify accepts self-signed certificates. Development
// backends ship with one.
func (c *Client) WithInsecureSkipVerify(skip bool) *Client {
	if skip {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: true, // #nosec G402 -- opt-in for dev backends
			},
		}
	}
	return c
}

// WithRateLimit throttles outbound requests to rps with a burst of one.
// Zero disables throttling.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return c
}

// WithToken sets a bearer token sent on every request.
func (c *Client) WithToken(token string) *Client {
	c.SetToken(token)
	return c
}

// SetToken replaces the bearer token. Safe to call while requests are in
// flight; an empty token sends no Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// WithLogger sets the request logger.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	c.logger = logging.OrDefault(l)
	return c
}

// BaseURL returns the configured server origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProjectURL returns the full project endpoint URL.
func (c *Client) ProjectURL() string {
	return c.baseURL + c.projectPath
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do sends a request and returns the response body for 2xx statuses.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// Path only: the query string of a list call carries the user's email.
	c.logger.Debug("api request", "method", method, "path", req.URL.Path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}

	c.logger.Debug("api response", "method", method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// withQuery appends the body= query parameter used by list requests.
func withQuery(base string, query any) (string, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}
	return base + "?body=" + url.QueryEscape(string(data)), nil
}
