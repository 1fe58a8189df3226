// Package apiclient talks to the Share a Bite REST API. Every failure is
// returned as a *domain.Error so callers can branch with errors.Is.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"sharebite/internal/domain"
	"sharebite/internal/logger"
)

// TokenSource supplies the bearer token for outgoing requests. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler is told when the server rejects a request that carried
// a token.
type UnauthorizedHandler func(message string)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient replaces the underlying http.Client. Tests use it to route
// requests to an httptest server.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = h
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) unauthorized(message string) {
	c.mu.RLock()
	h := c.onUnauthorized
	c.mu.RUnlock()
	if h != nil {
		h(message)
	}
}

// do sends one request and decodes a 2xx body into out (when out is not nil).
// Non-2xx answers are translated with mapping.
func (c *Client) do(ctx context.Context, method, path string, body, out any, mapping statusMapping) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return domain.NewInternalError(fmt.Errorf("failed to marshal request: %w", err))
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	logger.ExternalServiceCall("sharebite-api", method+" "+path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("sharebite-api", method+" "+path, err, "elapsed", time.Since(start))
		return domain.NewTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.ExternalServiceResult("sharebite-api", method+" "+path, err, "elapsed", time.Since(start))
		return domain.NewTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := mapping.toError(resp.StatusCode, serverMessage(data))
		logger.ExternalServiceResult("sharebite-api", method+" "+path, apiErr, "elapsed", time.Since(start))
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.unauthorized(domain.UserMessage(apiErr))
		}
		return apiErr
	}
	logger.ExternalServiceResult("sharebite-api", method+" "+path, nil, "elapsed", time.Since(start))

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewTransportError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// serverMessage extracts the "error" (or "message") field of an error body.
func serverMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
