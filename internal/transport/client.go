// Package transport provides the HTTP client plumbing shared by the Open
// Cloud API client: API key authentication, common headers, and response
// decoding.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rbxsync/rbxsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = 30 * time.Second

// APIKeyHeader is the header Open Cloud endpoints authenticate with.
const APIKeyHeader = "x-api-key"

// Client provides HTTP client functionality with API key authentication.
type Client struct {
	http   *http.Client
	apiKey string
}

// New creates a new transport client with the given API key.
func New(apiKey string) *Client {
	return &Client{
		http:   &http.Client{Timeout: DefaultHTTPTimeout},
		apiKey: apiKey,
	}
}

// Do performs an HTTP request with authentication and common headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("Content-Type") == "" {
		switch req.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			req.Header.Set("Content-Type", "application/json")
		}
	}

	return c.http.Do(req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(req)
}

// NewRequest builds an authenticated request with a body.
func (c *Client) NewRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}
	return req, nil
}
