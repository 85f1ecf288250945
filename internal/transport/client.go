// Package transport provides the authenticated HTTP client used for all
// upstream requests.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/astrosteveo/copilot-tui/pkg/constants"
	"github.com/astrosteveo/copilot-tui/pkg/errors"
)

// UserAgent identifies the tool on every upstream request.
const UserAgent = "copilot-tui (+https://github.com/astrosteveo/copilot-tui)"

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http *http.Client
	auth Authenticator
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		http: &http.Client{Timeout: DefaultHTTPTimeout},
		auth: auth,
	}
}

// NewFromEnv creates a transport client authenticated from the
// environment.
func NewFromEnv() *Client {
	return New(FromEnv())
}

// WithTimeout returns a copy of the client using the given timeout, for
// long-running downloads.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		auth: c.auth,
	}
}

// Do performs an HTTP request with authentication and common headers
// applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.auth.Apply(req)
	req.Header.Set("User-Agent", UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return c.http.Do(req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapIO("create", "GET "+url, err)
	}
	return c.Do(req)
}
