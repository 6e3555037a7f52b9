// Package fleet is a thin client for the fleet-management HTTP API.
//
// Every endpoint method builds a path under the base URL and forwards to
// [Client.Do]. Responses are returned as they arrive: the client does not
// inspect status codes, decode bodies or retry.
package fleet

import (
	"context"
	"encoding/base64"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/fleetctl/pkg/httpclient"
)

const defaultTimeout = 30 * time.Second

// Client talks to one fleet API base URL.
//
// The default headers and transport are fixed after New. The basic-auth token
// may be replaced with SetAuth at any time; a replacement applies to requests
// started afterwards.
type Client struct {
	baseURL string
	headers map[string]string
	http    httpclient.Client
	timeout time.Duration
	log     Logger

	mu        sync.RWMutex
	authToken string
}

// New constructs a Client for baseURL. A trailing slash is added when missing
// so endpoint paths can be appended directly.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: base,
		headers: map[string]string{},
		timeout: defaultTimeout,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.http == nil {
		rc := httpclient.NewRestyClient(c.timeout)
		rc.OnResponse(c.logResponse)
		c.http = rc
	}
	return c, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) url", ErrInvalidBaseURL, raw)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", fmt.Errorf("%w: %q must not carry a query or fragment", ErrInvalidBaseURL, raw)
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Headers returns a copy of the default headers.
func (c *Client) Headers() map[string]string { return maps.Clone(c.headers) }

// SetAuth replaces the basic-auth credentials used for subsequent requests.
func (c *Client) SetAuth(username, password string) {
	token := basicAuthToken(username, password)
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// ClearAuth stops attaching an Authorization header.
func (c *Client) ClearAuth() {
	c.mu.Lock()
	c.authToken = ""
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

func basicAuthToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

func (c *Client) logResponse(method, target string, status int, elapsed time.Duration) {
	c.log.DebugObj("fleet request completed", "fleet_request", map[string]any{
		"method":     method,
		"url":        target,
		"status":     status,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

// get issues a GET for the path built from segments.
func (c *Client) get(ctx context.Context, segments ...any) (*Response, error) {
	target, err := c.resourceURL(segments...)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, Request{Method: MethodGet, URL: target})
}
