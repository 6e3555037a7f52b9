package fleet

import (
	"errors"
	"maps"
	"time"

	"github.com/samvad-hq/fleetctl/pkg/httpclient"
)

// Option mutates the Client during New.
type Option func(*Client) error

// WithBasicAuth attaches basic-auth credentials to every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) error {
		c.authToken = basicAuthToken(username, password)
		return nil
	}
}

// WithHeaders sets the default headers. The map is copied.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) error {
		c.headers = maps.Clone(headers)
		if c.headers == nil {
			c.headers = map[string]string{}
		}
		return nil
	}
}

// WithHTTPClient injects the transport. Useful for tests and custom TLS setups.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		c.http = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default transport.
// It has no effect when WithHTTPClient is also used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// WithLogger routes request logging to log.
func WithLogger(log Logger) Option {
	return func(c *Client) error {
		c.log = ensureLogger(log)
		return nil
	}
}
