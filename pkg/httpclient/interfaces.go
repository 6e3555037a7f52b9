package httpclient

import (
	"context"
	"net/http"
	"net/url"
)

// Request describes a single outbound call. At most one of Form and JSON is
// expected to be set; the transport does not arbitrate between them.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Query  map[string]string
	Form   url.Values
	JSON   any
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
