package fleet

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"strings"

	"github.com/samvad-hq/fleetctl/pkg/httpclient"
)

// Method is an HTTP verb accepted by Do.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

func (m Method) valid() bool { return m == MethodGet || m == MethodPost }

// Request describes one call made through Do.
type Request struct {
	Method Method
	// URL is fully qualified; use Client.URL to build one under the base URL.
	URL string
	// Form is sent form-encoded. Mutually exclusive with JSON.
	Form url.Values
	// Header replaces the default headers when non-nil.
	Header map[string]string
	Query  map[string]string
	JSON   any
}

// Do performs exactly one HTTP call with the current credentials and returns
// the response as received. Transport errors are returned unchanged.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if !req.Method.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}
	if req.Form != nil && req.JSON != nil {
		return nil, ErrAmbiguousBody
	}

	headers := req.Header
	if headers == nil {
		headers = c.headers
	}
	headers = maps.Clone(headers)
	if headers == nil {
		headers = map[string]string{}
	}
	if token := c.token(); token != "" {
		headers["Authorization"] = "Basic " + token
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: string(req.Method),
		URL:    req.URL,
		Header: headers,
		Query:  req.Query,
		Form:   req.Form,
		JSON:   req.JSON,
	})
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

// URL joins segments under the base URL. Each segment is formatted with
// fmt.Sprint and path-escaped, so "a/b" stays a single segment.
func (c *Client) URL(segments ...any) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = url.PathEscape(fmt.Sprint(s))
	}
	return c.baseURL + strings.Join(parts, "/")
}

// resourceURL is URL with identifier checks: nil or blank segments are rejected.
func (c *Client) resourceURL(segments ...any) (string, error) {
	for _, s := range segments {
		if isNil(s) || strings.TrimSpace(fmt.Sprint(s)) == "" {
			return "", ErrEmptyID
		}
	}
	return c.URL(segments...), nil
}

// isNil reports nil values, including typed nils held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
