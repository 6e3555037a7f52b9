package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-cleanhttp"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a resty.Client on a pooled transport with retries disabled.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTransport(cleanhttp.DefaultPooledTransport())
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	c.SetAllowGetMethodPayload(true)
	return c
}

// OnResponse registers a hook invoked after every completed round trip.
// Transport failures never reach it.
func (r *RestyClient) OnResponse(fn func(method, url string, status int, elapsed time.Duration)) {
	if fn == nil {
		return
	}
	r.client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		fn(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.Time())
		return nil
	})
}

// Do performs the described request and returns the response untouched.
// Errors from the underlying transport are returned as-is.
func (r *RestyClient) Do(ctx context.Context, in Request) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(in.Header) > 0 {
		req.SetHeaders(in.Header)
	}
	if len(in.Query) > 0 {
		req.SetQueryParams(in.Query)
	}
	switch {
	case in.JSON != nil:
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(in.JSON)
	case in.Form != nil:
		req.SetFormDataFromValues(in.Form)
	}

	resp, err := req.Execute(in.Method, in.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
