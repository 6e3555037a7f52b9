package fleet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"sync"
	"testing"

	"github.com/samvad-hq/fleetctl/pkg/httpclient"
)

// recorded captures what the test server saw.
type recorded struct {
	method string
	path   string
	query  string
	auth   string
	header http.Header
	body   []byte
}

type recorder struct {
	mu   sync.Mutex
	reqs []recorded
}

func (r *recorder) last(t *testing.T) recorded {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reqs) == 0 {
		t.Fatalf("server received no requests")
	}
	return r.reqs[len(r.reqs)-1]
}

func newTestServer(t *testing.T, status int) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, recorded{
			method: r.Method,
			path:   r.URL.EscapedPath(),
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
			header: r.Header.Clone(),
			body:   body,
		})
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL+"/api/web/v1/", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func assertJSONBody(t *testing.T, got []byte, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode body %q: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode expected: %v", err)
	}
	if !reflect.DeepEqual(g, w) {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestGetEndpointsBuildResourcePaths(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() (*Response, error)
		path string
	}{
		{"list organizations", func() (*Response, error) { return c.ListOrganizations(ctx) }, "/api/web/v1/organizations"},
		{"get organization int", func() (*Response, error) { return c.GetOrganization(ctx, 12) }, "/api/web/v1/organizations/12"},
		{"list stores", func() (*Response, error) { return c.ListStores(ctx) }, "/api/web/v1/stores"},
		{"get store string", func() (*Response, error) { return c.GetStore(ctx, "s-9") }, "/api/web/v1/stores/s-9"},
		{"list robots", func() (*Response, error) { return c.ListRobots(ctx) }, "/api/web/v1/robots"},
		{"get robot int64", func() (*Response, error) { return c.GetRobot(ctx, int64(42)) }, "/api/web/v1/robots/42"},
		{"get play execution", func() (*Response, error) { return c.GetPlayExecution(ctx, uint(7)) }, "/api/web/v1/play_executions/7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tc.call()
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			got := rec.last(t)
			if got.method != http.MethodGet {
				t.Fatalf("method = %s", got.method)
			}
			if got.path != tc.path {
				t.Fatalf("path = %s, want %s", got.path, tc.path)
			}
			if len(got.body) != 0 {
				t.Fatalf("expected empty body, got %q", got.body)
			}
		})
	}
}

func TestURLMatchesBasePlusResource(t *testing.T) {
	c, err := New("https://fleet.example.com/api/web/v1/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, id := range []any{3, int64(3), "3", uint8(3)} {
		if got := c.URL(pathRobots, id); got != "https://fleet.example.com/api/web/v1/robots/3" {
			t.Fatalf("URL(%T) = %s", id, got)
		}
	}
}

func TestNewAddsTrailingSlash(t *testing.T) {
	c, err := New("https://fleet.example.com/api/web/v1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.URL(pathStores); got != "https://fleet.example.com/api/web/v1/stores" {
		t.Fatalf("URL = %s", got)
	}
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"fleet.example.com/api",
		"ftp://fleet.example.com/",
		"https://fleet.example.com/api/v1?key=1",
		"https://fleet.example.com/api/v1#top",
		"https://fleet.example.com/api/v1?",
	} {
		if _, err := New(raw); !errors.Is(err, ErrInvalidBaseURL) {
			t.Fatalf("New(%q) err = %v, want ErrInvalidBaseURL", raw, err)
		}
	}
}

func TestIdentifiersArePathEscaped(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)

	if _, err := c.GetRobot(context.Background(), "a/b c"); err != nil {
		t.Fatalf("GetRobot: %v", err)
	}
	if got := rec.last(t).path; got != "/api/web/v1/robots/a%2Fb%20c" {
		t.Fatalf("path = %s", got)
	}
}

func TestEmptyIdentifierIsRejected(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)

	var nilPtr *int
	var nilMap map[string]string
	for _, id := range []any{nil, "", "  ", nilPtr, nilMap} {
		if _, err := c.GetStore(context.Background(), id); !errors.Is(err, ErrEmptyID) {
			t.Fatalf("GetStore(%#v) err = %v, want ErrEmptyID", id, err)
		}
		if _, err := c.OpenRobotVPN(context.Background(), id); !errors.Is(err, ErrEmptyID) {
			t.Fatalf("OpenRobotVPN(%#v) err = %v, want ErrEmptyID", id, err)
		}
	}
	if len(rec.reqs) != 0 {
		t.Fatalf("expected no requests, got %d", len(rec.reqs))
	}
}

func TestOpenAndCloseVPN(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusCreated)
	c := newTestClient(t, srv)

	if _, err := c.OpenRobotVPN(context.Background(), 42); err != nil {
		t.Fatalf("OpenRobotVPN: %v", err)
	}
	got := rec.last(t)
	if got.method != http.MethodPost || got.path != "/api/web/v1/robots/42/commands" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if ct := got.header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	assertJSONBody(t, got.body, `{"command_type":"open_vpn","parameters":{}}`)

	if _, err := c.CloseRobotVPN(context.Background(), 42); err != nil {
		t.Fatalf("CloseRobotVPN: %v", err)
	}
	assertJSONBody(t, rec.last(t).body, `{"command_type":"close_vpn","parameters":{}}`)
}

func TestPowerControlDefaults(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)

	if _, err := c.PowerControlRobot(context.Background(), 7); err != nil {
		t.Fatalf("PowerControlRobot: %v", err)
	}
	got := rec.last(t)
	if got.path != "/api/web/v1/robots/7/commands" {
		t.Fatalf("path = %s", got.path)
	}
	assertJSONBody(t, got.body, `{"command_type":"power_control","parameters":{
		"action":"off","force":true,"object_id":"robot",
		"reset_delay_seconds":"30","wait_before_cancel":"30","wait_before_forced_shutdown":"120"}}`)
}

func TestPowerControlOverrides(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)

	_, err := c.PowerControlRobot(context.Background(), 7,
		WithAction("reset"),
		WithForce(false),
		WithObjectID("arm"),
		WithResetDelay("5"),
		WithWaitBeforeCancel("10"),
		WithWaitBeforeForcedShutdown("60"),
	)
	if err != nil {
		t.Fatalf("PowerControlRobot: %v", err)
	}
	assertJSONBody(t, rec.last(t).body, `{"command_type":"power_control","parameters":{
		"action":"reset","force":false,"object_id":"arm",
		"reset_delay_seconds":"5","wait_before_cancel":"10","wait_before_forced_shutdown":"60"}}`)
}

func TestBasicAuthAttachedWhenConfigured(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)

	authed := newTestClient(t, srv, WithBasicAuth("ops", "s3cret"))
	if _, err := authed.ListRobots(context.Background()); err != nil {
		t.Fatalf("ListRobots: %v", err)
	}
	if _, err := authed.OpenRobotVPN(context.Background(), 1); err != nil {
		t.Fatalf("OpenRobotVPN: %v", err)
	}
	for _, r := range rec.reqs {
		if r.auth != basicHeader("ops", "s3cret") {
			t.Fatalf("Authorization = %q", r.auth)
		}
	}

	anon := newTestClient(t, srv)
	if _, err := anon.ListRobots(context.Background()); err != nil {
		t.Fatalf("ListRobots: %v", err)
	}
	if got := rec.last(t).auth; got != "" {
		t.Fatalf("expected no Authorization header, got %q", got)
	}
}

func TestSetAuthAppliesToLaterRequests(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv, WithBasicAuth("old", "pw"))

	if _, err := c.ListStores(context.Background()); err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	c.SetAuth("new", "pw2")
	if _, err := c.ListStores(context.Background()); err != nil {
		t.Fatalf("ListStores: %v", err)
	}
	c.ClearAuth()
	if _, err := c.ListStores(context.Background()); err != nil {
		t.Fatalf("ListStores: %v", err)
	}

	want := []string{basicHeader("old", "pw"), basicHeader("new", "pw2"), ""}
	for i, r := range rec.reqs {
		if r.auth != want[i] {
			t.Fatalf("request %d Authorization = %q, want %q", i, r.auth, want[i])
		}
	}
}

// blockingTransport holds a request until released, to observe credentials
// captured at dispatch time.
type blockingTransport struct {
	started chan httpclient.Request
	release chan struct{}
}

func (b *blockingTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	b.started <- req
	<-b.release
	return stubResponse{status: http.StatusOK}, nil
}

type stubResponse struct {
	status int
	body   []byte
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Header() http.Header { return http.Header{} }

func TestSetAuthDoesNotAffectDispatchedRequests(t *testing.T) {
	bt := &blockingTransport{started: make(chan httpclient.Request, 1), release: make(chan struct{})}
	c, err := New("https://fleet.example.com/", WithHTTPClient(bt), WithBasicAuth("first", "pw"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.ListRobots(context.Background())
		done <- err
	}()
	inflight := <-bt.started
	c.SetAuth("second", "pw")
	close(bt.release)
	if err := <-done; err != nil {
		t.Fatalf("ListRobots: %v", err)
	}

	if got := inflight.Header["Authorization"]; got != basicHeader("first", "pw") {
		t.Fatalf("in-flight Authorization = %q", got)
	}
}

func TestHeaderOverrideReplacesDefaults(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	defaults := map[string]string{"X-Default": "d"}
	c := newTestClient(t, srv, WithHeaders(defaults))

	target := c.URL(pathRobots)
	if _, err := c.Do(context.Background(), Request{Method: MethodGet, URL: target}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := rec.last(t).header.Get("X-Default"); got != "d" {
		t.Fatalf("default header = %q", got)
	}

	_, err := c.Do(context.Background(), Request{
		Method: MethodGet,
		URL:    target,
		Header: map[string]string{"X-Override": "o"},
		Query:  map[string]string{"name": "BAR1"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	got := rec.last(t)
	if got.header.Get("X-Default") != "" || got.header.Get("X-Override") != "o" {
		t.Fatalf("override not applied: %v", got.header)
	}
	if got.query != "name=BAR1" {
		t.Fatalf("query = %q, want name=BAR1", got.query)
	}
}

func TestGetRequestsCarryPayload(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)
	target := c.URL(pathRobots)

	if _, err := c.Do(context.Background(), Request{
		Method: MethodGet,
		URL:    target,
		JSON:   map[string]string{"name": "BAR1"},
	}); err != nil {
		t.Fatalf("Do json: %v", err)
	}
	got := rec.last(t)
	if got.method != http.MethodGet {
		t.Fatalf("method = %s", got.method)
	}
	assertJSONBody(t, got.body, `{"name":"BAR1"}`)

	if _, err := c.Do(context.Background(), Request{
		Method: MethodGet,
		URL:    target,
		Form:   url.Values{"name": {"BAR1"}},
	}); err != nil {
		t.Fatalf("Do form: %v", err)
	}
	got = rec.last(t)
	if string(got.body) != "name=BAR1" {
		t.Fatalf("form body = %q, want name=BAR1", got.body)
	}
	if ct := got.header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestDefaultHeadersAreNotAliased(t *testing.T) {
	defaults := map[string]string{"X-Team": "ops"}
	a, err := New("https://fleet.example.com/", WithHeaders(defaults))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New("https://fleet.example.com/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	defaults["X-Team"] = "changed"
	if got := a.Headers()["X-Team"]; got != "ops" {
		t.Fatalf("client saw caller mutation: %q", got)
	}
	a.Headers()["X-Extra"] = "1"
	if len(a.Headers()) != 1 || len(b.Headers()) != 0 {
		t.Fatalf("headers leaked between clients: a=%v b=%v", a.Headers(), b.Headers())
	}
}

func TestDoRejectsBadRequestsBeforeNetwork(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusOK)
	c := newTestClient(t, srv)
	target := c.URL(pathRobots)

	if _, err := c.Do(context.Background(), Request{Method: "DELETE", URL: target}); !errors.Is(err, ErrUnsupportedMethod) {
		t.Fatalf("err = %v, want ErrUnsupportedMethod", err)
	}
	_, err := c.Do(context.Background(), Request{
		Method: MethodPost,
		URL:    target,
		Form:   url.Values{"a": {"1"}},
		JSON:   map[string]string{"a": "1"},
	})
	if !errors.Is(err, ErrAmbiguousBody) {
		t.Fatalf("err = %v, want ErrAmbiguousBody", err)
	}
	if len(rec.reqs) != 0 {
		t.Fatalf("expected no requests, got %d", len(rec.reqs))
	}
}

func TestErrorStatusesAreReturnedAsResponses(t *testing.T) {
	srv, rec := newTestServer(t, http.StatusInternalServerError)
	c := newTestClient(t, srv)

	resp, err := c.GetRobot(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetRobot: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError || resp.IsSuccess() {
		t.Fatalf("status = %d success=%v", resp.StatusCode, resp.IsSuccess())
	}
	var se *StatusError
	if !errors.As(resp.Err(), &se) || se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Err() = %v", resp.Err())
	}
	if len(rec.reqs) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(rec.reqs))
	}
}

func TestTransportFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := c.ListRobots(context.Background())
	if err == nil {
		t.Fatalf("expected connection error")
	}
	if resp != nil {
		t.Fatalf("expected nil response, got %+v", resp)
	}
}

func TestTransportErrorIsNotWrapped(t *testing.T) {
	boom := errors.New("boom")
	c, err := New("https://fleet.example.com/", WithHTTPClient(failingTransport{err: boom}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListOrganizations(context.Background()); err != boom {
		t.Fatalf("err = %v, want the transport error itself", err)
	}
}

type failingTransport struct{ err error }

func (f failingTransport) Do(context.Context, httpclient.Request) (httpclient.Response, error) {
	return nil, f.err
}

func TestResponseDecodeJSON(t *testing.T) {
	resp := &Response{StatusCode: http.StatusOK, Body: []byte(`{"id":5,"name":"BAR5"}`)}
	var robot struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := resp.DecodeJSON(&robot); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if robot.ID != 5 || robot.Name != "BAR5" {
		t.Fatalf("decoded %+v", robot)
	}
	if err := (&Response{}).DecodeJSON(&robot); err == nil {
		t.Fatalf("expected error for empty body")
	}
}
