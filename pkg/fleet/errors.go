package fleet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidBaseURL is returned by New for empty or non-http(s) base URLs.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrEmptyID is returned when a resource identifier is nil or blank.
	ErrEmptyID = errors.New("empty resource id")
	// ErrUnsupportedMethod is returned for verbs other than GET and POST.
	ErrUnsupportedMethod = errors.New("unsupported http method")
	// ErrAmbiguousBody is returned when a request carries both a form and a JSON body.
	ErrAmbiguousBody = errors.New("request has both form and json body")
)

// StatusError describes a non-2xx response. The client never returns it;
// callers build one with Response.Err when they want to treat a status as failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fleet api status %d", e.StatusCode)
	}
	return fmt.Sprintf("fleet api status %d: %s", e.StatusCode, e.Body)
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
