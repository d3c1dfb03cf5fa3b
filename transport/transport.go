package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Doer sends a single HTTP request. Implementations must return a
// *StatusError for non-2xx responses and an *Error for failures where no
// response was received.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// File is a multipart file part.
type File struct {
	Name   string
	Reader io.Reader
}

// Request describes one outgoing call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Query  url.Values

	// Params is sent as a JSON body, or as multipart fields when Files is set.
	Params map[string]any
	Files  map[string]File

	// Stream leaves the response body unread for the caller.
	Stream bool
}

// Response is a 2xx response. Exactly one of Body and Stream is set:
// Stream when the request asked for it, Body otherwise.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Stream     io.ReadCloser
}

// StatusError is a response with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, truncate(e.Body, 256))
}

// Error is a failure to get any response: DNS, connection, TLS, timeout, cancellation.
type Error struct {
	Method string
	URL    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
