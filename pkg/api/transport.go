package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// Request is one API call, relative to the transport's base URL.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewRequest creates a request without a body.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// SetJSON encodes v as the request body.
func (r *Request) SetJSON(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	r.Body = body
	r.Header.Set("Content-Type", "application/json")
	return nil
}

// Response is the outcome of an exchange that reached the server.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport performs a single request/response exchange.
//
// A non-nil error means no response was obtained. Error statuses are not
// errors at this level; they are returned as a Response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// TransportError describes an exchange for which no response was received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is the cause recorded on network errors produced from an
// unclassified status code.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
