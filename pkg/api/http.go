package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries a unique ID for every outgoing request.
const RequestIDHeader = "X-Request-Id"

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize int64 = 4 << 20

// HTTPTransport sends requests to an HTTP server.
type HTTPTransport struct {
	baseURL     string
	client      *http.Client
	maxBodySize int64
	tracer      trace.Tracer
	propagator  propagation.TextMapPropagator
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient sets the underlying http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// WithMaxBodySize limits the number of response body bytes read.
func WithMaxBodySize(n int64) HTTPOption {
	return func(t *HTTPTransport) {
		t.maxBodySize = n
	}
}

// WithPropagator sets the propagator used to inject trace headers.
// Defaults to the global propagator.
func WithPropagator(p propagation.TextMapPropagator) HTTPOption {
	return func(t *HTTPTransport) {
		t.propagator = p
	}
}

// NewHTTPTransport creates a transport rooted at baseURL.
func NewHTTPTransport(baseURL string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: 30 * time.Second},
		maxBodySize: DefaultMaxBodySize,
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.propagator == nil {
		t.propagator = otel.GetTextMapPropagator()
	}
	return t
}

// BaseURL returns the URL requests are resolved against.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	url := t.baseURL + "/" + strings.TrimLeft(req.Path, "/")

	ctx, span := t.tracer.Start(ctx, "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", url),
		),
	)
	defer span.End()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, t.fail(span, req, fmt.Errorf("build request: %w", err))
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if httpReq.Header.Get(RequestIDHeader) == "" {
		httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	}
	t.propagator.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, t.fail(span, req, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxBodySize))
	if err != nil {
		return nil, t.fail(span, req, fmt.Errorf("read body: %w", err))
	}

	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))
	if httpResp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(httpResp.StatusCode))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func (t *HTTPTransport) fail(span trace.Span, req *Request, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return &TransportError{Method: req.Method, Path: req.Path, Err: err}
}
