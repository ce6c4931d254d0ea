package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultListTimeout bounds how long a collection fetch waits for a response.
const DefaultListTimeout = 10 * time.Second

// Schema is implemented by decoded response values that carry their own
// validation rules. A failing Validate turns the call into a validation error.
type Schema interface {
	Validate() error
}

// Client performs classified JSON calls over a Transport.
type Client struct {
	transport  Transport
	classifier *Classifier
	tracer     trace.Tracer
	metrics    *Metrics
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClassifier replaces the default Classifier.
func WithClassifier(c *Classifier) ClientOption {
	return func(cl *Client) {
		cl.classifier = c
	}
}

// WithClientMetrics counts classified errors in m.
func WithClientMetrics(m *Metrics) ClientOption {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithTracer sets the tracer used for call spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(cl *Client) {
		cl.tracer = tracer
	}
}

// NewClient creates a Client on top of transport.
func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		tracer:    otel.Tracer(tracerName),
		logger:    slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.classifier == nil {
		c.classifier = NewClassifier(WithClassifierLogger(c.logger))
	}
	return c
}

// Start begins a named span for one service operation. The trace ID of the
// returned context is attached to every error of calls made with it.
func (c *Client) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name)
}

// Logger returns the client logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// CallOption configures a single call.
type CallOption func(*callConfig)

type callConfig struct {
	timeout time.Duration
}

// Timeout bounds how long the call waits for a response. Exceeding it is
// reported as a network error wrapping ErrTimeout.
func Timeout(d time.Duration) CallOption {
	return func(c *callConfig) {
		c.timeout = d
	}
}

// Get fetches path and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.do(ctx, NewRequest(http.MethodGet, path), out, opts)
}

// Post encodes in as the JSON body, sends it to path and decodes the
// response into out. An encoding failure is a validation error.
func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	req := NewRequest(http.MethodPost, path)
	if err := req.SetJSON(in); err != nil {
		return c.fail(ctx, NewValidationError(TraceID(ctx), nil, err))
	}
	return c.do(ctx, req, out, opts)
}

func (c *Client) do(ctx context.Context, req *Request, out any, opts []CallOption) error {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	traceID := TraceID(ctx)

	callCtx := ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	resp, err := c.transport.Do(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return c.fail(ctx, NewNetworkError(traceID, errors.Join(ErrTimeout, err)))
		}
		return c.fail(ctx, c.classifier.Classify(ctx, nil, err, traceID))
	}

	if !resp.OK() {
		return c.fail(ctx, c.classifier.Classify(ctx, resp, nil, traceID))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return c.fail(ctx, NewValidationError(traceID, nil, err))
	}
	if s, ok := out.(Schema); ok {
		if err := s.Validate(); err != nil {
			return c.fail(ctx, NewValidationError(traceID, nil, err))
		}
	}
	return nil
}

// Invalid reports a value rejected before it was sent as a validation error.
func (c *Client) Invalid(ctx context.Context, cause error) error {
	return c.fail(ctx, NewValidationError(TraceID(ctx), nil, cause))
}

// fail records apiErr on the current span and in metrics.
func (c *Client) fail(ctx context.Context, apiErr *Error) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(apiErr)
	span.SetStatus(codes.Error, apiErr.Kind.String())
	c.metrics.IncError(apiErr.Kind)
	c.logger.Warn("api call failed",
		"kind", apiErr.Kind.String(),
		"trace_id", apiErr.TraceID,
		"error", apiErr,
	)
	return apiErr
}
