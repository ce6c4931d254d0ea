package api

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope used for spans started by this package.
const tracerName = "github.com/vango-dev/userboard/pkg/api"

// TraceID returns the trace ID of the span carried by ctx.
// It returns "" when ctx has no valid span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// annotateProblemDetail records the problem detail on the current span.
// Missing fields are recorded as "unknown"; a missing status falls back to
// the HTTP status code.
func annotateProblemDetail(ctx context.Context, pd ProblemDetail, statusCode int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	status := pd.Status
	if status == 0 {
		status = statusCode
	}

	span.SetAttributes(
		attribute.String("error.type", orUnknown(pd.Type)),
		attribute.String("error.title", orUnknown(pd.Title)),
		attribute.Int("error.status", status),
		attribute.String("error.detail", orUnknown(pd.Detail)),
		attribute.String("error.instance", orUnknown(pd.Instance)),
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
