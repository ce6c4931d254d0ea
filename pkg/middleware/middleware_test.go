package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRouter(mw ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "404" {
			http.Error(w, "missing", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	return r
}

func serve(h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPrometheusUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	h := newRouter(Prometheus(m))

	serve(h, "/users/1", nil)
	serve(h, "/users/2", nil)
	serve(h, "/users/404", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/users/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/users/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.problemsTotal.WithLabelValues("/users/{id}", "not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestCategorizeStatus(t *testing.T) {
	tests := map[int]string{
		200: "",
		302: "",
		400: "validation",
		404: "not_found",
		408: "timeout",
		422: "validation",
		429: "rate_limit",
		403: "client",
		500: "internal",
		504: "timeout",
	}
	for status, want := range tests {
		assert.Equal(t, want, categorizeStatus(status), "status %d", status)
	}
}

func TestOpenTelemetryContinuesCallerTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	prop := propagation.TraceContext{}
	h := newRouter(OpenTelemetry(WithPropagator(prop)))

	// Build an outgoing request the way a client would.
	ctx, parent := tp.Tracer("client").Start(context.Background(), "client call")
	header := make(http.Header)
	prop.Inject(ctx, propagation.HeaderCarrier(header))
	parent.End()

	rec := serve(h, "/users/7", header)
	require.Equal(t, http.StatusOK, rec.Code)

	traceID := parent.SpanContext().TraceID().String()
	assert.Equal(t, traceID, rec.Header().Get(TraceIDHeader))

	var server sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.SpanKind() == trace.SpanKindServer {
			server = s
		}
	}
	require.NotNil(t, server)
	assert.Equal(t, "GET /users/7", server.Name())
	assert.Equal(t, parent.SpanContext().SpanID(), server.Parent().SpanID())
}

func TestOpenTelemetryFilter(t *testing.T) {
	h := newRouter(OpenTelemetry(WithRequestFilter(func(r *http.Request) bool {
		return !strings.HasPrefix(r.URL.Path, "/users")
	})))

	rec := serve(h, "/users/1", nil)
	assert.Empty(t, rec.Header().Get(TraceIDHeader))
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := newRouter(Logger(logger))

	serve(h, "/users/1", nil)
	serve(h, "/users/404", nil)

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=request method=GET path=/users/1 status=200")
	assert.Contains(t, out, "level=WARN msg=request method=GET path=/users/404 status=404")
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := newRouter(Recoverer(logger))

	rec := serve(h, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "handler panic")
	assert.Contains(t, buf.String(), "panic=boom")
}
