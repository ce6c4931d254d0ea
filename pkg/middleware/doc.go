// Package middleware provides HTTP middleware for the userboard mock API.
//
// This package includes:
//   - OpenTelemetry tracing that continues the caller's trace
//   - Prometheus request metrics keyed by chi route pattern
//   - Request logging and panic recovery on log/slog
//
// All middleware has the func(http.Handler) http.Handler shape and plugs
// into a chi router:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middleware.Recoverer(logger),
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(middleware.NewMetrics()),
//	    middleware.Logger(logger),
//	)
//
// # Trace IDs
//
// The OpenTelemetry middleware echoes the trace ID in the X-Trace-Id
// response header. Problem documents written by handlers can include the
// same ID via TraceID(r.Context()).
//
// # Metrics
//
// Expose the collectors next to the API:
//
//	r.Handle("/metrics", promhttp.Handler())
package middleware
