package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/userboard/internal/config"
	"github.com/vango-dev/userboard/pkg/api"
	"github.com/vango-dev/userboard/pkg/features/optimistic"
	"github.com/vango-dev/userboard/pkg/posts"
	"github.com/vango-dev/userboard/pkg/users"
)

// ServiceName identifies the client in traces.
const ServiceName = "userboard"

// App holds the runtime shared by all commands.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *api.Metrics
	Client   *api.Client
	Users    *users.Service
	Posts    *posts.Service

	tracerProvider *sdktrace.TracerProvider
}

type options struct {
	transport  api.Transport
	logOutput  io.Writer
	registry   *prometheus.Registry
	simulation func(*api.SimulationConfig)
}

// Option configures New.
type Option func(*options)

// WithTransport replaces the HTTP transport at the bottom of the chain.
func WithTransport(t api.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithLogOutput sets where logs are written. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithRegistry sets the registry for client metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithSimulationConfig adjusts the simulation settings derived from config.
func WithSimulationConfig(fn func(*api.SimulationConfig)) Option {
	return func(o *options) {
		o.simulation = fn
	}
}

// New wires transport, client and services from cfg.
//
// The transport chain is HTTP, then metrics, then retry, then the optional
// failure simulation. Simulated failures are therefore never retried.
func New(cfg *config.Config, opts ...Option) *App {
	o := options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}

	logger := NewLogger(o.logOutput, cfg)
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: o.registry,
		Metrics:  api.NewMetrics(api.WithRegistry(o.registry)),
	}

	transport := o.transport
	if transport == nil {
		transport = api.NewHTTPTransport(cfg.BaseURL, api.WithPropagator(propagation.TraceContext{}))
	}
	transport = api.WithMetrics(transport, a.Metrics)
	transport = api.WithRetry(transport, retryPolicy(cfg),
		api.WithRetryMetrics(a.Metrics),
		api.WithRetryLogger(logger.With("component", "retry")),
	)
	if cfg.Simulate {
		sim := api.DefaultSimulationConfig()
		sim.Delay = cfg.SimulateDelay
		if o.simulation != nil {
			o.simulation(&sim)
		}
		transport = api.WithSimulation(transport, sim)
		logger.Info("failure simulation enabled", "delay", sim.Delay)
	}

	clientOpts := []api.ClientOption{
		api.WithLogger(logger.With("component", "api")),
		api.WithClientMetrics(a.Metrics),
	}
	if cfg.Tracing {
		a.tracerProvider = newTracerProvider()
		clientOpts = append(clientOpts, api.WithTracer(a.tracerProvider.Tracer(ServiceName)))
	}

	a.Client = api.NewClient(transport, clientOpts...)
	a.Users = users.NewService(a.Client, users.WithListTimeout(cfg.Timeout))
	a.Posts = posts.NewService(a.Client)

	logger.Debug("runtime ready",
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"retries", cfg.Retries,
		"tracing", cfg.Tracing,
		"config_file", cfg.Path(),
	)
	return a
}

// UserStore creates a users Store whose mutations are logged at debug level.
func (a *App) UserStore(ctx context.Context, opts ...optimistic.Option) *users.Store {
	logger := a.Logger.With("component", "store")
	opts = append([]optimistic.Option{optimistic.WithLogger(logger)}, opts...)
	return users.NewStore(ctx, a.Users, opts...)
}

// Shutdown flushes the tracer provider, if any.
func (a *App) Shutdown(ctx context.Context) error {
	if a.tracerProvider == nil {
		return nil
	}
	return a.tracerProvider.Shutdown(ctx)
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func retryPolicy(cfg *config.Config) api.RetryPolicy {
	p := api.DefaultRetryPolicy()
	p.MaxRetries = uint64(cfg.Retries)
	if cfg.RetryInitial > 0 {
		p.InitialInterval = cfg.RetryInitial
	}
	return p
}

// newTracerProvider samples every span and exports nothing.
// Spans exist so that calls carry trace ids.
func newTracerProvider() *sdktrace.TracerProvider {
	res := sdkresource.NewSchemaless(attribute.String("service.name", ServiceName))
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	)
}
