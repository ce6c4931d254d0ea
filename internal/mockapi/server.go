package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/userboard/pkg/api"
	"github.com/vango-dev/userboard/pkg/middleware"
	"github.com/vango-dev/userboard/pkg/posts"
	"github.com/vango-dev/userboard/pkg/users"
)

// Problem documents written by the server.
var (
	problemNotFound = api.ProblemDetail{
		Type:   "https://api.example.com/problems/not-found",
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
	}
	problemValidation = api.ProblemDetail{
		Type:   "https://api.example.com/problems/validation-error",
		Title:  "Validation Failed",
		Status: http.StatusUnprocessableEntity,
	}
)

// Server is an in-memory users API.
type Server struct {
	mu     sync.RWMutex
	users  []users.User
	posts  []posts.Post
	nextID int

	logger     *slog.Logger
	registry   *prometheus.Registry
	simulation *api.SimulationConfig
	latency    time.Duration
	tracing    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the registry the request metrics are registered with
// and served from.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithSimulation injects failures into API routes using cfg.
func WithSimulation(cfg api.SimulationConfig) Option {
	return func(s *Server) {
		s.simulation = &cfg
	}
}

// WithLatency delays every API response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) {
		s.latency = d
	}
}

// WithTracing starts a server span per request that continues the caller's trace.
func WithTracing(enabled bool) Option {
	return func(s *Server) {
		s.tracing = enabled
	}
}

// New creates a Server seeded with ten users. Created users get ids from 11.
func New(opts ...Option) *Server {
	seed := seedUsers()
	s := &Server{
		users:   seed,
		posts:   seedPosts(),
		nextID:  len(seed) + 1,
		logger:  slog.Default().With("component", "mockapi"),
		tracing: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	return s
}

// Handler returns the HTTP handler for the API and /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer(s.logger))
	if s.tracing {
		r.Use(middleware.OpenTelemetry(middleware.WithTracerName("userboard/mockapi")))
	}
	r.Use(
		middleware.Prometheus(middleware.NewMetrics(middleware.WithRegistry(s.registry))),
		middleware.Logger(s.logger),
	)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if s.latency > 0 {
			r.Use(delay(s.latency))
		}
		if s.simulation != nil {
			r.Use(simulate(*s.simulation, s.logger))
		}
		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Get("/users/{id}", s.getUser)
		r.Get("/posts", s.listPosts)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, problemNotFound, "No route for "+r.URL.Path)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("mock API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Users returns a copy of the stored users.
func (s *Server) Users() []users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Users())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, r, problemNotFound, "User ids are integers.")
		return
	}

	s.mu.RLock()
	i := slices.IndexFunc(s.users, func(u users.User) bool { return u.ID == id })
	var u users.User
	if i >= 0 {
		u = s.users[i]
	}
	s.mu.RUnlock()

	if i < 0 {
		writeProblem(w, r, problemNotFound, "User "+strconv.Itoa(id)+" does not exist.")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var input users.UserForm
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&input); err != nil {
		writeProblem(w, r, problemValidation, "Malformed JSON body.")
		return
	}

	input, errs := input.Validate()
	if err := errs.Err(); err != nil {
		writeProblem(w, r, problemValidation, err.Error())
		return
	}

	s.mu.Lock()
	u := input.Preview(s.nextID)
	s.nextID++
	s.users = append(s.users, u)
	s.mu.Unlock()

	s.logger.Debug("user created", "id", u.ID, "username", u.Username)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := slices.Clone(s.posts)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, pd api.ProblemDetail, detail string) {
	pd.Detail = detail
	pd.Instance = r.URL.Path
	w.Header().Set("Content-Type", api.ProblemContentType)
	w.WriteHeader(pd.Status)
	_ = json.NewEncoder(w).Encode(pd)
}
