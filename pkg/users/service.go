package users

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/userboard/pkg/api"
)

// Service reads and creates users through the API client.
type Service struct {
	client      *api.Client
	listTimeout time.Duration
	logger      *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithListTimeout bounds how long List waits for a response.
func WithListTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.listTimeout = d
	}
}

// NewService creates a user Service.
func NewService(client *api.Client, opts ...ServiceOption) *Service {
	s := &Service{
		client:      client,
		listTimeout: api.DefaultListTimeout,
		logger:      client.Logger().With("service", "users"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches all users. It fails with a network error when the response
// does not arrive within the list timeout.
func (s *Service) List(ctx context.Context) ([]User, error) {
	ctx, span := s.client.Start(ctx, "Get Users")
	defer span.End()

	var list UserList
	if err := s.client.Get(ctx, "/users", &list, api.Timeout(s.listTimeout)); err != nil {
		return nil, err
	}

	s.logger.Info("fetched users", "count", len(list), "trace_id", api.TraceID(ctx))
	return list, nil
}

// Create validates input and posts it. An invalid form is rejected with a
// validation error before any request is made.
func (s *Service) Create(ctx context.Context, input UserForm) (User, error) {
	ctx, span := s.client.Start(ctx, "Create Users")
	defer span.End()

	clean, errs := input.Validate()
	if err := errs.Err(); err != nil {
		return User{}, s.client.Invalid(ctx, err)
	}

	var created User
	if err := s.client.Post(ctx, "/users", clean, &created); err != nil {
		return User{}, err
	}

	s.logger.Info("created user", "id", created.ID, "trace_id", api.TraceID(ctx))
	return created, nil
}
