// Package posts implements the read-only post resource.
package posts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vango-dev/userboard/pkg/api"
)

// Post is a post record as returned by the API.
type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// PostList is the decoded body of GET /posts.
type PostList []Post

var errMissingID = errors.New("post without id")

// Validate rejects posts that lack an id.
func (l PostList) Validate() error {
	for _, p := range l {
		if p.ID == 0 {
			return errMissingID
		}
	}
	return nil
}

// Service reads posts through the API client.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService creates a post Service.
func NewService(client *api.Client) *Service {
	return &Service{
		client: client,
		logger: client.Logger().With("service", "posts"),
	}
}

// List fetches all posts.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	ctx, span := s.client.Start(ctx, "Get Posts")
	defer span.End()

	var list PostList
	if err := s.client.Get(ctx, "/posts", &list); err != nil {
		return nil, err
	}
	s.logger.Debug("fetched posts", "count", len(list))
	return list, nil
}
