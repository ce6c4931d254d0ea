package users

import (
	"context"

	"github.com/vango-dev/userboard/pkg/features/optimistic"
	"github.com/vango-dev/userboard/pkg/features/resource"
)

// Store holds the user collection and its optimistic view.
type Store struct {
	list       *resource.Resource[[]User]
	projection *optimistic.Projection[User, UserForm]
}

// NewStore wires a Store to svc. Fetches stop when ctx is cancelled.
func NewStore(ctx context.Context, svc *Service, opts ...optimistic.Option) *Store {
	list := resource.NewWithContext[[]User](ctx, svc.List).Named("users")
	return &Store{
		list:       list,
		projection: optimistic.New(list, previewUser, svc.Create, opts...),
	}
}

func previewUser(input UserForm, tempID int64) User {
	return input.Preview(int(tempID))
}

// List returns the authoritative collection.
func (s *Store) List() *resource.Resource[[]User] {
	return s.list
}

// Projection returns the optimistic view.
func (s *Store) Projection() *optimistic.Projection[User, UserForm] {
	return s.projection
}

// Load starts a fetch unless one is in flight and returns its generation.
func (s *Store) Load() uint64 {
	return s.list.Fetch()
}

// Snapshot returns the projected view of the users.
func (s *Store) Snapshot() resource.Snapshot[[]User] {
	return s.projection.Snapshot()
}

// Subscribe observes the projected view.
func (s *Store) Subscribe(fn func(resource.Snapshot[[]User])) func() {
	return s.projection.Subscribe(fn)
}

// Create submits input optimistically.
func (s *Store) Create(ctx context.Context, input UserForm) *optimistic.Mutation[User] {
	return s.projection.Submit(ctx, input)
}

// CreateAll submits several inputs at once.
func (s *Store) CreateAll(ctx context.Context, inputs ...UserForm) []*optimistic.Mutation[User] {
	return s.projection.SubmitAll(ctx, inputs...)
}

// Close waits for pending mutations and stops the collection.
func (s *Store) Close() {
	s.projection.Wait()
	s.list.Close()
}
