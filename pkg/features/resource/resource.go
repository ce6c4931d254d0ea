package resource

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/userboard/pkg/reactive"
)

// ErrNotFetched is returned by Wait on a resource that was never fetched.
var ErrNotFetched = errors.New("resource: never fetched")

// ErrClosed is returned by Wait after Close.
var ErrClosed = errors.New("resource: closed")

// State represents the lifecycle state of a resource.
type State int

const (
	Initial State = iota // Never fetched
	Waiting              // Fetch in flight, no previous result
	Success              // Data successfully loaded
	Failure              // Fetch failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Waiting:
		return "waiting"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of a resource at one point in time.
type Snapshot[T any] struct {
	State State

	// Value is set in the Success state.
	Value T

	// Err is set in the Failure state.
	Err error

	// Waiting reports a fetch in flight on top of a Success or Failure.
	// It is always true in the Waiting state.
	Waiting bool

	// Generation is the sequence number of the latest issued fetch.
	// Generations start at 1; Initial snapshots have generation 0.
	Generation uint64
}

// Settled reports whether the snapshot holds a result and no fetch is in flight.
func (s Snapshot[T]) Settled() bool {
	return (s.State == Success || s.State == Failure) && !s.Waiting
}

// sameSnapshot compares the transition-relevant fields.
// Every transition changes the state, the waiting flag, or the generation.
func sameSnapshot[T any](a, b Snapshot[T]) bool {
	return a.State == b.State && a.Waiting == b.Waiting && a.Generation == b.Generation
}

// Fetcher loads the resource value. ctx is cancelled when the fetch is
// superseded or the resource is closed.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Resource manages asynchronous data fetching and state.
type Resource[T any] struct {
	fetcher Fetcher[T]
	state   *reactive.Signal[Snapshot[T]]

	// Options
	name      string
	staleTime time.Duration
	onSuccess func(T)
	onError   func(error)
	logger    *slog.Logger

	// Internal
	ctx        context.Context
	stop       context.CancelFunc
	cancel     context.CancelFunc // cancels the live fetch
	generation atomic.Uint64
	lastFetch  time.Time
	inFlight   sync.WaitGroup
	closed     bool
	mu         sync.Mutex
}

// New creates a Resource in the Initial state. Nothing is fetched until
// Fetch, Refetch or Invalidate is called.
func New[T any](fetcher Fetcher[T]) *Resource[T] {
	return NewWithContext(context.Background(), fetcher)
}

// NewWithContext creates a Resource whose fetches derive from ctx.
// Cancelling ctx cancels any live fetch.
func NewWithContext[T any](ctx context.Context, fetcher Fetcher[T]) *Resource[T] {
	ctx, stop := context.WithCancel(ctx)
	return &Resource[T]{
		fetcher: fetcher,
		state:   reactive.NewSignal(Snapshot[T]{}).WithEquals(sameSnapshot[T]),
		logger:  slog.Default().With("component", "resource"),
		ctx:     ctx,
		stop:    stop,
	}
}

// Snapshot returns the current state.
func (r *Resource[T]) Snapshot() Snapshot[T] {
	return r.state.Get()
}

// State returns the current lifecycle state.
func (r *Resource[T]) State() State {
	return r.state.Get().State
}

// IsWaiting reports whether a fetch is in flight.
func (r *Resource[T]) IsWaiting() bool {
	return r.state.Get().Waiting
}

// Data returns the last successful value, or the zero value.
func (r *Resource[T]) Data() T {
	return r.state.Get().Value
}

// Error returns the last fetch error, or nil.
func (r *Resource[T]) Error() error {
	return r.state.Get().Err
}

// Subscribe calls fn with every new snapshot. The returned function
// stops the subscription.
func (r *Resource[T]) Subscribe(fn func(Snapshot[T])) func() {
	return r.state.Subscribe(fn)
}

// Listen marks l dirty on every change.
func (r *Resource[T]) Listen(l reactive.Listener) func() {
	return r.state.Listen(l)
}

// Fetch starts a fetch unless one is already in flight or the current value
// is younger than StaleTime. It returns the generation the caller can wait on.
func (r *Resource[T]) Fetch() uint64 {
	r.mu.Lock()
	snap := r.state.Get()
	if snap.Waiting {
		r.mu.Unlock()
		return snap.Generation
	}
	if snap.State == Success && r.staleTime > 0 && time.Since(r.lastFetch) < r.staleTime {
		r.mu.Unlock()
		return snap.Generation
	}
	r.mu.Unlock()
	return r.Refetch()
}

// Refetch forces a fetch, superseding any fetch in flight.
// It returns the generation of the new fetch, or 0 after Close.
func (r *Resource[T]) Refetch() uint64 {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}
	if r.cancel != nil {
		r.cancel()
	}
	gen := r.generation.Add(1)
	ctx, cancel := context.WithCancel(r.ctx)
	r.cancel = cancel
	r.inFlight.Add(1)
	r.mu.Unlock()

	r.state.Update(func(cur Snapshot[T]) Snapshot[T] {
		if cur.Generation > gen {
			return cur
		}
		next := cur
		next.Generation = gen
		next.Waiting = true
		if cur.State == Initial {
			next.State = Waiting
		}
		return next
	})

	go func() {
		defer r.inFlight.Done()
		defer cancel()
		value, err := r.fetcher(ctx)
		r.settle(gen, value, err)
	}()

	return gen
}

// settle applies a fetch completion unless a later fetch superseded it.
func (r *Resource[T]) settle(gen uint64, value T, err error) {
	applied := false
	r.state.Update(func(cur Snapshot[T]) Snapshot[T] {
		if cur.Generation != gen || r.generation.Load() != gen {
			return cur
		}
		applied = true
		if err != nil {
			return Snapshot[T]{State: Failure, Err: err, Generation: gen}
		}
		return Snapshot[T]{State: Success, Value: value, Generation: gen}
	})

	if !applied {
		r.logger.Debug("discarded stale fetch", "resource", r.name, "generation", gen)
		return
	}

	r.mu.Lock()
	r.lastFetch = time.Now()
	if r.generation.Load() == gen {
		r.cancel = nil
	}
	onSuccess, onError := r.onSuccess, r.onError
	r.mu.Unlock()

	if err != nil {
		r.logger.Debug("fetch failed", "resource", r.name, "generation", gen, "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}
	if onSuccess != nil {
		onSuccess(value)
	}
}

// Invalidate marks the current value as stale and refetches it.
// It returns the generation of the new fetch.
func (r *Resource[T]) Invalidate() uint64 {
	r.mu.Lock()
	r.lastFetch = time.Time{}
	r.mu.Unlock()
	return r.Refetch()
}

// Wait blocks until the latest issued fetch has settled.
func (r *Resource[T]) Wait(ctx context.Context) (Snapshot[T], error) {
	snap := r.state.Get()
	if snap.State == Initial {
		return snap, ErrNotFetched
	}
	return r.WaitFor(ctx, snap.Generation)
}

// WaitFor blocks until a fetch of generation gen or later has settled.
func (r *Resource[T]) WaitFor(ctx context.Context, gen uint64) (Snapshot[T], error) {
	ready := func(s Snapshot[T]) bool {
		return s.Settled() && s.Generation >= gen
	}

	ch := make(chan Snapshot[T], 1)
	unsubscribe := r.state.Subscribe(func(s Snapshot[T]) {
		if ready(s) {
			select {
			case ch <- s:
			default:
			}
		}
	})
	defer unsubscribe()

	if s := r.state.Get(); ready(s) {
		return s, nil
	}

	select {
	case s := <-ch:
		return s, nil
	case <-r.ctx.Done():
		return r.state.Get(), ErrClosed
	case <-ctx.Done():
		return r.state.Get(), ctx.Err()
	}
}

// Close cancels any fetch in flight and waits for it to return.
// A closed resource ignores further fetch requests.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.stop()
	r.inFlight.Wait()
}
