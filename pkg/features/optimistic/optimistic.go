package optimistic

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/userboard/pkg/features/resource"
	"github.com/vango-dev/userboard/pkg/reactive"
)

// SynthesizeFunc builds the speculative entry for input using tempID as its id.
type SynthesizeFunc[T, I any] func(input I, tempID int64) T

// CommitFunc performs the creation on the server.
type CommitFunc[T, I any] func(ctx context.Context, input I) (T, error)

// entry is one live speculative entry.
type entry[T any] struct {
	tempID int64
	value  T

	// awaitGen is the base generation whose settlement retires the entry.
	// Zero until the commit has succeeded.
	awaitGen atomic.Uint64
}

// retired reports whether the base has settled the refetch this entry waits for.
func (e *entry[T]) retired(base resource.Snapshot[[]T]) bool {
	gen := e.awaitGen.Load()
	return gen != 0 && base.Settled() && base.Generation >= gen
}

func sameEntries[T any](a, b []*entry[T]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Option configures a Projection.
type Option func(*config)

type config struct {
	logger       *slog.Logger
	onTransition func(Transition)
}

// WithLogger sets the projection logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// OnTransition registers fn to observe every Mutation state change.
func OnTransition(fn func(Transition)) Option {
	return func(c *config) {
		c.onTransition = fn
	}
}

// Projection is the optimistic view over a collection resource.
type Projection[T, I any] struct {
	base       *resource.Resource[[]T]
	synthesize SynthesizeFunc[T, I]
	commit     CommitFunc[T, I]
	cfg        config

	nextID  atomic.Int64
	entries *reactive.Signal[[]*entry[T]]
	mu      sync.Mutex // serializes entry list edits
	wg      sync.WaitGroup
}

// New creates a Projection over base.
func New[T, I any](base *resource.Resource[[]T], synthesize SynthesizeFunc[T, I], commit CommitFunc[T, I], opts ...Option) *Projection[T, I] {
	cfg := config{
		logger: slog.Default().With("component", "optimistic"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Projection[T, I]{
		base:       base,
		synthesize: synthesize,
		commit:     commit,
		cfg:        cfg,
		entries:    reactive.NewSignal[[]*entry[T]](nil).WithEquals(sameEntries[T]),
	}
}

// Base returns the underlying resource.
func (p *Projection[T, I]) Base() *resource.Resource[[]T] {
	return p.base
}

// Submit appends a speculative entry for input and commits it in the
// background. The entry is visible in Snapshot before Submit returns.
func (p *Projection[T, I]) Submit(ctx context.Context, input I) *Mutation[T] {
	tempID := -p.nextID.Add(1)
	e := &entry[T]{tempID: tempID, value: p.synthesize(input, tempID)}
	m := newMutation(tempID, e.value, p.cfg.onTransition)

	p.mu.Lock()
	p.entries.Update(func(cur []*entry[T]) []*entry[T] {
		next := make([]*entry[T], 0, len(cur)+1)
		next = append(next, cur...)
		return append(next, e)
	})
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx, input, e, m)
	}()

	return m
}

// SubmitAll submits every input in order. Subscribers are notified once
// for the whole group of new entries.
func (p *Projection[T, I]) SubmitAll(ctx context.Context, inputs ...I) []*Mutation[T] {
	out := make([]*Mutation[T], 0, len(inputs))
	reactive.Batch(func() {
		for _, input := range inputs {
			out = append(out, p.Submit(ctx, input))
		}
	})
	return out
}

func (p *Projection[T, I]) run(ctx context.Context, input I, e *entry[T], m *Mutation[T]) {
	value, err := p.commit(ctx, input)
	if err != nil {
		p.drop(e)
		p.cfg.logger.Debug("speculative entry rejected", "temp_id", e.tempID, "error", err)
		p.transition(m.fail(err))
		p.transition(m.settle())
		return
	}

	p.transition(m.commit(value))

	gen := p.base.Invalidate()
	e.awaitGen.Store(gen)
	if _, err := p.base.WaitFor(context.WithoutCancel(ctx), gen); err != nil {
		p.cfg.logger.Debug("refetch after commit did not settle", "temp_id", e.tempID, "error", err)
	}
	p.drop(e)
	p.transition(m.settle())
}

func (p *Projection[T, I]) transition(err error) {
	if err != nil {
		p.cfg.logger.Warn("mutation transition rejected", "error", err)
	}
}

func (p *Projection[T, I]) drop(e *entry[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries.Update(func(cur []*entry[T]) []*entry[T] {
		next := make([]*entry[T], 0, len(cur))
		for _, x := range cur {
			if x != e {
				next = append(next, x)
			}
		}
		return next
	})
}

// Snapshot returns the projected view of the base resource.
func (p *Projection[T, I]) Snapshot() resource.Snapshot[[]T] {
	base := p.base.Snapshot()
	if base.State != resource.Success {
		return base
	}

	live := p.live(base)
	if len(live) == 0 {
		return base
	}

	out := base
	out.Value = make([]T, 0, len(base.Value)+len(live))
	out.Value = append(out.Value, base.Value...)
	for _, e := range live {
		out.Value = append(out.Value, e.value)
	}
	return out
}

// Pending returns the live speculative entries in submission order.
func (p *Projection[T, I]) Pending() []T {
	live := p.live(p.base.Snapshot())
	out := make([]T, len(live))
	for i, e := range live {
		out[i] = e.value
	}
	return out
}

func (p *Projection[T, I]) live(base resource.Snapshot[[]T]) []*entry[T] {
	all := p.entries.Get()
	live := make([]*entry[T], 0, len(all))
	for _, e := range all {
		if !e.retired(base) {
			live = append(live, e)
		}
	}
	return live
}

// Subscribe calls fn with the projected view whenever the base resource or
// the set of speculative entries changes.
func (p *Projection[T, I]) Subscribe(fn func(resource.Snapshot[[]T])) func() {
	l := reactive.NewListener(func() {
		fn(p.Snapshot())
	})
	stopBase := p.base.Listen(l)
	stopEntries := p.entries.Listen(l)
	return func() {
		stopBase()
		stopEntries()
	}
}

// Wait blocks until every submitted mutation has settled.
func (p *Projection[T, I]) Wait() {
	p.wg.Wait()
}
