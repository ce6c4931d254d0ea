package optimistic

import (
	"context"
	"sync"

	"github.com/looplab/fsm"
)

// Mutation states.
const (
	StatePending   = "pending"
	StateCommitted = "committed"
	StateFailed    = "failed"
	StateSettled   = "settled"
)

// Mutation events.
const (
	EventCommit = "commit"
	EventFail   = "fail"
	EventSettle = "settle"
)

// Transition describes one state change of a Mutation.
type Transition struct {
	TempID int64
	From   string
	To     string
	Err    error
}

// Mutation tracks one submitted creation.
//
//	pending --commit--> committed --settle--> settled
//	pending --fail----> failed    --settle--> settled
type Mutation[T any] struct {
	tempID      int64
	speculative T
	machine     *fsm.FSM

	mu    sync.Mutex
	value T
	err   error
	done  chan struct{}
}

func newMutation[T any](tempID int64, speculative T, observe func(Transition)) *Mutation[T] {
	m := &Mutation[T]{
		tempID:      tempID,
		speculative: speculative,
		done:        make(chan struct{}),
	}
	m.machine = fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: EventCommit, Src: []string{StatePending}, Dst: StateCommitted},
			{Name: EventFail, Src: []string{StatePending}, Dst: StateFailed},
			{Name: EventSettle, Src: []string{StateCommitted, StateFailed}, Dst: StateSettled},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if observe != nil {
					observe(Transition{TempID: tempID, From: e.Src, To: e.Dst, Err: m.Err()})
				}
			},
			"enter_" + StateSettled: func(_ context.Context, _ *fsm.Event) {
				close(m.done)
			},
		},
	)
	return m
}

// TempID returns the negative id of the speculative entry.
func (m *Mutation[T]) TempID() int64 {
	return m.tempID
}

// Speculative returns the entry shown while the mutation is in flight.
func (m *Mutation[T]) Speculative() T {
	return m.speculative
}

// State returns the current state name.
func (m *Mutation[T]) State() string {
	return m.machine.Current()
}

// Err returns the commit error, or nil.
func (m *Mutation[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Done is closed once the mutation has settled.
func (m *Mutation[T]) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation has settled and returns the value the
// server confirmed, or the commit error.
func (m *Mutation[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-m.done:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.value, m.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Events use a background context; the caller's context only bounds Commit.

func (m *Mutation[T]) commit(value T) error {
	m.mu.Lock()
	m.value = value
	m.mu.Unlock()
	return m.machine.Event(context.Background(), EventCommit)
}

func (m *Mutation[T]) fail(err error) error {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return m.machine.Event(context.Background(), EventFail)
}

func (m *Mutation[T]) settle() error {
	return m.machine.Event(context.Background(), EventSettle)
}
