package reactive

import (
	"reflect"
	"sync"
)

// subscribers provides type-erased listener management shared by Signal.
type subscribers struct {
	subs []Listener
	mu   sync.RWMutex
}

// add registers a listener. Deduplicates by listener ID.
func (s *subscribers) add(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

// remove unregisters a listener, preserving the order of the rest.
func (s *subscribers) remove(l Listener) {
	if l == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// len returns the number of registered listeners.
func (s *subscribers) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// notify marks all listeners dirty, or queues them when a batch is open.
// Listeners are copied first so no lock is held while they run.
func (s *subscribers) notify() {
	s.mu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	if getBatchDepth() > 0 {
		for _, sub := range subs {
			queuePendingUpdate(sub)
		}
		return
	}

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

// Signal is a reactive value container.
type Signal[T any] struct {
	id    uint64
	subs  subscribers
	value T

	// mu protects value.
	mu sync.RWMutex

	// equal decides whether a Set changes the value.
	// If nil, defaultEquals is used.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    NextID(),
		value: initial,
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
}

// Update atomically reads and replaces the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	next := fn(old)
	changed := !s.equals(old, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
}

// Listen registers l to be marked dirty on every change.
// The returned function removes it again.
func (s *Signal[T]) Listen(l Listener) func() {
	s.subs.add(l)
	return func() { s.subs.remove(l) }
}

// Subscribe calls fn with the new value after every change.
// The returned function stops the subscription.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	return s.Listen(NewListener(func() {
		fn(s.Get())
	}))
}

// Subscribers returns the number of registered listeners.
func (s *Signal[T]) Subscribers() int {
	return s.subs.len()
}

// WithEquals configures a custom equality function.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common comparable types and reflect.DeepEqual
// for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
