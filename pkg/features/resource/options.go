package resource

import (
	"log/slog"
	"time"
)

// StaleTime sets how long a successful value is fresh. Fetch does nothing
// while the value is fresh; Refetch and Invalidate ignore it.
func (r *Resource[T]) StaleTime(d time.Duration) *Resource[T] {
	r.mu.Lock()
	r.staleTime = d
	r.mu.Unlock()
	return r
}

// OnSuccess registers a callback to be called when data is successfully loaded.
// Superseded fetches never reach it.
func (r *Resource[T]) OnSuccess(fn func(T)) *Resource[T] {
	r.mu.Lock()
	r.onSuccess = fn
	r.mu.Unlock()
	return r
}

// OnError registers a callback to be called when data loading fails.
func (r *Resource[T]) OnError(fn func(error)) *Resource[T] {
	r.mu.Lock()
	r.onError = fn
	r.mu.Unlock()
	return r
}

// Named sets the name used in log records.
func (r *Resource[T]) Named(name string) *Resource[T] {
	r.mu.Lock()
	r.name = name
	r.mu.Unlock()
	return r
}

// WithLogger replaces the resource logger.
func (r *Resource[T]) WithLogger(logger *slog.Logger) *Resource[T] {
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
	return r
}
