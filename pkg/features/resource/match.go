package resource

// Handler renders one kind of snapshot into an R.
type Handler[T, R any] interface {
	handle(s Snapshot[T]) (R, bool)
}

// Match returns the result of the first handler that accepts snap.
// The second result is false when no handler matched.
func Match[T, R any](snap Snapshot[T], handlers ...Handler[T, R]) (R, bool) {
	for _, h := range handlers {
		if out, ok := h.handle(snap); ok {
			return out, true
		}
	}
	var zero R
	return zero, false
}

type initialHandler[T, R any] struct {
	fn func() R
}

func (h initialHandler[T, R]) handle(s Snapshot[T]) (R, bool) {
	if s.State == Initial {
		return h.fn(), true
	}
	var zero R
	return zero, false
}

type waitingHandler[T, R any] struct {
	fn func() R
}

func (h waitingHandler[T, R]) handle(s Snapshot[T]) (R, bool) {
	if s.State == Waiting {
		return h.fn(), true
	}
	var zero R
	return zero, false
}

type failureHandler[T, R any] struct {
	fn func(err error, waiting bool) R
}

func (h failureHandler[T, R]) handle(s Snapshot[T]) (R, bool) {
	if s.State == Failure {
		return h.fn(s.Err, s.Waiting), true
	}
	var zero R
	return zero, false
}

type successHandler[T, R any] struct {
	fn func(value T, waiting bool) R
}

func (h successHandler[T, R]) handle(s Snapshot[T]) (R, bool) {
	if s.State == Success {
		return h.fn(s.Value, s.Waiting), true
	}
	var zero R
	return zero, false
}

// OnInitial handles a resource that was never fetched.
func OnInitial[T, R any](fn func() R) Handler[T, R] {
	return initialHandler[T, R]{fn: fn}
}

// OnWaiting handles the first fetch, before any result exists.
func OnWaiting[T, R any](fn func() R) Handler[T, R] {
	return waitingHandler[T, R]{fn: fn}
}

// OnFailure handles a failed fetch. waiting is true while a retry is in flight.
func OnFailure[T, R any](fn func(err error, waiting bool) R) Handler[T, R] {
	return failureHandler[T, R]{fn: fn}
}

// OnSuccess handles a loaded value. waiting is true during revalidation.
func OnSuccess[T, R any](fn func(value T, waiting bool) R) Handler[T, R] {
	return successHandler[T, R]{fn: fn}
}
