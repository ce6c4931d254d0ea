package resource

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// result is one scripted fetcher completion.
type result struct {
	value []string
	err   error
}

// scripted is a fetcher whose calls block until the test releases them.
type scripted struct {
	mu      sync.Mutex
	calls   []chan result
	started chan int
}

func newScripted() *scripted {
	return &scripted{started: make(chan int, 16)}
}

func (s *scripted) fetch(ctx context.Context) ([]string, error) {
	ch := make(chan result, 1)
	s.mu.Lock()
	s.calls = append(s.calls, ch)
	n := len(s.calls)
	s.mu.Unlock()
	s.started <- n

	r := <-ch
	return r.value, r.err
}

func (s *scripted) release(t *testing.T, call int, r result) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if call > len(s.calls) {
		t.Fatalf("call %d was never started", call)
	}
	s.calls[call-1] <- r
}

func (s *scripted) awaitStart(t *testing.T, call int) {
	t.Helper()
	select {
	case n := <-s.started:
		if n != call {
			t.Fatalf("started call %d, want %d", n, call)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for call %d", call)
	}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewResourceIsLazy(t *testing.T) {
	called := false
	r := New(func(ctx context.Context) (int, error) {
		called = true
		return 1, nil
	})
	defer r.Close()

	if r.State() != Initial {
		t.Errorf("State() = %v, want initial", r.State())
	}
	if r.IsWaiting() {
		t.Error("new resource reports waiting")
	}
	if called {
		t.Error("fetcher ran before Fetch")
	}
	if _, err := r.Wait(context.Background()); !errors.Is(err, ErrNotFetched) {
		t.Errorf("Wait() error = %v, want ErrNotFetched", err)
	}
}

func TestFetchSuccess(t *testing.T) {
	f := newScripted()
	r := New(f.fetch)
	defer r.Close()

	gen := r.Fetch()
	if gen != 1 {
		t.Errorf("Fetch() generation = %d, want 1", gen)
	}
	f.awaitStart(t, 1)

	snap := r.Snapshot()
	if snap.State != Waiting || !snap.Waiting {
		t.Errorf("snapshot = %+v, want waiting", snap)
	}

	f.release(t, 1, result{value: []string{"ada"}})
	snap, err := r.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.State != Success || snap.Waiting {
		t.Errorf("snapshot = %+v, want settled success", snap)
	}
	if len(snap.Value) != 1 || snap.Value[0] != "ada" {
		t.Errorf("Value = %v, want [ada]", snap.Value)
	}
}

func TestFetchFailure(t *testing.T) {
	boom := errors.New("boom")
	f := newScripted()
	var gotErr error
	r := New(f.fetch).OnError(func(err error) { gotErr = err })
	defer r.Close()

	r.Fetch()
	f.awaitStart(t, 1)
	f.release(t, 1, result{err: boom})

	snap, err := r.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if snap.State != Failure || !errors.Is(snap.Err, boom) {
		t.Errorf("snapshot = %+v, want failure with boom", snap)
	}
	r.Close()
	if !errors.Is(gotErr, boom) {
		t.Errorf("OnError got %v, want boom", gotErr)
	}
}

func TestSupersededFetchIsIgnored(t *testing.T) {
	f := newScripted()
	var successes []string
	var mu sync.Mutex
	r := New(f.fetch).OnSuccess(func(v []string) {
		mu.Lock()
		successes = append(successes, v[0])
		mu.Unlock()
	})
	defer r.Close()

	first := r.Refetch()
	f.awaitStart(t, 1)
	second := r.Refetch()
	f.awaitStart(t, 2)
	if second <= first {
		t.Fatalf("generations not increasing: %d then %d", first, second)
	}

	// B completes before A.
	f.release(t, 2, result{value: []string{"B"}})
	snap, err := r.WaitFor(waitCtx(t), second)
	if err != nil {
		t.Fatalf("WaitFor() error = %v", err)
	}
	f.release(t, 1, result{value: []string{"A"}})

	r.Close()
	snap = r.Snapshot()
	if snap.State != Success || snap.Value[0] != "B" {
		t.Errorf("final snapshot = %+v, want Success([B])", snap)
	}
	if snap.Generation != second {
		t.Errorf("Generation = %d, want %d", snap.Generation, second)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(successes) != 1 || successes[0] != "B" {
		t.Errorf("OnSuccess calls = %v, want [B]", successes)
	}
}

func TestSupersededFetchIsIgnoredInIssueOrder(t *testing.T) {
	f := newScripted()
	r := New(f.fetch)
	defer r.Close()

	r.Refetch()
	f.awaitStart(t, 1)
	second := r.Refetch()
	f.awaitStart(t, 2)

	// A completes first and must not surface.
	f.release(t, 1, result{value: []string{"A"}})
	f.release(t, 2, result{value: []string{"B"}})

	snap, err := r.WaitFor(waitCtx(t), second)
	if err != nil {
		t.Fatalf("WaitFor() error = %v", err)
	}
	if snap.Value[0] != "B" {
		t.Errorf("Value = %v, want [B]", snap.Value)
	}
}

func TestSupersededFetchContextIsCancelled(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	var first sync.Once
	r := New(func(ctx context.Context) (int, error) {
		isFirst := false
		first.Do(func() { isFirst = true })
		if isFirst {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		}
		return 2, nil
	})
	defer r.Close()

	r.Refetch()
	<-started
	gen := r.Refetch()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}

	snap, err := r.WaitFor(waitCtx(t), gen)
	if err != nil {
		t.Fatalf("WaitFor() error = %v", err)
	}
	if snap.State != Success || snap.Value != 2 {
		t.Errorf("snapshot = %+v, want Success(2)", snap)
	}
}

func TestRevalidationKeepsStaleValue(t *testing.T) {
	f := newScripted()
	r := New(f.fetch)
	defer r.Close()

	r.Fetch()
	f.awaitStart(t, 1)
	f.release(t, 1, result{value: []string{"x", "y"}})
	if _, err := r.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	var seen []Snapshot[[]string]
	var mu sync.Mutex
	unsubscribe := r.Subscribe(func(s Snapshot[[]string]) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})
	defer unsubscribe()

	r.Invalidate()
	f.awaitStart(t, 2)

	snap := r.Snapshot()
	if snap.State != Success || !snap.Waiting {
		t.Fatalf("snapshot = %+v, want Success with waiting", snap)
	}
	if len(snap.Value) != 2 {
		t.Errorf("stale value = %v, want [x y]", snap.Value)
	}

	f.release(t, 2, result{value: []string{"x", "y", "z"}})
	if _, err := r.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, s := range seen {
		if s.State == Waiting {
			t.Errorf("revalidation passed through Waiting: %+v", s)
		}
	}
}

func TestRevalidationAfterFailureKeepsError(t *testing.T) {
	boom := errors.New("boom")
	f := newScripted()
	r := New(f.fetch)
	defer r.Close()

	r.Fetch()
	f.awaitStart(t, 1)
	f.release(t, 1, result{err: boom})
	r.Wait(waitCtx(t))

	r.Refetch()
	f.awaitStart(t, 2)
	snap := r.Snapshot()
	if snap.State != Failure || !snap.Waiting || !errors.Is(snap.Err, boom) {
		t.Errorf("snapshot = %+v, want Failure(boom) with waiting", snap)
	}

	f.release(t, 2, result{value: []string{"ok"}})
	r.Wait(waitCtx(t))
}

func TestFetchJoinsInFlightFetch(t *testing.T) {
	f := newScripted()
	r := New(f.fetch)
	defer r.Close()

	first := r.Fetch()
	f.awaitStart(t, 1)
	joined := r.Fetch()
	if joined != first {
		t.Errorf("Fetch() during a fetch = %d, want %d", joined, first)
	}

	f.release(t, 1, result{value: []string{"a"}})
	r.Wait(waitCtx(t))

	f.mu.Lock()
	calls := len(f.calls)
	f.mu.Unlock()
	if calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", calls)
	}
}

func TestStaleTime(t *testing.T) {
	f := newScripted()
	r := New(f.fetch).StaleTime(time.Hour)
	defer r.Close()

	r.Fetch()
	f.awaitStart(t, 1)
	f.release(t, 1, result{value: []string{"a"}})
	r.Wait(waitCtx(t))

	if gen := r.Fetch(); gen != 1 {
		t.Errorf("Fetch() on fresh data = %d, want 1", gen)
	}

	gen := r.Invalidate()
	if gen != 2 {
		t.Errorf("Invalidate() = %d, want 2", gen)
	}
	f.awaitStart(t, 2)
	f.release(t, 2, result{value: []string{"b"}})
	r.Wait(waitCtx(t))
}

func TestWaitRespectsContext(t *testing.T) {
	f := newScripted()
	r := New(f.fetch)
	defer func() {
		f.release(t, 1, result{})
		r.Close()
	}()

	r.Fetch()
	f.awaitStart(t, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestCloseIgnoresFurtherFetches(t *testing.T) {
	r := New(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	r.Fetch()
	r.Close()

	if gen := r.Refetch(); gen != 0 {
		t.Errorf("Refetch() after Close = %d, want 0", gen)
	}
}

func TestMatch(t *testing.T) {
	render := func(s Snapshot[int]) string {
		out, _ := Match(s,
			OnInitial[int](func() string { return "idle" }),
			OnWaiting[int](func() string { return "loading" }),
			OnFailure[int](func(err error, waiting bool) string {
				if waiting {
					return "retrying"
				}
				return "error: " + err.Error()
			}),
			OnSuccess(func(v int, waiting bool) string {
				if waiting {
					return "refreshing"
				}
				return "ready"
			}),
		)
		return out
	}

	tests := []struct {
		snap Snapshot[int]
		want string
	}{
		{Snapshot[int]{}, "idle"},
		{Snapshot[int]{State: Waiting, Waiting: true}, "loading"},
		{Snapshot[int]{State: Failure, Err: errors.New("x")}, "error: x"},
		{Snapshot[int]{State: Failure, Err: errors.New("x"), Waiting: true}, "retrying"},
		{Snapshot[int]{State: Success, Value: 1}, "ready"},
		{Snapshot[int]{State: Success, Value: 1, Waiting: true}, "refreshing"},
	}
	for _, tt := range tests {
		if got := render(tt.snap); got != tt.want {
			t.Errorf("Match(%+v) = %q, want %q", tt.snap, got, tt.want)
		}
	}

	if _, ok := Match[int, string](Snapshot[int]{State: Success}); ok {
		t.Error("Match with no handlers reported a match")
	}
}
