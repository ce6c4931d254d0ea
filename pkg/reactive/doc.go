// Package reactive provides the observer primitives the userboard stores are
// built on.
//
// A Signal holds a value and notifies its subscribers when the value changes.
// Subscribers are either Listener implementations (notified with MarkDirty) or
// plain callbacks registered through Subscribe, which receive the new value.
//
//	count := reactive.NewSignal(0)
//	stop := count.Subscribe(func(n int) {
//	    fmt.Println("count is now", n)
//	})
//	defer stop()
//
//	count.Set(1) // prints "count is now 1"
//
// # Batching
//
// Batch groups several updates so that each subscriber is notified once,
// after the outermost batch returns:
//
//	reactive.Batch(func() {
//	    state.Set(next)
//	    pending.Set(nil)
//	})
//
// Batches are tracked per goroutine. There is no package-level store: every
// signal is an explicit value owned by whoever created it.
package reactive
