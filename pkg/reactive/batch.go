package reactive

// Batch groups multiple signal updates into a single notification phase.
// Updates inside fn are collected and deduplicated, and every affected
// listener is notified once when the outermost batch completes.
//
// Batches can be nested.
//
//	Batch(func() {
//	    state.Set(next)
//	    pending.Set(nil)
//	})
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if done, pending := decrementBatchDepth(); done {
			flush(pending)
		}
	}()

	fn()
}

// flush notifies each unique listener once, in first-queued order.
func flush(updates []Listener) {
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, l := range updates {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}
