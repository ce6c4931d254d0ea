package reactive

// Listener is anything that can be notified when a signal changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its sources changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used for deduplication during batch processing.
	ID() uint64
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc struct {
	id uint64
	fn func()
}

// NewListener wraps fn in a Listener with a fresh ID.
func NewListener(fn func()) *ListenerFunc {
	return &ListenerFunc{id: NextID(), fn: fn}
}

// MarkDirty calls the wrapped function.
func (l *ListenerFunc) MarkDirty() {
	if l.fn != nil {
		l.fn()
	}
}

// ID returns the listener ID.
func (l *ListenerFunc) ID() uint64 {
	return l.id
}
