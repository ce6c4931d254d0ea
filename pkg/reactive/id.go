package reactive

import "sync/atomic"

// idCounter is the source of unique IDs for signals and listeners.
var idCounter uint64

// NextID returns the next unique ID. IDs are never reused.
func NextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
