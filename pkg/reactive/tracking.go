package reactive

import (
	"runtime"
	"sync"
)

// batchState holds the batching state for one goroutine.
type batchState struct {
	// depth tracks nested Batch calls.
	depth int

	// pending accumulates listeners to notify when the batch completes.
	pending []Listener
}

// batchStates stores per-goroutine batch state.
var batchStates sync.Map

// goroutineID extracts the current goroutine's ID from the runtime stack.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// currentBatch returns the batch state for the current goroutine, or nil.
func currentBatch() *batchState {
	if st, ok := batchStates.Load(goroutineID()); ok {
		return st.(*batchState)
	}
	return nil
}

func getBatchDepth() int {
	if st := currentBatch(); st != nil {
		return st.depth
	}
	return 0
}

func incrementBatchDepth() {
	gid := goroutineID()
	st, _ := batchStates.LoadOrStore(gid, &batchState{})
	st.(*batchState).depth++
}

// decrementBatchDepth returns the drained pending listeners once the
// outermost batch completes, and nil otherwise.
func decrementBatchDepth() (done bool, pending []Listener) {
	gid := goroutineID()
	v, ok := batchStates.Load(gid)
	if !ok {
		return true, nil
	}
	st := v.(*batchState)
	st.depth--
	if st.depth > 0 {
		return false, nil
	}
	batchStates.Delete(gid)
	return true, st.pending
}

func queuePendingUpdate(l Listener) {
	if st := currentBatch(); st != nil {
		st.pending = append(st.pending, l)
	}
}
