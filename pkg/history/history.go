// Package history keeps an undo/redo timeline of immutable snapshots.
//
// Every state change goes through Commit or Update, which replace the present
// snapshot as a whole. Snapshots are held by pointer and must not be modified
// once committed.
package history

import "sync"

// DefaultLimit is the number of past snapshots kept for undo
const DefaultLimit = 50

// History is a bounded undo/redo container over snapshots of type T
type History[T any] struct {
	mu      sync.RWMutex
	past    []*T // oldest first
	present *T
	future  []*T // next redo last
	limit   int
}

// New creates a history whose present is initial. A limit <= 0 uses DefaultLimit.
func New[T any](initial *T, limit int) *History[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History[T]{
		present: initial,
		limit:   limit,
	}
}

// Present returns the current snapshot
func (h *History[T]) Present() *T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.present
}

// Commit makes next the present snapshot. The previous present is pushed onto
// the undo stack and the redo stack is cleared. Committing nil or the current
// snapshot itself is a no-op and returns false.
func (h *History[T]) Commit(next *T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.commitLocked(next)
}

// Update derives the next snapshot from the present one and commits it while
// holding the lock, so no other commit can slip in between read and write.
// fn may return its argument unchanged to signal that nothing changed.
func (h *History[T]) Update(fn func(current *T) *T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.commitLocked(fn(h.present))
}

func (h *History[T]) commitLocked(next *T) bool {
	if next == nil || next == h.present {
		return false
	}
	h.past = append(h.past, h.present)
	if len(h.past) > h.limit {
		h.past = append(h.past[:0:0], h.past[len(h.past)-h.limit:]...)
	}
	h.present = next
	h.future = nil
	return true
}

// Undo restores the previous snapshot. It returns false when there is nothing to undo.
func (h *History[T]) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		return false
	}
	last := len(h.past) - 1
	previous := h.past[last]
	h.past[last] = nil
	h.past = h.past[:last]

	h.future = append(h.future, h.present)
	h.present = previous
	return true
}

// Redo re-applies the most recently undone snapshot. It returns false when there is nothing to redo.
func (h *History[T]) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		return false
	}
	last := len(h.future) - 1
	next := h.future[last]
	h.future[last] = nil
	h.future = h.future[:last]

	h.past = append(h.past, h.present)
	if len(h.past) > h.limit {
		h.past = append(h.past[:0:0], h.past[len(h.past)-h.limit:]...)
	}
	h.present = next
	return true
}

// Depth returns the sizes of the undo and redo stacks
func (h *History[T]) Depth() (past, future int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.past), len(h.future)
}

// Past returns the undo stack, oldest first
func (h *History[T]) Past() []*T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*T, len(h.past))
	copy(out, h.past)
	return out
}

// Future returns the redo stack, next redo first
func (h *History[T]) Future() []*T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*T, 0, len(h.future))
	for i := len(h.future) - 1; i >= 0; i-- {
		out = append(out, h.future[i])
	}
	return out
}
