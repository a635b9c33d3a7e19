package history

import (
	"errors"
	"sync"
	"time"

	"github.com/PokeMichele/lumo/internal/timeline"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry wraps a snapshot with metadata.
type entry struct {
	snapshot  *timeline.Snapshot
	label     string
	timestamp time.Time
}

// OperationInfo describes one undoable or redoable step.
type OperationInfo struct {
	Label     string
	Timestamp time.Time
}

// History manages undo/redo state for the timeline. It holds whole
// snapshots, an undo step restores the previous committed state in one
// move regardless of how complex the edit was.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry
	current   *entry

	maxEntries int
}

// NewHistory creates a history manager seeded with the current snapshot.
func NewHistory(initial *timeline.Snapshot, maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &History{
		current:    &entry{snapshot: initial, label: "initial", timestamp: time.Now()},
		maxEntries: maxEntries,
	}
}

// Push records a newly committed snapshot as the current state and clears
// the redo stack. A snapshot equal to the current state is dropped so
// no-op gestures leave history untouched. Reports whether the push took.
func (h *History) Push(snap *timeline.Snapshot, label string) bool {
	if snap == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current != nil && h.current.snapshot.Equal(snap) {
		return false
	}

	if h.current != nil {
		h.undoStack = append(h.undoStack, h.current)
	}
	h.current = &entry{snapshot: snap, label: label, timestamp: time.Now()}
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
	return true
}

// Undo steps back one committed state and returns the snapshot to restore.
func (h *History) Undo() (*timeline.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}

	top := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, h.current)
	h.current = top
	return top.snapshot, nil
}

// Redo steps forward one undone state and returns the snapshot to restore.
func (h *History) Redo() (*timeline.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}

	top := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, h.current)
	h.current = top
	return top.snapshot, nil
}

// Current returns the snapshot history believes is committed.
func (h *History) Current() *timeline.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return nil
	}
	return h.current.snapshot
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	top := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{Label: top.label, Timestamp: top.timestamp}, true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	top := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{Label: top.label, Timestamp: top.timestamp}, true
}

// Clear drops all undo/redo history and reseeds the current state.
func (h *History) Clear(current *timeline.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.current = &entry{snapshot: current, label: "initial", timestamp: time.Now()}
}

// SetMaxEntries changes the maximum number of undo entries. If the current
// stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = 1000
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
