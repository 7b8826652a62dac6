package surface

import (
	"sync"
	"time"
	"unicode/utf8"
)

// DefaultMaxHistory is the undo depth used when none is given.
const DefaultMaxHistory = 1000

// Operation is one recorded edit with enough state to undo or redo it.
type Operation struct {
	// Start is the rune offset the edit began at.
	Start int

	// OldText was replaced (for undo); NewText was inserted (for redo).
	OldText string
	NewText string

	// Caret positions around the edit.
	CaretBefore int
	CaretAfter  int

	// typing marks operations produced by Insert, which coalesce.
	typing bool

	Timestamp time.Time
}

// IsInsert returns true if this operation is a pure insertion.
func (op *Operation) IsInsert() bool {
	return op.OldText == "" && op.NewText != ""
}

// IsDelete returns true if this operation is a pure deletion.
func (op *Operation) IsDelete() bool {
	return op.OldText != "" && op.NewText == ""
}

// Delta returns the change in text length in runes.
func (op *Operation) Delta() int {
	return utf8.RuneCountInString(op.NewText) - utf8.RuneCountInString(op.OldText)
}

// Invert returns an operation that undoes this one.
func (op *Operation) Invert() *Operation {
	return &Operation{
		Start:       op.Start,
		OldText:     op.NewText,
		NewText:     op.OldText,
		CaretBefore: op.CaretAfter,
		CaretAfter:  op.CaretBefore,
		Timestamp:   time.Now(),
	}
}

// History manages the undo and redo stacks of one surface.
type History struct {
	mu sync.Mutex

	undoStack []*Operation
	redoStack []*Operation

	maxEntries int
}

// NewHistory creates a history holding at most maxEntries undo units.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxHistory
	}
	return &History{maxEntries: maxEntries}
}

// Push records an operation and clears the redo stack. A typing operation
// that continues the previous one at its end is merged into it, so a run
// of typed characters undoes at once.
func (h *History) Push(op *Operation) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.redoStack = nil

	if op.typing && len(h.undoStack) > 0 {
		last := h.undoStack[len(h.undoStack)-1]
		if last.typing && last.OldText == "" &&
			last.Start+utf8.RuneCountInString(last.NewText) == op.Start {
			last.NewText += op.NewText
			last.CaretAfter = op.CaretAfter
			return
		}
	}

	h.undoStack = append(h.undoStack, op)
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Seal ends the current typing run; the next Insert starts a new unit.
func (h *History) Seal() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) > 0 {
		h.undoStack[len(h.undoStack)-1].typing = false
	}
}

// popUndo moves the newest undo entry to the redo stack and returns it.
func (h *History) popUndo() (*Operation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return nil, false
	}
	op := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	op.typing = false
	h.redoStack = append(h.redoStack, op)
	return op, true
}

// popRedo moves the newest redo entry back to the undo stack.
func (h *History) popRedo() (*Operation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return nil, false
	}
	op := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, op)
	return op, true
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

// UndoCount returns the number of undo units available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo units available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
}
