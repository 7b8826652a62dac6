package keymap

import (
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Entry is one registered mapping.
type Entry struct {
	// Mode is the mode the mapping applies to.
	Mode mode.ID

	// LHS is the left-hand side as authored.
	LHS string

	// Sequence is the canonical key sequence.
	Sequence key.Sequence

	// Action is executed when the sequence completes.
	Action Action

	// BufferID scopes the mapping to one buffer. Empty means global.
	BufferID string

	// Description documents the mapping.
	Description string

	// RetainDisplay keeps the sequence in key state notifications after it
	// resolves, e.g. "d" while an operator waits for its motion.
	RetainDisplay bool
}

// IsGlobal returns true if the entry is not scoped to a buffer.
func (e Entry) IsGlobal() bool {
	return e.BufferID == ""
}

// SetOptions are the optional parts of a mapping.
type SetOptions struct {
	BufferID      string
	Description   string
	RetainDisplay bool
}

// DelOptions select which scope a deletion applies to.
type DelOptions struct {
	BufferID string
}

// Filter selects entries for List. Zero fields match everything.
type Filter struct {
	Mode mode.ID

	// BufferID limits results to one buffer's mappings. With
	// IncludeGlobal, global mappings not shadowed in that buffer are
	// included as well.
	BufferID      string
	IncludeGlobal bool

	// Prefix keeps entries whose sequence starts with it.
	Prefix key.Sequence
}
