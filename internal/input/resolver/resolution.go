package resolver

import (
	"fmt"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Kind is the outcome of feeding one key to the resolver.
type Kind uint8

const (
	// NoMatch means the key starts no mapping; the host should handle it.
	NoMatch Kind = iota

	// PartialMatch means the accumulated keys are a strict prefix of at
	// least one mapping and are being withheld.
	PartialMatch

	// FullMatch means a mapping completed and its action should run.
	FullMatch
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NoMatch:
		return "no_match"
	case PartialMatch:
		return "partial_match"
	case FullMatch:
		return "full_match"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Resolution is the result of HandleKey or Expire.
type Resolution struct {
	Kind Kind

	// Sequence is the matched sequence (FullMatch), the accumulated keys
	// (PartialMatch) or the key that matched nothing (NoMatch).
	Sequence key.Sequence

	// Entry is the completed mapping for FullMatch.
	Entry *keymap.Entry

	// Replayed holds withheld keys released as ordinary input, in order,
	// before Sequence is considered.
	Replayed key.Sequence

	// Flushed is an ambiguous mapping that must run before anything else:
	// its sequence was complete but also a prefix, and the key that
	// followed did not extend it.
	Flushed         *keymap.Entry
	FlushedSequence key.Sequence

	// Deferred is the key that ended a flushed sequence. It has not been
	// resolved and should be fed again once Flushed has run.
	Deferred key.Notation
}

// IsPartial reports whether keys are being withheld.
func (r Resolution) IsPartial() bool {
	return r.Kind == PartialMatch
}

// PendingInput is the withheld key state of one buffer.
type PendingInput struct {
	BufferID    string
	Mode        mode.ID
	Accumulated key.Sequence

	// Generation identifies the pending state; a timer firing with an
	// older generation is ignored.
	Generation uint64

	// Leaf is the mapping completed by Accumulated when it is also a
	// prefix of a longer one.
	Leaf *keymap.Entry
}
