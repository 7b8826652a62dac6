package resolver

import (
	"sync"
	"time"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/logging"
)

// DefaultTimeout is how long withheld keys wait for the next key.
const DefaultTimeout = 200 * time.Millisecond

// TimeoutFunc is called from a timer goroutine when a buffer's pending
// keys time out. It receives the generation the timer was armed for and
// should route back through the caller's serialization to Expire.
type TimeoutFunc func(bufferID string, generation uint64)

// Options configures a Resolver.
type Options struct {
	// Timeout is the pending-key timeout. Zero or negative disables the
	// timer, so withheld keys wait for the next key indefinitely.
	Timeout time.Duration

	// OnTimeout receives timer expirations.
	OnTimeout TimeoutFunc

	Logger *logging.Logger
}

// Resolver matches keys against a keymap.Store one at a time, keeping the
// withheld prefix of every buffer.
type Resolver struct {
	mu sync.Mutex

	store *keymap.Store
	modes *mode.Registry

	timeout   time.Duration
	onTimeout TimeoutFunc
	log       *logging.Logger

	pending map[string]*state

	// generation only grows, so a token never matches a later state of
	// the same buffer, even after Drop.
	generation uint64
}

// state is the internal PendingInput of a buffer plus its timer.
type state struct {
	PendingInput
	timer *time.Timer
}

// New creates a resolver over store. modes decides which modes insert
// keys as literal text.
func New(store *keymap.Store, modes *mode.Registry, opts Options) *Resolver {
	return &Resolver{
		store:     store,
		modes:     modes,
		timeout:   opts.Timeout,
		onTimeout: opts.OnTimeout,
		log:       opts.Logger.WithCategory(logging.CatResolver),
		pending:   make(map[string]*state),
	}
}

// SetTimeout changes the pending-key timeout for timers armed from now on.
func (r *Resolver) SetTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = d
}

// Timeout returns the pending-key timeout.
func (r *Resolver) Timeout() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeout
}

// HandleKey feeds one canonical key for a buffer in mode m.
//
// A sequence that completes a mapping with no longer continuation is a
// FullMatch. A sequence that is a prefix of longer mappings is withheld
// as a PartialMatch, even when it also completes a mapping itself. A key
// that extends nothing releases the withheld keys. Replayed keys are
// returned with the key resolved again on its own. A flushed ambiguous
// mapping is returned alone with the key in Deferred: the mapping may
// change mode, so the caller runs it and then feeds the key again.
func (r *Resolver) HandleKey(bufferID string, m mode.ID, n key.Notation) Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.pending[bufferID]
	if st != nil && st.Mode != m {
		r.clearLocked(bufferID)
		st = nil
	}

	var prev key.Sequence
	var prevLeaf *keymap.Entry
	if st != nil {
		prev, prevLeaf = st.Accumulated, st.Leaf
	}
	acc := prev.Append(n)

	if res, ok := r.matchLocked(bufferID, m, acc); ok {
		return res
	}

	// Dead end: release what was withheld and try the key alone.
	r.clearLocked(bufferID)
	if len(prev) == 0 {
		return Resolution{Kind: NoMatch, Sequence: key.Sequence{n}}
	}

	if prevLeaf != nil {
		r.log.Debug("flush %s in %s for %s", prev, m, bufferID)
		return Resolution{Kind: NoMatch, Flushed: prevLeaf, FlushedSequence: prev, Deferred: n}
	}

	r.log.Debug("replay %s in %s for %s", prev, m, bufferID)
	fresh := key.Sequence{n}
	res, ok := r.matchLocked(bufferID, m, fresh)
	if !ok {
		res = Resolution{Kind: NoMatch, Sequence: fresh}
	}
	res.Replayed = prev
	return res
}

// matchLocked resolves acc as a full or partial match, updating the
// pending state. ok is false at a dead end.
func (r *Resolver) matchLocked(bufferID string, m mode.ID, acc key.Sequence) (Resolution, bool) {
	match, found := r.store.Lookup(m, bufferID, acc)
	if !found {
		return Resolution{}, false
	}

	if match.HasChildren {
		st := r.stateLocked(bufferID, m)
		st.Accumulated = acc
		st.Leaf = match.Entry
		r.armLocked(st)
		r.log.Debug("partial %s in %s for %s", acc, m, bufferID)
		return Resolution{Kind: PartialMatch, Sequence: acc}, true
	}
	if match.Entry == nil {
		// Tombstone.
		return Resolution{}, false
	}

	r.clearLocked(bufferID)
	r.log.Debug("match %s in %s for %s: %s", acc, m, bufferID, match.Entry.Action)
	return Resolution{Kind: FullMatch, Sequence: acc, Entry: match.Entry}, true
}

// Expire is the timer path. When generation is still current, the
// buffer's withheld keys are released: an ambiguous mapping is flushed,
// otherwise the keys are replayed. ok is false for stale generations.
func (r *Resolver) Expire(bufferID string, generation uint64) (Resolution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.pending[bufferID]
	if st == nil || st.Generation != generation || len(st.Accumulated) == 0 {
		return Resolution{}, false
	}

	res := Resolution{Kind: NoMatch}
	if st.Leaf != nil {
		res.Flushed, res.FlushedSequence = st.Leaf, st.Accumulated
	} else {
		res.Replayed = st.Accumulated
	}
	r.log.Debug("timeout %s in %s for %s", st.Accumulated, st.Mode, bufferID)
	r.clearLocked(bufferID)
	return res, true
}

// Pending returns a copy of the buffer's withheld state.
func (r *Resolver) Pending(bufferID string) (PendingInput, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.pending[bufferID]
	if st == nil || len(st.Accumulated) == 0 {
		return PendingInput{}, false
	}
	p := st.PendingInput
	p.Accumulated = p.Accumulated.Clone()
	return p, true
}

// Reset discards the buffer's withheld keys without replaying them, as a
// mode change does.
func (r *Resolver) Reset(bufferID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(bufferID)
}

// Drop forgets the buffer entirely and cancels its timer.
func (r *Resolver) Drop(bufferID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked(bufferID)
	delete(r.pending, bufferID)
}

func (r *Resolver) stateLocked(bufferID string, m mode.ID) *state {
	st := r.pending[bufferID]
	if st == nil {
		st = &state{PendingInput: PendingInput{BufferID: bufferID}}
		r.pending[bufferID] = st
	}
	st.Mode = m
	return st
}

// clearLocked empties the buffer's state and invalidates its timer. The
// generation is bumped before anything else so a timer already firing
// finds it stale.
func (r *Resolver) clearLocked(bufferID string) {
	st := r.pending[bufferID]
	if st == nil {
		return
	}
	r.generation++
	st.Generation = r.generation
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.Accumulated = nil
	st.Leaf = nil
}

// armLocked starts a fresh timer for the state. Keys are only timed out in
// literal-input modes, where withheld keys are text the user typed, and
// for ambiguous mappings, which would otherwise never run on their own.
func (r *Resolver) armLocked(st *state) {
	r.generation++
	st.Generation = r.generation
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	if r.timeout <= 0 || r.onTimeout == nil {
		return
	}
	if st.Leaf == nil && (r.modes == nil || !r.modes.IsLiteralInput(st.Mode)) {
		return
	}

	bufferID, gen, fn := st.BufferID, st.Generation, r.onTimeout
	st.timer = time.AfterFunc(r.timeout, func() { fn(bufferID, gen) })
}
