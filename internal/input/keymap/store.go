package keymap

import (
	"fmt"
	"sort"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/mode"
)

// Store holds every mapping of one engine: a global trie per mode and an
// overlay trie per (buffer, mode).
type Store struct {
	mu sync.RWMutex

	// modes validates mode identifiers; nil accepts any.
	modes *mode.Registry

	global  map[mode.ID]*Trie
	buffers map[string]map[mode.ID]*Trie

	leader key.Notation

	// sequences memoizes authored lhs strings to parsed sequences.
	sequences *gocache.Cache
}

// DefaultLeader is the leader key used until SetLeader is called.
const DefaultLeader key.Notation = "<Space>"

// NewStore creates an empty store. When modes is non-nil, mappings for
// unregistered modes are rejected.
func NewStore(modes *mode.Registry) *Store {
	return &Store{
		modes:     modes,
		global:    make(map[mode.ID]*Trie),
		buffers:   make(map[string]map[mode.ID]*Trie),
		leader:    DefaultLeader,
		sequences: gocache.New(gocache.NoExpiration, 0),
	}
}

// SetLeader changes the key matched by <leader>. Mappings are resolved
// against the leader at lookup time, so existing mappings follow it.
func (s *Store) SetLeader(spec string) error {
	seq, err := s.parse(spec)
	if err != nil {
		return fmt.Errorf("leader: %w", err)
	}
	if len(seq) != 1 || seq[0] == key.Leader {
		return fmt.Errorf("leader: %w: %q is not a single key", key.ErrInvalidSpec, spec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.leader = seq[0]
	return nil
}

// Leader returns the current leader key.
func (s *Store) Leader() key.Notation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leader
}

// Set registers a mapping, replacing any mapping with the same sequence in
// the same mode and scope.
func (s *Store) Set(m mode.ID, lhs string, action Action, opts SetOptions) (Entry, error) {
	regErr := func(err error) error {
		return &RegistrationError{Mode: string(m), LHS: lhs, BufferID: opts.BufferID, Err: err}
	}

	if err := s.checkMode(m); err != nil {
		return Entry{}, regErr(err)
	}
	if lhs == "" {
		return Entry{}, regErr(ErrEmptyLHS)
	}
	if !action.IsValid() {
		return Entry{}, regErr(ErrInvalidAction)
	}
	seq, err := s.parse(lhs)
	if err != nil {
		return Entry{}, regErr(err)
	}

	e := &Entry{
		Mode:          m,
		LHS:           lhs,
		Sequence:      seq,
		Action:        action,
		BufferID:      opts.BufferID,
		Description:   opts.Description,
		RetainDisplay: opts.RetainDisplay,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.trieLocked(m, opts.BufferID, true).Insert(seq, e)
	return *e, nil
}

// Del removes a mapping. A buffer-scoped delete of a sequence that only
// exists globally masks it for that buffer with a tombstone.
func (s *Store) Del(m mode.ID, lhs string, opts DelOptions) error {
	regErr := func(err error) error {
		return &RegistrationError{Mode: string(m), LHS: lhs, BufferID: opts.BufferID, Err: err}
	}

	if err := s.checkMode(m); err != nil {
		return regErr(err)
	}
	if lhs == "" {
		return regErr(ErrEmptyLHS)
	}
	seq, err := s.parse(lhs)
	if err != nil {
		return regErr(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.BufferID == "" {
		t := s.global[m]
		if t == nil {
			return regErr(ErrNoMapping)
		}
		if n := t.Get(seq); !n.IsLeaf() {
			return regErr(ErrNoMapping)
		}
		t.Remove(seq)
		return nil
	}

	if t := s.trieLocked(m, opts.BufferID, false); t != nil {
		if n := t.Get(seq); n.IsLeaf() {
			t.Remove(seq)
			s.pruneBufferLocked(opts.BufferID, m)
			return nil
		}
	}
	if g := s.global[m]; g != nil && g.Get(seq).IsLeaf() {
		s.trieLocked(m, opts.BufferID, true).Tombstone(seq)
		return nil
	}
	return regErr(ErrNoMapping)
}

// Match is the result of a lookup.
type Match struct {
	// Entry is the mapping ending at the sequence, if any.
	Entry *Entry

	// HasChildren reports that longer mappings continue the sequence.
	HasChildren bool

	// Buffer reports that the buffer overlay answered the lookup.
	Buffer bool
}

// IsLeaf returns true if a mapping ends at the matched sequence.
func (m Match) IsLeaf() bool {
	return m.Entry != nil
}

// Lookup resolves seq in a mode for a buffer. The buffer overlay is
// consulted first and answers alone whenever it holds a mapping at or
// below seq. A tombstone at seq is a dead end. Otherwise the global trie
// answers, minus the sequences the overlay masks. ok is false when
// neither scope knows the sequence.
func (s *Store) Lookup(m mode.ID, bufferID string, seq key.Sequence) (Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var overlay *Node
	if bufferID != "" {
		if t := s.buffers[bufferID][m]; t != nil {
			n := t.Walk(seq, s.leader)
			if n.live() {
				return Match{Entry: n.Entry(), HasChildren: n.hasLiveChildren(), Buffer: true}, true
			}
			if n.IsTombstone() {
				return Match{Buffer: true}, true
			}
			overlay = n
		}
	}
	if t := s.global[m]; t != nil {
		if g := t.Walk(seq, s.leader); g != nil {
			match := Match{Entry: g.Entry()}
			for k, c := range g.children {
				if unmasked(c, overlay.child(k)) {
					match.HasChildren = true
					break
				}
			}
			if match.Entry != nil || match.HasChildren {
				return match, true
			}
		}
	}
	return Match{}, false
}

// List returns mappings matching the filter, sorted by mode, scope and
// sequence.
func (s *Store) List(f Filter) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	keep := func(e Entry) bool {
		return (f.Mode == "" || e.Mode == f.Mode) && e.Sequence.HasPrefix(f.Prefix)
	}

	if f.BufferID == "" {
		for _, t := range s.global {
			for _, e := range t.Entries() {
				if keep(e) {
					out = append(out, e)
				}
			}
		}
		for _, tries := range s.buffers {
			for _, t := range tries {
				for _, e := range t.Entries() {
					if keep(e) {
						out = append(out, e)
					}
				}
			}
		}
	} else {
		for m, t := range s.buffers[f.BufferID] {
			for _, e := range t.Entries() {
				if keep(e) {
					out = append(out, e)
				}
			}
			if f.IncludeGlobal {
				out = append(out, s.unshadowedLocked(m, t, keep)...)
			}
		}
		if f.IncludeGlobal {
			for m, g := range s.global {
				if _, overlaid := s.buffers[f.BufferID][m]; overlaid {
					continue
				}
				for _, e := range g.Entries() {
					if keep(e) {
						out = append(out, e)
					}
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		if a.BufferID != b.BufferID {
			return a.BufferID < b.BufferID
		}
		return a.Sequence.String() < b.Sequence.String()
	})
	return out
}

// unshadowedLocked returns global mappings of m that the overlay neither
// replaces nor masks.
func (s *Store) unshadowedLocked(m mode.ID, overlay *Trie, keep func(Entry) bool) []Entry {
	g := s.global[m]
	if g == nil {
		return nil
	}
	var out []Entry
	for _, e := range g.Entries() {
		if n := overlay.Get(e.Sequence); n.IsLeaf() || n.IsTombstone() {
			continue
		}
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// HasBuffer returns true if the buffer has any overlay mappings.
func (s *Store) HasBuffer(bufferID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffers[bufferID]) > 0
}

// DropBuffer removes every overlay trie of a buffer.
func (s *Store) DropBuffer(bufferID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, bufferID)
}

// Reset removes all mappings, keeping the leader.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = make(map[mode.ID]*Trie)
	s.buffers = make(map[string]map[mode.ID]*Trie)
}

// trieLocked returns the trie for a scope, creating it when create is set.
func (s *Store) trieLocked(m mode.ID, bufferID string, create bool) *Trie {
	if bufferID == "" {
		t := s.global[m]
		if t == nil && create {
			t = NewTrie()
			s.global[m] = t
		}
		return t
	}

	tries := s.buffers[bufferID]
	if tries == nil {
		if !create {
			return nil
		}
		tries = make(map[mode.ID]*Trie)
		s.buffers[bufferID] = tries
	}
	t := tries[m]
	if t == nil && create {
		t = NewTrie()
		tries[m] = t
	}
	return t
}

func (s *Store) pruneBufferLocked(bufferID string, m mode.ID) {
	tries := s.buffers[bufferID]
	if t := tries[m]; t != nil && t.IsEmpty() {
		delete(tries, m)
	}
	if len(tries) == 0 {
		delete(s.buffers, bufferID)
	}
}

func (s *Store) checkMode(m mode.ID) error {
	if m == "" {
		return fmt.Errorf("%w: empty", ErrUnknownMode)
	}
	if s.modes != nil && !s.modes.Has(m) {
		return fmt.Errorf("%w: %s", ErrUnknownMode, m)
	}
	return nil
}

// parse converts an authored lhs to a sequence, memoized per string.
func (s *Store) parse(lhs string) (key.Sequence, error) {
	if cached, ok := s.sequences.Get(lhs); ok {
		return cached.(key.Sequence).Clone(), nil
	}
	seq, err := key.ParseSequence(lhs)
	if err != nil {
		return nil, err
	}
	s.sequences.Set(lhs, seq.Clone(), gocache.NoExpiration)
	return seq, nil
}
