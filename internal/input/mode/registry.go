package mode

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the interned table of known modes. Registration is one-shot:
// an identifier can never be redefined.
type Registry struct {
	mu    sync.RWMutex
	modes map[ID]Mode
}

// NewRegistry creates a registry holding the built-in modes.
func NewRegistry() *Registry {
	r := &Registry{modes: make(map[ID]Mode, len(builtins))}
	for _, m := range builtins {
		r.modes[m.ID] = m
	}
	return r
}

// Register adds a runtime mode.
func (r *Registry) Register(id ID, opts Options) (Mode, error) {
	if err := validateID(id); err != nil {
		return Mode{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modes[id]; ok {
		return Mode{}, fmt.Errorf("%w: %s", ErrModeExists, id)
	}

	m := Mode{
		ID:           id,
		DisplayName:  opts.DisplayName,
		CursorStyle:  opts.CursorStyle,
		LiteralInput: opts.LiteralInput,
	}
	if m.DisplayName == "" {
		m.DisplayName = strings.ToUpper(string(id))
	}
	r.modes[id] = m
	return m, nil
}

// Get returns a mode by identifier.
func (r *Registry) Get(id ID) (Mode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modes[id]
	return m, ok
}

// Has returns true if the identifier is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.Get(id)
	return ok
}

// IsLiteralInput reports whether unmapped keys in the mode insert text.
func (r *Registry) IsLiteralInput(id ID) bool {
	m, ok := r.Get(id)
	return ok && m.LiteralInput
}

// Modes returns all registered modes sorted by identifier.
func (r *Registry) Modes() []Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Mode, 0, len(r.modes))
	for _, m := range r.modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validateID(id ID) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidMode)
	}
	if strings.ContainsFunc(string(id), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	}) {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidMode, id)
	}
	return nil
}
