package mode

import (
	"fmt"
	"sync"
)

// Change describes one mode transition of a buffer. Previous is empty only
// for the first transition the buffer ever makes.
type Change struct {
	BufferID string
	Previous ID
	Current  ID
}

// ChangeCallback is called after a buffer changes mode.
type ChangeCallback func(Change)

// Machine tracks the current mode of every buffer.
type Machine struct {
	mu sync.RWMutex

	registry *Registry

	// current holds the active mode per buffer.
	current map[string]ID

	// callbacks are notified on mode changes.
	callbacks []ChangeCallback
}

// NewMachine creates a mode machine backed by the given registry.
func NewMachine(registry *Registry) *Machine {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Machine{
		registry: registry,
		current:  make(map[string]ID),
	}
}

// Registry returns the mode registry.
func (m *Machine) Registry() *Registry {
	return m.registry
}

// Current returns the buffer's mode, or "" if it never entered one.
func (m *Machine) Current(bufferID string) ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current[bufferID]
}

// Switch moves a buffer into the given mode and notifies callbacks.
// Re-entering the current mode still notifies, since entering a mode
// always discards pending input.
func (m *Machine) Switch(bufferID string, id ID) (Change, error) {
	if !m.registry.Has(id) {
		return Change{}, fmt.Errorf("%w: %s", ErrUnknownMode, id)
	}

	m.mu.Lock()
	change := Change{
		BufferID: bufferID,
		Previous: m.current[bufferID],
		Current:  id,
	}
	m.current[bufferID] = id

	// Copy callbacks to call outside of lock
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(change)
		}
	}
	return change, nil
}

// Drop forgets a buffer's mode state.
func (m *Machine) Drop(bufferID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.current, bufferID)
}

// OnChange registers a callback for mode changes.
// Returns a function to unregister the callback.
func (m *Machine) OnChange(callback ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Remove callback by setting to nil (preserves indices)
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

// IsMode returns true if the buffer's current mode matches id.
func (m *Machine) IsMode(bufferID string, id ID) bool {
	return m.Current(bufferID) == id
}

// IsAnyMode returns true if the buffer's current mode matches any of ids.
func (m *Machine) IsAnyMode(bufferID string, ids ...ID) bool {
	cur := m.Current(bufferID)
	for _, id := range ids {
		if cur == id {
			return true
		}
	}
	return false
}
