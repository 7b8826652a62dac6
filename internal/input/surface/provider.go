package surface

import "sync"

// Map is a Provider backed by a buffer id to surface map. It is safe for
// concurrent use.
type Map struct {
	mu       sync.RWMutex
	surfaces map[string]Surface
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{surfaces: make(map[string]Surface)}
}

// Set focuses s in the buffer.
func (m *Map) Set(bufferID string, s Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surfaces[bufferID] = s
}

// Delete removes the buffer's surface.
func (m *Map) Delete(bufferID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.surfaces, bufferID)
}

// Surface implements Provider.
func (m *Map) Surface(bufferID string) (Surface, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.surfaces[bufferID]
	return s, ok
}
