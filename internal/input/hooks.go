package input

import (
	"sort"
	"sync"

	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
	"github.com/dshills/modalkeys/internal/input/mode"
	"github.com/dshills/modalkeys/internal/logging"
)

// KeyContext describes the key being processed.
type KeyContext struct {
	BufferID string
	Mode     mode.ID
	Key      key.Notation
}

// Hook allows interception of key handling and action dispatch. Hooks run
// synchronously while the engine processes a key and must not call back
// into the engine.
type Hook interface {
	// PreKey is called before a key is resolved.
	// Return true to consume the key (stop further processing).
	PreKey(kc KeyContext) bool

	// PostKey is called after a key was processed.
	PostKey(kc KeyContext, r Result)

	// PreAction is called before an action goes to the executor.
	// Return true to consume the action.
	PreAction(a keymap.Action, ac ActionContext) bool
}

// HookPriority defines the execution order for hooks.
// Lower values execute first.
type HookPriority int

const (
	// HookPriorityHighest runs before all other hooks.
	HookPriorityHighest HookPriority = -1000
	// HookPriorityHigh runs early in the hook chain.
	HookPriorityHigh HookPriority = -100
	// HookPriorityNormal is the default priority.
	HookPriorityNormal HookPriority = 0
	// HookPriorityLow runs late in the hook chain.
	HookPriorityLow HookPriority = 100
	// HookPriorityLowest runs after all other hooks.
	HookPriorityLowest HookPriority = 1000
)

// HookID uniquely identifies a registered hook.
type HookID uint64

// HookRegistration holds metadata about a registered hook.
type HookRegistration struct {
	ID       HookID
	Name     string
	Priority HookPriority
	Hook     Hook
}

// HookManager manages hooks with priorities and named registration.
type HookManager struct {
	mu      sync.RWMutex
	hooks   []HookRegistration
	nextID  HookID
	sorted  bool
	byName  map[string]HookID
	enabled bool
}

// NewHookManager creates a new hook manager.
func NewHookManager() *HookManager {
	return &HookManager{
		byName:  make(map[string]HookID),
		sorted:  true,
		enabled: true,
	}
}

// Register adds a hook with default priority.
func (m *HookManager) Register(hook Hook) HookID {
	return m.RegisterWithOptions(hook, "", HookPriorityNormal)
}

// RegisterWithPriority adds a hook with specified priority.
func (m *HookManager) RegisterWithPriority(hook Hook, priority HookPriority) HookID {
	return m.RegisterWithOptions(hook, "", priority)
}

// RegisterNamed adds a hook with a name for later reference. A hook
// already registered under the name is replaced.
func (m *HookManager) RegisterNamed(hook Hook, name string) HookID {
	return m.RegisterWithOptions(hook, name, HookPriorityNormal)
}

// RegisterWithOptions adds a hook with all options specified.
func (m *HookManager) RegisterWithOptions(hook Hook, name string, priority HookPriority) HookID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" {
		if old, ok := m.byName[name]; ok {
			m.removeLocked(old)
		}
	}

	m.nextID++
	id := m.nextID
	m.hooks = append(m.hooks, HookRegistration{
		ID:       id,
		Name:     name,
		Priority: priority,
		Hook:     hook,
	})
	if name != "" {
		m.byName[name] = id
	}

	m.sorted = false
	return id
}

// Unregister removes a hook by ID.
func (m *HookManager) Unregister(id HookID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(id)
}

// UnregisterByName removes a hook by name.
func (m *HookManager) UnregisterByName(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byName[name]
	if !ok {
		return false
	}
	return m.removeLocked(id)
}

func (m *HookManager) removeLocked(id HookID) bool {
	for i := range m.hooks {
		if m.hooks[i].ID != id {
			continue
		}
		if name := m.hooks[i].Name; name != "" {
			delete(m.byName, name)
		}
		m.hooks = append(m.hooks[:i], m.hooks[i+1:]...)
		return true
	}
	return false
}

// Get returns a hook registration by ID.
func (m *HookManager) Get(id HookID) (HookRegistration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.hooks {
		if reg.ID == id {
			return reg, true
		}
	}
	return HookRegistration{}, false
}

// GetByName returns a hook registration by name.
func (m *HookManager) GetByName(name string) (HookRegistration, bool) {
	m.mu.RLock()
	id, ok := m.byName[name]
	m.mu.RUnlock()
	if !ok {
		return HookRegistration{}, false
	}
	return m.Get(id)
}

// SetEnabled enables or disables all hooks.
func (m *HookManager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// IsEnabled returns whether hooks are enabled.
func (m *HookManager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Count returns the number of registered hooks.
func (m *HookManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks)
}

// List returns all hook registrations in execution order.
func (m *HookManager) List() []HookRegistration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureSorted()
	result := make([]HookRegistration, len(m.hooks))
	copy(result, m.hooks)
	return result
}

// ensureSorted sorts hooks by priority if needed.
func (m *HookManager) ensureSorted() {
	if m.sorted {
		return
	}
	sort.SliceStable(m.hooks, func(i, j int) bool {
		return m.hooks[i].Priority < m.hooks[j].Priority
	})
	m.sorted = true
}

// snapshot returns the hooks to run, in order, outside the lock.
func (m *HookManager) snapshot() []Hook {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || len(m.hooks) == 0 {
		return nil
	}
	m.ensureSorted()
	hooks := make([]Hook, len(m.hooks))
	for i := range m.hooks {
		hooks[i] = m.hooks[i].Hook
	}
	return hooks
}

// RunPreKey runs all PreKey hooks in priority order.
// Returns true if any hook consumed the key.
func (m *HookManager) RunPreKey(kc KeyContext) bool {
	for _, hook := range m.snapshot() {
		if hook.PreKey(kc) {
			return true
		}
	}
	return false
}

// RunPostKey runs all PostKey hooks in priority order.
func (m *HookManager) RunPostKey(kc KeyContext, r Result) {
	for _, hook := range m.snapshot() {
		hook.PostKey(kc, r)
	}
}

// RunPreAction runs all PreAction hooks in priority order.
// Returns true if any hook consumed the action.
func (m *HookManager) RunPreAction(a keymap.Action, ac ActionContext) bool {
	for _, hook := range m.snapshot() {
		if hook.PreAction(a, ac) {
			return true
		}
	}
	return false
}

// Clear removes all hooks.
func (m *HookManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = nil
	m.byName = make(map[string]HookID)
	m.sorted = true
}

// BaseHook provides a default implementation of the Hook interface.
// Embed this in custom hooks to only implement the methods you need.
type BaseHook struct{}

// PreKey is a no-op that does not consume keys.
func (BaseHook) PreKey(KeyContext) bool {
	return false
}

// PostKey is a no-op.
func (BaseHook) PostKey(KeyContext, Result) {}

// PreAction is a no-op that does not consume actions.
func (BaseHook) PreAction(keymap.Action, ActionContext) bool {
	return false
}

// FuncHook wraps functions into a Hook interface implementation.
type FuncHook struct {
	PreKeyFunc    func(KeyContext) bool
	PostKeyFunc   func(KeyContext, Result)
	PreActionFunc func(keymap.Action, ActionContext) bool
}

// PreKey calls the PreKeyFunc if set.
func (h FuncHook) PreKey(kc KeyContext) bool {
	if h.PreKeyFunc != nil {
		return h.PreKeyFunc(kc)
	}
	return false
}

// PostKey calls the PostKeyFunc if set.
func (h FuncHook) PostKey(kc KeyContext, r Result) {
	if h.PostKeyFunc != nil {
		h.PostKeyFunc(kc, r)
	}
}

// PreAction calls the PreActionFunc if set.
func (h FuncHook) PreAction(a keymap.Action, ac ActionContext) bool {
	if h.PreActionFunc != nil {
		return h.PreActionFunc(a, ac)
	}
	return false
}

// LoggingHook logs every key and dispatched action at debug level.
type LoggingHook struct {
	BaseHook
	Logger *logging.Logger
}

// PreKey logs the key.
func (h LoggingHook) PreKey(kc KeyContext) bool {
	h.Logger.Debug("key %s (mode=%s, buffer=%s)", kc.Key, kc.Mode, kc.BufferID)
	return false
}

// PostKey logs the resolution.
func (h LoggingHook) PostKey(kc KeyContext, r Result) {
	h.Logger.Debug("-> %s %s (consumed=%t)", r.Kind, r.Sequence, r.Consumed)
}

// PreAction logs action dispatch.
func (h LoggingHook) PreAction(a keymap.Action, ac ActionContext) bool {
	h.Logger.Debug("dispatching %s (count=%d)", a, ac.Count)
	return false
}

// FilterHook filters keys or actions based on predicates.
type FilterHook struct {
	BaseHook

	// KeyFilter returns true to consume a key.
	KeyFilter func(KeyContext) bool

	// ActionFilter returns true to consume an action.
	ActionFilter func(keymap.Action, ActionContext) bool
}

// PreKey applies the key filter.
func (h FilterHook) PreKey(kc KeyContext) bool {
	if h.KeyFilter != nil {
		return h.KeyFilter(kc)
	}
	return false
}

// PreAction applies the action filter.
func (h FilterHook) PreAction(a keymap.Action, ac ActionContext) bool {
	if h.ActionFilter != nil {
		return h.ActionFilter(a, ac)
	}
	return false
}
