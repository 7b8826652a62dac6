package key

import "strings"

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS). Written as D in notation.
	ModMeta
)

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is pressed.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is pressed.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is pressed.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasMeta returns true if Meta is pressed.
func (m Modifier) HasMeta() bool {
	return m.Has(ModMeta)
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// String returns a human-readable representation like "Ctrl+Alt".
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m.HasCtrl() {
		parts = append(parts, "Ctrl")
	}
	if m.HasAlt() {
		parts = append(parts, "Alt")
	}
	if m.HasMeta() {
		parts = append(parts, "Meta")
	}
	if m.HasShift() {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "+")
}

// Prefix returns the notation prefix in canonical C-A-D-S order,
// e.g. "C-A-" for Ctrl+Alt. Empty when no modifier is set.
func (m Modifier) Prefix() string {
	if m == ModNone {
		return ""
	}

	var sb strings.Builder
	if m.HasCtrl() {
		sb.WriteString("C-")
	}
	if m.HasAlt() {
		sb.WriteString("A-")
	}
	if m.HasMeta() {
		sb.WriteString("D-")
	}
	if m.HasShift() {
		sb.WriteString("S-")
	}
	return sb.String()
}

// modifierFromLetter maps a notation modifier letter to its Modifier.
// M is accepted as an alias for D.
func modifierFromLetter(b byte) Modifier {
	switch b {
	case 'c', 'C':
		return ModCtrl
	case 'a', 'A':
		return ModAlt
	case 'd', 'D', 'm', 'M':
		return ModMeta
	case 's', 'S':
		return ModShift
	}
	return ModNone
}
