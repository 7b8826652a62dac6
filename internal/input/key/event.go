package key

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

// Event represents a single key press as reported by the host.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Code is the physical key code ("KeyA", "BracketLeft"), if the host
	// reports one. It is only consulted for physical layout translation.
	Code string

	// Modifiers contains the active modifier keys.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{
		Key:       KeyRune,
		Rune:      r,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{
		Key:       key,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// FromValue builds an event from a browser-style key value ("a", "Escape",
// "ArrowUp", " ") and physical code. Values that name no key, such as a
// lone "Shift", produce a KeyNone event.
func FromValue(value, code string, mods Modifier) Event {
	ev := Event{Code: code, Modifiers: mods, Timestamp: time.Now()}
	if utf8.RuneCountInString(value) == 1 {
		r, _ := utf8.DecodeRuneInString(value)
		ev.Key = KeyRune
		ev.Rune = r
		return ev
	}
	ev.Key = KeyFromName(value)
	return ev
}

// WithCode returns a copy of the event carrying the given physical code.
func (e Event) WithCode(code string) Event {
	e.Code = code
	return e
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier other than Shift is pressed.
func (e Event) IsModified() bool {
	return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
}

// Equals returns true if two events represent the same key press.
// Timestamps and codes are not compared.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key &&
		e.Rune == other.Rune &&
		e.Modifiers == other.Modifiers
}

// String returns the canonical notation of the event without any layout
// translation.
func (e Event) String() string {
	return string(ToNotation(e, LayoutOptions{}))
}

// GoString implements fmt.GoStringer for debugging.
func (e Event) GoString() string {
	return fmt.Sprintf("Event{Key: %s, Rune: %q, Code: %q, Modifiers: %s}",
		e.Key.String(), e.Rune, e.Code, e.Modifiers.String())
}
