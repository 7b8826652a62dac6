package key

import (
	"testing"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Esc"},
		{KeyEnter, "CR"},
		{KeyTab, "Tab"},
		{KeyBackspace, "BS"},
		{KeyDelete, "Del"},
		{KeyUp, "Up"},
		{KeyPageDown, "PageDown"},
		{KeyF1, "F1"},
		{KeyF12, "F12"},
		{KeySpace, "Space"},
		{KeyRune, "Rune"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyClassification(t *testing.T) {
	if KeyNone.IsSpecial() || KeyRune.IsSpecial() {
		t.Error("KeyNone and KeyRune should not be special")
	}
	if !KeyEscape.IsSpecial() {
		t.Error("KeyEscape should be special")
	}
	if !KeyF7.IsFunctionKey() || KeyEscape.IsFunctionKey() {
		t.Error("IsFunctionKey misclassified")
	}
	if !KeyLeft.IsArrowKey() || KeyHome.IsArrowKey() {
		t.Error("IsArrowKey misclassified")
	}
	if !KeyHome.IsNavigationKey() || !KeyDown.IsNavigationKey() || KeyTab.IsNavigationKey() {
		t.Error("IsNavigationKey misclassified")
	}
}

func TestKeyFromName(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"Esc", KeyEscape},
		{"escape", KeyEscape},
		{"Escape", KeyEscape},
		{"CR", KeyEnter},
		{"enter", KeyEnter},
		{"Return", KeyEnter},
		{"bs", KeyBackspace},
		{"Backspace", KeyBackspace},
		{"Delete", KeyDelete},
		{"ArrowUp", KeyUp},
		{"arrowright", KeyRight},
		{"PageUp", KeyPageUp},
		{"F10", KeyF10},
		{"space", KeySpace},
		{"Shift", KeyNone},
		{"", KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyFromName(tt.name); got != tt.want {
				t.Errorf("KeyFromName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
