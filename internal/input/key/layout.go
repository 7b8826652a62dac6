package key

// PhysicalLayoutMode controls when a key event is interpreted by its
// physical position instead of the character the host reported.
type PhysicalLayoutMode string

const (
	// PhysicalNever always uses the reported character.
	PhysicalNever PhysicalLayoutMode = "never"

	// PhysicalForOptionModifier translates only when Alt is held. On macOS
	// Option rewrites characters (Option+a reports "å"), which would
	// otherwise make <A-a> unreachable.
	PhysicalForOptionModifier PhysicalLayoutMode = "for_macos_option_modifier"

	// PhysicalForce always translates by physical code.
	PhysicalForce PhysicalLayoutMode = "force"
)

// DefaultLayoutName is the built-in layout used when none is configured.
const DefaultLayoutName = "qwerty"

// Layout maps a physical key code to its [unshifted, shifted] characters.
type Layout map[string][2]string

// Qwerty is the US QWERTY reference layout.
var Qwerty = Layout{
	"KeyA": {"a", "A"}, "KeyB": {"b", "B"}, "KeyC": {"c", "C"},
	"KeyD": {"d", "D"}, "KeyE": {"e", "E"}, "KeyF": {"f", "F"},
	"KeyG": {"g", "G"}, "KeyH": {"h", "H"}, "KeyI": {"i", "I"},
	"KeyJ": {"j", "J"}, "KeyK": {"k", "K"}, "KeyL": {"l", "L"},
	"KeyM": {"m", "M"}, "KeyN": {"n", "N"}, "KeyO": {"o", "O"},
	"KeyP": {"p", "P"}, "KeyQ": {"q", "Q"}, "KeyR": {"r", "R"},
	"KeyS": {"s", "S"}, "KeyT": {"t", "T"}, "KeyU": {"u", "U"},
	"KeyV": {"v", "V"}, "KeyW": {"w", "W"}, "KeyX": {"x", "X"},
	"KeyY": {"y", "Y"}, "KeyZ": {"z", "Z"},

	"Digit0": {"0", ")"}, "Digit1": {"1", "!"}, "Digit2": {"2", "@"},
	"Digit3": {"3", "#"}, "Digit4": {"4", "$"}, "Digit5": {"5", "%"},
	"Digit6": {"6", "^"}, "Digit7": {"7", "&"}, "Digit8": {"8", "*"},
	"Digit9": {"9", "("},

	"Minus":        {"-", "_"},
	"Equal":        {"=", "+"},
	"BracketLeft":  {"[", "{"},
	"BracketRight": {"]", "}"},
	"Semicolon":    {";", ":"},
	"Quote":        {"'", "\""},
	"Comma":        {",", "<"},
	"Period":       {".", ">"},
	"Slash":        {"/", "?"},
	"Backquote":    {"`", "~"},
	"Backslash":    {"\\", "|"},
}

// LayoutOptions configures physical layout translation for ToNotation.
// The zero value never translates.
type LayoutOptions struct {
	UsePhysicalLayout PhysicalLayoutMode
	// Layout names the active layout; empty means qwerty.
	Layout string
	// Layouts holds user layouts, consulted before the built-ins.
	Layouts map[string]Layout
}

// Lookup returns the active layout table.
func (o LayoutOptions) Lookup() (Layout, bool) {
	name := o.Layout
	if name == "" {
		name = DefaultLayoutName
	}
	if l, ok := o.Layouts[name]; ok {
		return l, true
	}
	if name == DefaultLayoutName {
		return Qwerty, true
	}
	return nil, false
}

// translate returns the character the event's physical key produces on the
// configured layout, when translation applies to the event.
func (o LayoutOptions) translate(ev Event) (string, bool) {
	if ev.Code == "" {
		return "", false
	}
	switch o.UsePhysicalLayout {
	case PhysicalForce:
	case PhysicalForOptionModifier:
		if !ev.Modifiers.HasAlt() {
			return "", false
		}
	default:
		return "", false
	}

	layout, ok := o.Lookup()
	if !ok {
		return "", false
	}
	chars, ok := layout[ev.Code]
	if !ok {
		return "", false
	}
	if ev.Modifiers.HasShift() && chars[1] != "" {
		return chars[1], true
	}
	return chars[0], true
}

// ValidMode reports whether m is a recognized physical layout mode.
func ValidMode(m PhysicalLayoutMode) bool {
	switch m {
	case PhysicalNever, PhysicalForOptionModifier, PhysicalForce:
		return true
	}
	return false
}
