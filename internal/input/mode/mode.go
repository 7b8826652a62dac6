package mode

import (
	"fmt"
	"strings"
)

// ID is an interned mode identifier.
type ID string

// Built-in modes.
const (
	Normal    ID = "normal"
	Insert    ID = "insert"
	Visual    ID = "visual"
	OpPending ID = "op-pending"
	Command   ID = "command"
	Hint      ID = "hint"
	Ignore    ID = "ignore"
)

// Mode describes a registered mode.
type Mode struct {
	// ID is the unique identifier (e.g., "normal", "insert").
	ID ID

	// DisplayName is shown in the host status line.
	DisplayName string

	// CursorStyle is the caret hint for the host.
	CursorStyle CursorStyle

	// LiteralInput marks modes where unmapped printable keys insert text
	// into the focused surface. A pending partial sequence in such a mode
	// is replayed as text when it fails or times out.
	LiteralInput bool
}

// Options configures a runtime-registered mode.
type Options struct {
	DisplayName  string
	CursorStyle  CursorStyle
	LiteralInput bool
}

// CursorStyle defines the visual appearance of the caret.
type CursorStyle uint8

const (
	// CursorBlock is a full-cell block cursor (normal mode).
	CursorBlock CursorStyle = iota

	// CursorBar is a thin vertical bar cursor (insert mode).
	CursorBar

	// CursorUnderline is an underline cursor.
	CursorUnderline

	// CursorHidden hides the cursor.
	CursorHidden
)

// String returns a human-readable cursor style name.
func (c CursorStyle) String() string {
	switch c {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	case CursorHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// ParseCursorStyle parses a cursor style name. "beam" is accepted as an
// alias for "bar".
func ParseCursorStyle(s string) (CursorStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "block":
		return CursorBlock, nil
	case "bar", "beam":
		return CursorBar, nil
	case "underline":
		return CursorUnderline, nil
	case "hidden":
		return CursorHidden, nil
	}
	return CursorBlock, fmt.Errorf("unknown cursor style %q", s)
}

// builtins are registered in every Registry.
var builtins = []Mode{
	{ID: Normal, DisplayName: "NORMAL", CursorStyle: CursorBlock},
	{ID: Insert, DisplayName: "INSERT", CursorStyle: CursorBar, LiteralInput: true},
	{ID: Visual, DisplayName: "VISUAL", CursorStyle: CursorBlock},
	{ID: OpPending, DisplayName: "OPERATOR", CursorStyle: CursorUnderline},
	{ID: Command, DisplayName: "COMMAND", CursorStyle: CursorBar},
	{ID: Hint, DisplayName: "HINT", CursorStyle: CursorHidden},
	{ID: Ignore, DisplayName: "IGNORE", CursorStyle: CursorBar},
}
