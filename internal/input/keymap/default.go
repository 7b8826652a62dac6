package keymap

import (
	"errors"

	"github.com/dshills/modalkeys/internal/input/mode"
)

// Default is one built-in mapping.
type Default struct {
	Mode          mode.ID
	LHS           string
	Excmd         string
	Description   string
	RetainDisplay bool
}

// motionKeys are bound to "motion <key>" in normal, visual and
// operator-pending mode.
var motionKeys = []struct {
	lhs, desc string
}{
	{"h", "Move left"},
	{"l", "Move right"},
	{"j", "Move down"},
	{"k", "Move up"},
	{"w", "Move to next word"},
	{"W", "Move to next WORD"},
	{"b", "Move to previous word"},
	{"B", "Move to previous WORD"},
	{"e", "Move to end of word"},
	{"E", "Move to end of WORD"},
	{"0", "Move to line start"},
	{"^", "Move to first non-blank"},
	{"$", "Move to line end"},
	{"{", "Move to previous paragraph"},
	{"}", "Move to next paragraph"},
	{"gg", "Go to document start"},
	{"G", "Go to document end"},
}

// textObjects are bound to "motion <key>" in operator-pending mode.
var textObjects = []string{
	"iw", "aw", "iW", "aW",
	`i"`, `a"`, "i'", "a'", "i`", "a`",
	"i(", "a(", "i)", "a)", "ib", "ab",
	"i[", "a[", "i]", "a]",
	"i{", "a{", "i}", "a}", "iB", "aB",
	"i<lt>", "a<lt>", "i>", "a>",
}

// Defaults returns the built-in mappings.
func Defaults() []Default {
	defaults := []Default{
		// Mode changes
		{mode.Normal, "i", "mode_change insert", "Insert before cursor", false},
		{mode.Normal, "a", "mode_change insert --automove=right", "Insert after cursor", false},
		{mode.Normal, "I", "mode_change insert --automove=firstnonblank", "Insert at line start", false},
		{mode.Normal, "A", "mode_change insert --automove=endline", "Insert at line end", false},
		{mode.Normal, "v", "mode_change visual", "Visual mode", false},
		{mode.Normal, "<S-Esc>", "mode_change ignore", "Ignore mode", false},
		{mode.Ignore, "<S-Esc>", "mode_change normal", "Leave ignore mode", false},
		{mode.Insert, "<Esc>", "mode_change normal --automove=left", "Normal mode", false},
		{mode.Visual, "<Esc>", "mode_change normal", "Normal mode", false},
		{mode.OpPending, "<Esc>", "mode_change normal", "Cancel operator", false},
		{mode.Command, "<Esc>", "mode_change normal", "Normal mode", false},
		{mode.Hint, "<Esc>", "mode_change normal", "Normal mode", false},

		// Operators
		{mode.Normal, "d", "operator d", "Delete", true},
		{mode.Normal, "c", "operator c", "Change", true},
		{mode.OpPending, "d", "motion line", "Delete line", false},
		{mode.OpPending, "c", "motion line", "Change line", false},

		// Edits
		{mode.Normal, "x", "edit x", "Delete character", false},
		{mode.Normal, "X", "edit X", "Delete previous character", false},
		{mode.Normal, "s", "edit s", "Substitute character", false},
		{mode.Normal, "D", "edit D", "Delete to line end", false},
		{mode.Normal, "C", "edit C", "Change to line end", false},
		{mode.Normal, "o", "edit o", "Open line below", false},
		{mode.Normal, "O", "edit O", "Open line above", false},
		{mode.Normal, "r", "replace", "Replace character", true},
		{mode.Normal, ".", "repeat", "Repeat last edit", false},
		{mode.Normal, "u", "undo", "Undo", false},
		{mode.Normal, "<C-r>", "redo", "Redo", false},

		// Visual edits
		{mode.Visual, "d", "visual_edit d", "Delete selection", false},
		{mode.Visual, "x", "visual_edit d", "Delete selection", false},
		{mode.Visual, "c", "visual_edit c", "Change selection", false},
	}

	for _, m := range []mode.ID{mode.Normal, mode.Visual, mode.OpPending} {
		for _, mk := range motionKeys {
			defaults = append(defaults, Default{m, mk.lhs, "motion " + mk.lhs, mk.desc, false})
		}
	}
	for _, obj := range textObjects {
		defaults = append(defaults, Default{mode.OpPending, obj, "motion " + obj, "Text object", false})
	}
	return defaults
}

// LoadDefaults registers the built-in mappings in the store.
func LoadDefaults(s *Store) error {
	var errs []error
	for _, d := range Defaults() {
		opts := SetOptions{Description: d.Description, RetainDisplay: d.RetainDisplay}
		if _, err := s.Set(d.Mode, d.LHS, Excmd(d.Excmd), opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
