// Package key canonicalizes keyboard input into vim-style key notation.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key (special keys, function keys, or runes)
//   - Modifier: Represents modifier keys (Ctrl, Alt, Meta, Shift)
//   - Event: A single key press as reported by the host
//   - Notation: The canonical textual form of one key press
//   - Sequence: A series of notations forming a mapping left-hand side
//
// # Canonical Notation
//
// Every key press has exactly one canonical spelling:
//
//   - Plain characters stand for themselves: "a", "A", "!", "é"
//   - Special keys use one spelling inside angle brackets: "<Esc>", "<CR>",
//     "<Tab>", "<BS>", "<Space>", "<F5>"
//   - Modifiers are written in C, A, D, S order: "<C-A-x>", "<C-S-A>"
//
// Shift is dropped for characters that already require it ("<S-!>" is "!"),
// and a shifted letter is written upper-case ("<S-h>" is "H"). An upper-case
// letter keeps S only alongside another modifier. The characters '<', '|'
// and '\' are written <lt>, <Bar> and <Bslash> inside a modifier bracket.
//
// Normalize is idempotent and never fails; ParseSequence is the strict form
// used when registering mappings.
//
// # Physical Layouts
//
// ToNotation can translate an event by its physical key code instead of the
// reported character. This keeps <A-a> reachable when macOS Option rewrites
// the character, and lets mappings follow key positions on other layouts.
package key
