// Package keymap stores key mappings and answers sequence lookups.
//
// # Key Concepts
//
// Entry: Maps a canonical key sequence in one mode to an Action.
//
// Action: Either an excmd string ("motion w", "mode_change insert") or a
// Callback supplied by the host or a script.
//
// Trie: Prefix tree of entries for one (mode, scope) pair. A node may hold
// an entry and children at once, e.g. "g" and "gg".
//
// Store: Global tries per mode plus overlay tries per (buffer, mode).
//
// # Scope Resolution
//
// Lookup walks the buffer overlay first. When the overlay has a node for
// the sequence it answers alone, so a buffer mapping "g" runs even if a
// global "gg" exists. Otherwise the global trie answers. Deleting a global
// mapping in buffer scope installs a tombstone that hides it there.
//
// # Leader
//
// The token <leader> in a left-hand side matches whatever key is the
// store's leader at lookup time (<Space> by default):
//
//	store.Set(mode.Normal, "<leader>w", keymap.Excmd("write"), keymap.SetOptions{})
//	store.SetLeader(",")
//
// # Keymap Files
//
// LoadFile reads JSON, YAML or TOML documents of the form:
//
//	{"leader": ",", "keymaps": [
//	    {"mode": "normal", "lhs": "<C-x><C-s>", "action": "write"},
//	    {"modes": ["normal", "visual"], "lhs": "H", "action": "motion 0"}
//	]}
package keymap
