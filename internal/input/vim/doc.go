// Package vim evaluates Vim-style motions and text objects over plain text.
//
// Text is addressed as a slice of runes; every offset is a rune index and
// lines are separated by '\n'. The package knows nothing about modes or
// key handling. Callers ask for a caret position or a span by name:
//
//	e := vim.New(vim.DefaultOptions())
//	pos, _ := e.Move("w", text, 0, 1)          // next word start
//	r, _ := e.TextObject("iw", text, pos)       // inner word span
//	r, _ = e.OperatorRange('d', "w", text, 0, 2) // what d2w removes
//
// # Motions
//
//	h l j k       character and line steps; j and k keep the column
//	w b e W B E   word motions; Options.CaseBoundaries splits camelCase
//	0 ^ $         line start, first non-blank, last character
//	{ }           paragraph boundaries
//	gg G          first and last line
//
// # Text Objects
//
//	iw aw iW aW               words
//	i" a" i' a' i` a`         quoted strings within a line
//	i( a( ib ab i[ a[         bracket pairs, which may span lines
//	i{ a{ iB aB i< a<
//
// # Counts
//
// Count accumulates a numeric prefix from key notations. Motions repeat
// up to count times and stop early when they can no longer move.
package vim
