// Package finder fuzzy-searches keymap entries, for "which key does X"
// lookups from the command line.
//
// A query matches a mapping when its characters appear in order in the
// mapping's left-hand side, action or description. Matches score higher
// for consecutive characters, word starts and prefixes; the best field
// wins. Scored pairs are cached with go-cache so repeated interactive
// queries over the same keymap stay cheap.
package finder
