package keymap

import (
	"sort"

	"github.com/dshills/modalkeys/internal/input/key"
)

// Trie is a prefix tree of mappings for one (mode, scope) pair. A sequence
// may be a leaf and a prefix of longer sequences at the same time.
type Trie struct {
	root *Node
}

// Node is one position in a Trie.
type Node struct {
	children map[key.Notation]*Node
	entry    *Entry

	// tombstone blocks fallthrough to the global trie for this sequence.
	tombstone bool
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

func newNode() *Node {
	return &Node{children: make(map[key.Notation]*Node)}
}

// Entry returns the mapping stored at the node, if any.
func (n *Node) Entry() *Entry {
	if n == nil {
		return nil
	}
	return n.entry
}

// IsLeaf returns true if a mapping ends at this node.
func (n *Node) IsLeaf() bool {
	return n != nil && n.entry != nil
}

// HasChildren returns true if longer sequences pass through this node.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.children) > 0
}

// IsTombstone returns true if the node masks a global mapping.
func (n *Node) IsTombstone() bool {
	return n != nil && n.tombstone
}

// live reports whether a mapping ends at or below n.
func (n *Node) live() bool {
	if n == nil {
		return false
	}
	return n.entry != nil || n.hasLiveChildren()
}

// hasLiveChildren reports whether a mapping ends strictly below n.
// Tombstone-only branches do not count.
func (n *Node) hasLiveChildren() bool {
	if n == nil {
		return false
	}
	for _, c := range n.children {
		if c.live() {
			return true
		}
	}
	return false
}

// child returns the child reached by k, or nil.
func (n *Node) child(k key.Notation) *Node {
	if n == nil {
		return nil
	}
	return n.children[k]
}

// unmasked reports whether a mapping at or below g survives the
// tombstones of the overlay node o, which sits at the same sequence.
func unmasked(g, o *Node) bool {
	if g.entry != nil && !o.IsTombstone() {
		return true
	}
	for k, c := range g.children {
		if unmasked(c, o.child(k)) {
			return true
		}
	}
	return false
}

// Insert stores e at seq, replacing any existing mapping or tombstone.
func (t *Trie) Insert(seq key.Sequence, e *Entry) {
	node := t.root

	// Navigate/create path for each key in sequence
	for _, n := range seq {
		child, ok := node.children[n]
		if !ok {
			child = newNode()
			node.children[n] = child
		}
		node = child
	}
	node.entry = e
	node.tombstone = false
}

// Tombstone marks seq as deleted in this scope.
func (t *Trie) Tombstone(seq key.Sequence) {
	node := t.root
	for _, n := range seq {
		child, ok := node.children[n]
		if !ok {
			child = newNode()
			node.children[n] = child
		}
		node = child
	}
	node.entry = nil
	node.tombstone = true
}

// Remove deletes the mapping or tombstone at seq and prunes empty nodes.
// It returns the removed entry.
func (t *Trie) Remove(seq key.Sequence) (*Entry, bool) {
	if len(seq) == 0 {
		return nil, false
	}

	// Track path for pruning
	path := make([]*Node, 0, len(seq)+1)
	path = append(path, t.root)

	node := t.root
	for _, n := range seq {
		child, ok := node.children[n]
		if !ok {
			return nil, false
		}
		path = append(path, child)
		node = child
	}
	if node.entry == nil && !node.tombstone {
		return nil, false
	}

	removed := node.entry
	node.entry = nil
	node.tombstone = false

	// Prune empty nodes from leaf to root
	for i := len(path) - 1; i > 0; i-- {
		current := path[i]
		if current.entry != nil || current.tombstone || len(current.children) > 0 {
			break
		}
		delete(path[i-1].children, seq[i-1])
	}
	return removed, true
}

// Get returns the node at exactly seq, without leader substitution.
func (t *Trie) Get(seq key.Sequence) *Node {
	node := t.root
	for _, n := range seq {
		child, ok := node.children[n]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// Walk follows seq from the root. A key equal to leader also matches a
// <leader> edge when there is no literal edge for it. The empty sequence
// yields the root.
func (t *Trie) Walk(seq key.Sequence, leader key.Notation) *Node {
	node := t.root
	for _, n := range seq {
		child, ok := node.children[n]
		if !ok && n == leader {
			child, ok = node.children[key.Leader]
		}
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// IsEmpty returns true if the trie holds no mappings or tombstones.
func (t *Trie) IsEmpty() bool {
	return len(t.root.children) == 0
}

// Entries returns every mapping in the trie in sequence order.
func (t *Trie) Entries() []Entry {
	var out []Entry
	t.visit(t.root, func(n *Node) {
		if n.entry != nil {
			out = append(out, *n.entry)
		}
	})
	return out
}

// Tombstones returns the sequences masked in this scope.
func (t *Trie) Tombstones() []key.Sequence {
	var out []key.Sequence
	var walk func(n *Node, prefix key.Sequence)
	walk = func(n *Node, prefix key.Sequence) {
		if n.tombstone {
			out = append(out, prefix.Clone())
		}
		for _, k := range sortedKeys(n) {
			walk(n.children[k], prefix.Append(k))
		}
	}
	walk(t.root, nil)
	return out
}

func (t *Trie) visit(n *Node, fn func(*Node)) {
	fn(n)
	for _, k := range sortedKeys(n) {
		t.visit(n.children[k], fn)
	}
}

func sortedKeys(n *Node) []key.Notation {
	keys := make([]key.Notation, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
