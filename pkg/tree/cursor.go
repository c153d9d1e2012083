package tree

import "errors"

// ErrStaleCursor is the panic value raised when a cursor is used after the
// tree it points into has been modified.
var ErrStaleCursor = errors.New("tree: cursor used after the tree was modified")

// cursorPosition is an indicator of where the cursor sits relative to the
// values of the tree.
type cursorPosition int

const (
	onNode cursorPosition = iota
	beforeFirst
	afterLast
)

// Cursor is a bidirectional position in a tree. Any mutation of the tree
// invalidates the cursor: using it afterwards panics with ErrStaleCursor, so
// callers re-seek after every Set or Delete.
type Cursor[V any] struct {
	t         *Tree[V]
	nodeIndex uint
	position  cursorPosition
	version   uint64
}

// Seek returns a cursor on the smallest value >= key, or > key when
// inclusive is false. When there is no such value the cursor sits past the
// last value: Valid reports false and Prev moves to the largest value.
func (r *Tree[V]) Seek(key V, inclusive bool) *Cursor[V] {
	candidate := uint(0)
	nodeIndex := r.root
	for nodeIndex != 0 {
		c := r.cmp(r.nodes[nodeIndex].Val, key)
		if c > 0 || (inclusive && c == 0) {
			candidate = nodeIndex
			nodeIndex = r.nodes[nodeIndex].Left
		} else {
			nodeIndex = r.nodes[nodeIndex].Right
		}
	}
	c := &Cursor[V]{t: r, nodeIndex: candidate, version: r.version}
	if candidate == 0 {
		c.position = afterLast
	}
	return c
}

// Iterate returns a cursor positioned before the first value; each call to
// Next moves it one value forward. It is important for the tree to not be
// modified while using the cursor.
func (r *Tree[V]) Iterate() *Cursor[V] {
	return &Cursor[V]{t: r, position: beforeFirst, version: r.version}
}

// IterateReverse returns a cursor positioned after the last value; each call
// to Prev moves it one value backward.
func (r *Tree[V]) IterateReverse() *Cursor[V] {
	return &Cursor[V]{t: r, position: afterLast, version: r.version}
}

func (c *Cursor[V]) check() {
	if c.version != c.t.version {
		panic(ErrStaleCursor)
	}
}

// Valid returns whether the cursor is on a value.
func (c *Cursor[V]) Valid() bool {
	c.check()
	return c.position == onNode
}

// Value returns the value under the cursor. It panics when the cursor is not
// Valid.
func (c *Cursor[V]) Value() V {
	c.check()
	if c.position != onNode {
		panic("tree: cursor is not on a value")
	}
	return c.t.nodes[c.nodeIndex].Val
}

// Next moves the cursor to the next value. It returns false, leaving the
// cursor past the last value, when there is none.
func (c *Cursor[V]) Next() bool {
	c.check()
	switch c.position {
	case beforeFirst:
		c.nodeIndex = c.t.minNode(c.t.root)
	case onNode:
		c.nodeIndex = c.t.successor(c.nodeIndex)
	case afterLast:
		return false
	}
	if c.nodeIndex == 0 {
		c.position = afterLast
		return false
	}
	c.position = onNode
	return true
}

// Prev moves the cursor to the previous value. It returns false, leaving the
// cursor before the first value, when there is none.
func (c *Cursor[V]) Prev() bool {
	c.check()
	switch c.position {
	case afterLast:
		c.nodeIndex = c.t.maxNode(c.t.root)
	case onNode:
		c.nodeIndex = c.t.predecessor(c.nodeIndex)
	case beforeFirst:
		return false
	}
	if c.nodeIndex == 0 {
		c.position = beforeFirst
		return false
	}
	c.position = onNode
	return true
}
