package tree

import (
	"fmt"
	"iter"
)

// CompareFunc orders the values of a tree. It returns a negative number when
// a < b, zero when a == b and a positive number when a > b.
type CompareFunc[V any] func(a, b V) int

// Tree is an AVL tree holding a duplicate free set of values in the order
// given by its CompareFunc. Nodes live in a slice and are addressed by index;
// index 0 is never used and stands for "no node". Deleted slots are reused.
//
// A Tree is not safe for concurrent use.
type Tree[V any] struct {
	cmp              CompareFunc[V]
	nodes            []treeNode[V] // [0] is unused
	availableIndexes []uint        // a place to store node indexes that we deleted, and are available
	root             uint
	size             int
	// version changes on every mutation so stale cursors can be detected
	version uint64
}

func New[V any](cmp CompareFunc[V]) *Tree[V] {
	return &Tree[V]{
		cmp:              cmp,
		nodes:            make([]treeNode[V], 1),
		availableIndexes: make([]uint, 0),
	}
}

// Clone creates an identical copy of the tree
// - Note: the values in the tree are not deep copied
func (r *Tree[V]) Clone() *Tree[V] {
	ret := &Tree[V]{
		cmp:              r.cmp,
		nodes:            make([]treeNode[V], len(r.nodes), cap(r.nodes)),
		availableIndexes: make([]uint, len(r.availableIndexes), cap(r.availableIndexes)),
		root:             r.root,
		size:             r.size,
	}
	copy(ret.nodes, r.nodes)
	copy(ret.availableIndexes, r.availableIndexes)
	return ret
}

func (r *Tree[V]) init() {
	if len(r.nodes) == 0 {
		r.nodes = make([]treeNode[V], 1)
	}
}

// Len returns the number of values in the tree.
func (r *Tree[V]) Len() int { return r.size }

// Clear removes all values.
func (r *Tree[V]) Clear() {
	r.init()
	r.nodes = r.nodes[:1]
	r.nodes[0] = treeNode[V]{}
	r.availableIndexes = r.availableIndexes[:0]
	r.root = 0
	r.size = 0
	r.version++
}

// Set inserts val. It returns false, leaving the tree untouched, when an
// equal value is already present.
func (r *Tree[V]) Set(val V) bool {
	r.init()
	root, inserted := r.insert(r.root, val)
	if !inserted {
		return false
	}
	r.root = root
	r.nodes[root].Parent = 0
	r.size++
	r.version++
	return true
}

func (r *Tree[V]) insert(nodeIndex uint, val V) (uint, bool) {
	if nodeIndex == 0 {
		return r.newNode(val), true
	}
	c := r.cmp(val, r.nodes[nodeIndex].Val)
	switch {
	case c < 0:
		child, inserted := r.insert(r.nodes[nodeIndex].Left, val)
		if !inserted {
			return nodeIndex, false
		}
		r.setLeft(nodeIndex, child)
	case c > 0:
		child, inserted := r.insert(r.nodes[nodeIndex].Right, val)
		if !inserted {
			return nodeIndex, false
		}
		r.setRight(nodeIndex, child)
	default:
		return nodeIndex, false
	}
	return r.rebalance(nodeIndex), true
}

// Delete removes the value equal to val. Deleting a value that is not
// present is a no-op and returns false.
func (r *Tree[V]) Delete(val V) bool {
	root, deleted := r.delete(r.root, val)
	if !deleted {
		return false
	}
	r.root = root
	if root != 0 {
		r.nodes[root].Parent = 0
	}
	r.size--
	r.version++
	return true
}

func (r *Tree[V]) delete(nodeIndex uint, val V) (uint, bool) {
	if nodeIndex == 0 {
		return 0, false
	}
	c := r.cmp(val, r.nodes[nodeIndex].Val)
	switch {
	case c < 0:
		child, deleted := r.delete(r.nodes[nodeIndex].Left, val)
		if !deleted {
			return nodeIndex, false
		}
		r.setLeft(nodeIndex, child)
	case c > 0:
		child, deleted := r.delete(r.nodes[nodeIndex].Right, val)
		if !deleted {
			return nodeIndex, false
		}
		r.setRight(nodeIndex, child)
	default:
		node := r.nodes[nodeIndex]
		if node.Left == 0 || node.Right == 0 {
			// zero or one child, the child takes the place of the node
			child := node.Left
			if child == 0 {
				child = node.Right
			}
			if child != 0 {
				r.nodes[child].Parent = node.Parent
			}
			r.freeNode(nodeIndex)
			return child, true
		}
		// two children: take over the value of the in-order successor
		// and delete that one from the right subtree instead
		succ := r.minNode(node.Right)
		succVal := r.nodes[succ].Val
		r.nodes[nodeIndex].Val = succVal
		child, _ := r.delete(node.Right, succVal)
		r.setRight(nodeIndex, child)
	}
	return r.rebalance(nodeIndex), true
}

// find returns the index of the node equal to val, 0 when absent.
func (r *Tree[V]) find(val V) uint {
	nodeIndex := r.root
	for nodeIndex != 0 {
		c := r.cmp(val, r.nodes[nodeIndex].Val)
		switch {
		case c < 0:
			nodeIndex = r.nodes[nodeIndex].Left
		case c > 0:
			nodeIndex = r.nodes[nodeIndex].Right
		default:
			return nodeIndex
		}
	}
	return 0
}

// Has returns whether a value equal to val is present.
func (r *Tree[V]) Has(val V) bool {
	return r.find(val) != 0
}

// Get returns the stored value equal to val.
func (r *Tree[V]) Get(val V) (V, bool) {
	if nodeIndex := r.find(val); nodeIndex != 0 {
		return r.nodes[nodeIndex].Val, true
	}
	var zero V
	return zero, false
}

// Min returns the smallest value, ok is false when the tree is empty.
func (r *Tree[V]) Min() (V, bool) {
	if nodeIndex := r.minNode(r.root); nodeIndex != 0 {
		return r.nodes[nodeIndex].Val, true
	}
	var zero V
	return zero, false
}

// Max returns the largest value, ok is false when the tree is empty.
func (r *Tree[V]) Max() (V, bool) {
	if nodeIndex := r.maxNode(r.root); nodeIndex != 0 {
		return r.nodes[nodeIndex].Val, true
	}
	var zero V
	return zero, false
}

// Height returns the height of the tree, 0 when empty.
func (r *Tree[V]) Height() int {
	return r.height(r.root)
}

// All returns an iterator over the values in ascending order. The tree must
// not be modified during the iteration.
func (r *Tree[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for nodeIndex := r.minNode(r.root); nodeIndex != 0; nodeIndex = r.successor(nodeIndex) {
			if !yield(r.nodes[nodeIndex].Val) {
				return
			}
		}
	}
}

// Backward returns an iterator over the values in descending order.
func (r *Tree[V]) Backward() iter.Seq[V] {
	return func(yield func(V) bool) {
		for nodeIndex := r.maxNode(r.root); nodeIndex != 0; nodeIndex = r.predecessor(nodeIndex) {
			if !yield(r.nodes[nodeIndex].Val) {
				return
			}
		}
	}
}

// Values returns the values in ascending order.
func (r *Tree[V]) Values() []V {
	out := make([]V, 0, r.size)
	for v := range r.All() {
		out = append(out, v)
	}
	return out
}

// note: this is only used for unit testing
// nolint
func (r *Tree[V]) PrintNodes() {
	for id, n := range r.nodes[1:] {
		fmt.Println("node", id+1, n)
	}
}
