package tree

type treeNode[V any] struct {
	Left   uint // left node index: 0 for not set
	Right  uint // right node index: 0 for not set
	Parent uint // parent node index: 0 for the root
	Height int
	Val    V
}

func (r *Tree[V]) height(nodeIndex uint) int {
	if nodeIndex == 0 {
		return 0
	}
	return r.nodes[nodeIndex].Height
}

func (r *Tree[V]) balance(nodeIndex uint) int {
	node := &r.nodes[nodeIndex]
	return r.height(node.Left) - r.height(node.Right)
}

func (r *Tree[V]) updateHeight(nodeIndex uint) {
	node := &r.nodes[nodeIndex]
	l, rr := r.height(node.Left), r.height(node.Right)
	if l > rr {
		node.Height = l + 1
	} else {
		node.Height = rr + 1
	}
}

func (r *Tree[V]) setLeft(nodeIndex, child uint) {
	r.nodes[nodeIndex].Left = child
	if child != 0 {
		r.nodes[child].Parent = nodeIndex
	}
}

func (r *Tree[V]) setRight(nodeIndex, child uint) {
	r.nodes[nodeIndex].Right = child
	if child != 0 {
		r.nodes[child].Parent = nodeIndex
	}
}

// rotateRight lifts the left child of nodeIndex into its place and returns
// the new subtree root.
//
//	    n            l
//	   / \          / \
//	  l   c   =>   a   n
//	 / \              / \
//	a   b            b   c
func (r *Tree[V]) rotateRight(nodeIndex uint) uint {
	l := r.nodes[nodeIndex].Left
	parent := r.nodes[nodeIndex].Parent
	r.setLeft(nodeIndex, r.nodes[l].Right)
	r.setRight(l, nodeIndex)
	r.nodes[l].Parent = parent
	r.updateHeight(nodeIndex)
	r.updateHeight(l)
	return l
}

// rotateLeft is the mirror of rotateRight.
func (r *Tree[V]) rotateLeft(nodeIndex uint) uint {
	rc := r.nodes[nodeIndex].Right
	parent := r.nodes[nodeIndex].Parent
	r.setRight(nodeIndex, r.nodes[rc].Left)
	r.setLeft(rc, nodeIndex)
	r.nodes[rc].Parent = parent
	r.updateHeight(nodeIndex)
	r.updateHeight(rc)
	return rc
}

// rebalance restores the AVL property at nodeIndex, whose subtrees are
// already balanced, and returns the new subtree root.
func (r *Tree[V]) rebalance(nodeIndex uint) uint {
	r.updateHeight(nodeIndex)
	switch b := r.balance(nodeIndex); {
	case b > 1:
		if r.balance(r.nodes[nodeIndex].Left) < 0 {
			r.setLeft(nodeIndex, r.rotateLeft(r.nodes[nodeIndex].Left))
		}
		return r.rotateRight(nodeIndex)
	case b < -1:
		if r.balance(r.nodes[nodeIndex].Right) > 0 {
			r.setRight(nodeIndex, r.rotateRight(r.nodes[nodeIndex].Right))
		}
		return r.rotateLeft(nodeIndex)
	}
	return nodeIndex
}

// create a new node in the tree, return its index
func (r *Tree[V]) newNode(val V) uint {
	availCount := len(r.availableIndexes)
	if availCount > 0 {
		index := r.availableIndexes[availCount-1]
		r.availableIndexes = r.availableIndexes[:availCount-1]
		r.nodes[index] = treeNode[V]{Height: 1, Val: val}
		return index
	}

	r.nodes = append(r.nodes, treeNode[V]{Height: 1, Val: val})
	return uint(len(r.nodes) - 1)
}

func (r *Tree[V]) freeNode(nodeIndex uint) {
	r.nodes[nodeIndex] = treeNode[V]{}
	r.availableIndexes = append(r.availableIndexes, nodeIndex)
}

func (r *Tree[V]) minNode(nodeIndex uint) uint {
	for nodeIndex != 0 && r.nodes[nodeIndex].Left != 0 {
		nodeIndex = r.nodes[nodeIndex].Left
	}
	return nodeIndex
}

func (r *Tree[V]) maxNode(nodeIndex uint) uint {
	for nodeIndex != 0 && r.nodes[nodeIndex].Right != 0 {
		nodeIndex = r.nodes[nodeIndex].Right
	}
	return nodeIndex
}

// successor returns the in-order successor of nodeIndex, 0 if there is none.
func (r *Tree[V]) successor(nodeIndex uint) uint {
	if right := r.nodes[nodeIndex].Right; right != 0 {
		return r.minNode(right)
	}
	parent := r.nodes[nodeIndex].Parent
	for parent != 0 && r.nodes[parent].Right == nodeIndex {
		nodeIndex = parent
		parent = r.nodes[parent].Parent
	}
	return parent
}

// predecessor returns the in-order predecessor of nodeIndex, 0 if there is none.
func (r *Tree[V]) predecessor(nodeIndex uint) uint {
	if left := r.nodes[nodeIndex].Left; left != 0 {
		return r.maxNode(left)
	}
	parent := r.nodes[nodeIndex].Parent
	for parent != 0 && r.nodes[parent].Left == nodeIndex {
		nodeIndex = parent
		parent = r.nodes[parent].Parent
	}
	return parent
}
