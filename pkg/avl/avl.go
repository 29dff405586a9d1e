// Package avl implements an intrusive AVL tree ordered by a caller-supplied
// comparator. Nodes are allocated by the caller (typically from an arena
// pool) and carry an opaque item payload, so one node type serves maps over
// different payloads. The tree threads every node into a doubly linked
// in-order list: Head/Next give O(1) stepping, and an unlinked node keeps
// its next/prev pointers so callers may continue an iteration across
// unlinks.
package avl

// Node is one tree node. The caller owns its storage; Item points at the
// payload the comparator understands.
type Node struct {
	Item any

	next, prev  *Node
	parent      *Node
	left, right *Node
	balance     int8
}

// Next returns the in-order successor, or nil at the end. After UnlinkNode
// it still returns the former successor.
func (n *Node) Next() *Node {
	return n.next
}

// Prev returns the in-order predecessor, or nil at the start. After
// UnlinkNode it still returns the former predecessor.
func (n *Node) Prev() *Node {
	return n.prev
}

// Relation of a SearchClosest result node to the key.
const (
	// RelBefore means the node's item orders before the key.
	RelBefore = -1
	// RelEqual means the node's item equals the key.
	RelEqual = 0
	// RelAfter means the node's item orders after the key.
	RelAfter = 1
)

// Tree is an ordered map over caller-allocated nodes.
type Tree struct {
	root  *Node
	head  *Node
	tail  *Node
	count int
	cmp   func(a, b any) int
}

// New creates a tree ordered by cmp.
func New(cmp func(a, b any) int) *Tree {
	t := &Tree{}
	t.Init(cmp)

	return t
}

// Init prepares an embedded tree value for use.
func (t *Tree) Init(cmp func(a, b any) int) {
	t.root = nil
	t.head = nil
	t.tail = nil
	t.count = 0
	t.cmp = cmp
}

// Count returns the number of nodes in the tree.
func (t *Tree) Count() int {
	return t.count
}

// Head returns the smallest node, or nil when the tree is empty.
func (t *Tree) Head() *Node {
	return t.head
}

// Tail returns the largest node, or nil when the tree is empty.
func (t *Tree) Tail() *Node {
	return t.tail
}

// InsertNode places n into the tree. The node's Item must be set. Returns
// false without modifying the tree when an equal item is already present.
func (t *Tree) InsertNode(n *Node) bool {
	n.parent = nil
	n.left = nil
	n.right = nil
	n.balance = 0

	if t.root == nil {
		t.root = n
		t.head = n
		t.tail = n
		n.next = nil
		n.prev = nil
		t.count++

		return true
	}

	cur := t.root

	for {
		c := t.cmp(n.Item, cur.Item)
		if c == 0 {
			return false
		}

		if c < 0 {
			if cur.left == nil {
				cur.left = n
				n.parent = cur
				t.listInsertBefore(n, cur)

				break
			}

			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				n.parent = cur
				t.listInsertAfter(n, cur)

				break
			}

			cur = cur.right
		}
	}

	t.count++
	t.retraceInsert(n)

	return true
}

// Search returns the node whose item equals key, or nil.
func (t *Tree) Search(key any) *Node {
	cur := t.root

	for cur != nil {
		c := t.cmp(key, cur.Item)
		if c == 0 {
			return cur
		}

		if c < 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	return nil
}

// SearchClosest returns the node nearest to key together with its relation:
// RelEqual on an exact match, RelBefore when the returned node orders before
// the key, RelAfter when it orders after. Callers wanting the inclusive
// predecessor step to Prev() on RelAfter. Returns (nil, RelEqual) on an
// empty tree.
func (t *Tree) SearchClosest(key any) (*Node, int) {
	cur := t.root
	if cur == nil {
		return nil, RelEqual
	}

	for {
		c := t.cmp(key, cur.Item)
		if c == 0 {
			return cur, RelEqual
		}

		if c < 0 {
			if cur.left == nil {
				return cur, RelAfter
			}

			cur = cur.left
		} else {
			if cur.right == nil {
				return cur, RelBefore
			}

			cur = cur.right
		}
	}
}

// UnlinkNode removes n from the tree. The node's own next/prev pointers are
// left intact so an in-order iteration may step past it afterwards; its
// former neighbours no longer point back at it.
func (t *Tree) UnlinkNode(n *Node) {
	t.listRemove(n)

	if n.left != nil && n.right != nil {
		t.swapWithSuccessor(n)
	}

	// n now has at most one child.
	child := n.left
	if child == nil {
		child = n.right
	}

	parent := n.parent
	wasLeft := parent != nil && parent.left == n

	t.replaceChild(parent, n, child)

	if parent != nil {
		t.retraceDelete(parent, wasLeft)
	}

	n.parent = nil
	n.left = nil
	n.right = nil
	n.balance = 0
	t.count--
}

// listInsertBefore threads n immediately before pos.
func (t *Tree) listInsertBefore(n, pos *Node) {
	n.prev = pos.prev
	n.next = pos

	if pos.prev != nil {
		pos.prev.next = n
	} else {
		t.head = n
	}

	pos.prev = n
}

// listInsertAfter threads n immediately after pos.
func (t *Tree) listInsertAfter(n, pos *Node) {
	n.next = pos.next
	n.prev = pos

	if pos.next != nil {
		pos.next.prev = n
	} else {
		t.tail = n
	}

	pos.next = n
}

// listRemove splices n's neighbours around it without clearing n's own
// pointers.
func (t *Tree) listRemove(n *Node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		t.head = n.next
	}

	if n.next != nil {
		n.next.prev = n.prev
	} else {
		t.tail = n.prev
	}
}

// replaceChild points parent's link for old at repl (either may be the
// root).
func (t *Tree) replaceChild(parent, old, repl *Node) {
	if parent == nil {
		t.root = repl
	} else if parent.left == old {
		parent.left = repl
	} else {
		parent.right = repl
	}

	if repl != nil {
		repl.parent = parent
	}
}

// swapWithSuccessor exchanges n with the leftmost node of its right subtree
// so n ends up with at most one child. Only tree structure is touched; the
// in-order list has already been spliced.
func (t *Tree) swapWithSuccessor(n *Node) {
	succ := n.right
	for succ.left != nil {
		succ = succ.left
	}

	n.balance, succ.balance = succ.balance, n.balance

	if succ.parent == n {
		// succ is n's direct right child.
		t.replaceChild(n.parent, n, succ)

		n.right = succ.right
		if n.right != nil {
			n.right.parent = n
		}

		succ.right = n
		n.parent = succ
	} else {
		succParent := succ.parent

		t.replaceChild(n.parent, n, succ)

		succParent.left = n
		n.parent = succParent

		n.right, succ.right = succ.right, n.right
		if n.right != nil {
			n.right.parent = n
		}

		succ.right.parent = succ
	}

	succ.left = n.left
	succ.left.parent = succ
	n.left = nil
}

// rotateLeft rotates the subtree rooted at x to the left and returns the new
// subtree root. Balance factors are the caller's responsibility.
func (t *Tree) rotateLeft(x *Node) *Node {
	y := x.right

	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}

	t.replaceChild(x.parent, x, y)

	y.left = x
	x.parent = y

	return y
}

// rotateRight rotates the subtree rooted at x to the right and returns the
// new subtree root.
func (t *Tree) rotateRight(x *Node) *Node {
	y := x.left

	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}

	t.replaceChild(x.parent, x, y)

	y.right = x
	x.parent = y

	return y
}

// retraceInsert walks up from the freshly inserted node restoring the AVL
// balance. Balance factors follow the height(right) - height(left)
// convention.
func (t *Tree) retraceInsert(n *Node) {
	child := n

	for parent := n.parent; parent != nil; parent = child.parent {
		if parent.left == child {
			parent.balance--
		} else {
			parent.balance++
		}

		switch parent.balance {
		case 0:
			return
		case -1, 1:
			child = parent

			continue
		case -2:
			t.fixLeftHeavyInsert(parent)

			return
		case 2:
			t.fixRightHeavyInsert(parent)

			return
		}
	}
}

func (t *Tree) fixLeftHeavyInsert(parent *Node) {
	child := parent.left

	if child.balance == -1 {
		t.rotateRight(parent)
		parent.balance = 0
		child.balance = 0

		return
	}

	// Left-right shape.
	grand := child.right
	t.rotateLeft(child)
	t.rotateRight(parent)

	switch grand.balance {
	case -1:
		child.balance = 0
		parent.balance = 1
	case 1:
		child.balance = -1
		parent.balance = 0
	default:
		child.balance = 0
		parent.balance = 0
	}

	grand.balance = 0
}

func (t *Tree) fixRightHeavyInsert(parent *Node) {
	child := parent.right

	if child.balance == 1 {
		t.rotateLeft(parent)
		parent.balance = 0
		child.balance = 0

		return
	}

	// Right-left shape.
	grand := child.left
	t.rotateRight(child)
	t.rotateLeft(parent)

	switch grand.balance {
	case 1:
		child.balance = 0
		parent.balance = -1
	case -1:
		child.balance = 1
		parent.balance = 0
	default:
		child.balance = 0
		parent.balance = 0
	}

	grand.balance = 0
}

// retraceDelete walks up from parent after the subtree on the side given by
// wasLeft shrank by one.
func (t *Tree) retraceDelete(parent *Node, wasLeft bool) {
	for parent != nil {
		if wasLeft {
			parent.balance++
		} else {
			parent.balance--
		}

		var subRoot *Node

		switch parent.balance {
		case -1, 1:
			// Height of this subtree is unchanged.
			return
		case 0:
			subRoot = parent
		case 2:
			var stop bool

			subRoot, stop = t.fixRightHeavyDelete(parent)
			if stop {
				return
			}
		case -2:
			var stop bool

			subRoot, stop = t.fixLeftHeavyDelete(parent)
			if stop {
				return
			}
		}

		// The subtree shrank; continue from its root upwards.
		parent = subRoot.parent
		if parent != nil {
			wasLeft = parent.left == subRoot
		}
	}
}

func (t *Tree) fixRightHeavyDelete(parent *Node) (subRoot *Node, stop bool) {
	sib := parent.right

	if sib.balance >= 0 {
		t.rotateLeft(parent)

		if sib.balance == 0 {
			sib.balance = -1
			parent.balance = 1

			return sib, true
		}

		sib.balance = 0
		parent.balance = 0

		return sib, false
	}

	grand := sib.left
	gb := grand.balance
	t.rotateRight(sib)
	t.rotateLeft(parent)

	switch gb {
	case 1:
		parent.balance = -1
		sib.balance = 0
	case -1:
		parent.balance = 0
		sib.balance = 1
	default:
		parent.balance = 0
		sib.balance = 0
	}

	grand.balance = 0

	return grand, false
}

func (t *Tree) fixLeftHeavyDelete(parent *Node) (subRoot *Node, stop bool) {
	sib := parent.left

	if sib.balance <= 0 {
		t.rotateRight(parent)

		if sib.balance == 0 {
			sib.balance = 1
			parent.balance = -1

			return sib, true
		}

		sib.balance = 0
		parent.balance = 0

		return sib, false
	}

	grand := sib.right
	gb := grand.balance
	t.rotateLeft(sib)
	t.rotateRight(parent)

	switch gb {
	case -1:
		parent.balance = 1
		sib.balance = 0
	case 1:
		parent.balance = 0
		sib.balance = -1
	default:
		parent.balance = 0
		sib.balance = 0
	}

	grand.balance = 0

	return grand, false
}
