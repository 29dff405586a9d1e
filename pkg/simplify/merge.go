package simplify

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/treeseq/pkg/avl"
	"github.com/Sumatoshi-tech/treeseq/pkg/safeconv"
	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

// removeAncestry extracts the portion of inputID's chain overlapping
// [left, right) and enqueues it for merging at the current parent. The
// remainder of the chain, including any split-off overhangs, stays in the
// ancestor map.
func (s *Simplifier) removeAncestry(left, right float64, inputID tables.NodeID) error {
	x := s.ancestorMap[inputID]
	head := x

	var last, xPrev *Segment

	// Skip the leading segments before left.
	for x != nil && x.right <= left {
		last = x
		x = x.next
	}

	if x != nil && x.left < left {
		// The left edge of x overhangs. Keep a new segment for the excess.
		y, err := s.allocSegment(x.left, left, x.node, nil)
		if err != nil {
			return err
		}

		x.left = left

		if last != nil {
			last.next = y
		}

		if x == head {
			head = y
		}

		last = y
	}

	if x != nil && x.left < right {
		// x is the first segment inside the target interval; its chain tail
		// goes to the merge queue.
		if err := s.enqueue(x); err != nil {
			return err
		}

		for x != nil && x.right <= right {
			xPrev = x
			x = x.next
		}

		if x != nil && x.left < right {
			// Right-hand overhang: keep the excess, terminate the extracted
			// chain at right.
			y, err := s.allocSegment(right, x.right, x.node, x.next)
			if err != nil {
				return err
			}

			x.right = right
			x.next = nil
			x = y
		} else if xPrev != nil {
			xPrev.next = nil
		}
	}

	// x is the first segment of the remainder chain after right.
	if last == nil {
		head = x
	} else {
		last.next = x
	}

	s.ancestorMap[inputID] = head

	return nil
}

// mergeAncestors resolves every chain queued at the current parent into a
// new ancestor chain for inputID, recording an output node at the first
// coalescence and emitting edgesets for each coalesced interval.
func (s *Simplifier) mergeAncestors(inputID tables.NodeID) error {
	coalescence := false

	var z *Segment

	queue := s.mergeQueue

	for queue.Count() > 0 {
		// Gather the chains sharing the minimum left coordinate.
		s.segmentBuf = s.segmentBuf[:0]

		node := queue.Head()
		l := node.Item.(*Segment).left
		rMax := s.sequenceLength

		for node != nil && node.Item.(*Segment).left == l {
			head := node.Item.(*Segment)
			s.segmentBuf = append(s.segmentBuf, head)
			rMax = min(rMax, head.right)

			queue.UnlinkNode(node)
			s.avlNodePool.Free(node)
			node = node.Next()
		}

		h := len(s.segmentBuf)
		nextInQueue := node

		if nextInQueue != nil {
			rMax = min(rMax, nextInQueue.Item.(*Segment).left)
		}

		var alpha *Segment

		if h == 1 {
			var err error

			alpha, err = s.mergeSingle(nextInQueue)
			if err != nil {
				return err
			}
		} else {
			if !coalescence {
				coalescence = true

				if err := s.recordNode(inputID); err != nil {
					return err
				}
			}

			var err error

			alpha, err = s.mergeCoalescent(l, rMax)
			if err != nil {
				return err
			}
		}

		// Integrate alpha into the new chain.
		if alpha != nil {
			if z == nil {
				s.ancestorMap[inputID] = alpha
			} else {
				z.next = alpha
			}

			z = alpha
		}
	}

	return nil
}

// mergeSingle handles an interval covered by exactly one chain: no
// coalescence, the chain's leading segment (clipped at the next queue left,
// if that falls inside it) continues as part of the new ancestor chain.
func (s *Simplifier) mergeSingle(nextInQueue *avl.Node) (*Segment, error) {
	x := s.segmentBuf[0]

	var alpha *Segment

	if nextInQueue != nil && nextInQueue.Item.(*Segment).left < x.right {
		nextL := nextInQueue.Item.(*Segment).left

		var err error

		alpha, err = s.allocSegment(x.left, nextL, x.node, nil)
		if err != nil {
			return nil, err
		}

		x.left = nextL
	} else {
		alpha = x
		x = x.next
		alpha.next = nil
	}

	if x != nil {
		if err := s.enqueue(x); err != nil {
			return nil, err
		}
	}

	return alpha, nil
}

// mergeCoalescent handles an interval covered by h >= 2 chains: the overlap
// index is advanced to find the right end r of the coalesced interval, the
// gathered chains are trimmed to r and re-queued, and the parent→children
// edgeset over [l, r) is recorded. No new segment is produced when the
// interval has fully coalesced.
func (s *Simplifier) mergeCoalescent(l, rMax float64) (*Segment, error) {
	h := len(s.segmentBuf)
	v := tables.NodeID(s.nodes.NumRows() - 1)

	// Materialize overlap boundaries at both ends, if absent.
	search := overlapCount{start: l}
	if s.overlapCounts.Search(&search) == nil {
		if err := s.copyOverlapCount(l); err != nil {
			return nil, err
		}
	}

	search.start = rMax
	if s.overlapCounts.Search(&search) == nil {
		if err := s.copyOverlapCount(rMax); err != nil {
			return nil, err
		}
	}

	search.start = l
	node := s.overlapCounts.Search(&search)
	doAssert(node != nil)

	oc := node.Item.(*overlapCount)

	var (
		r     float64
		alpha *Segment
	)

	hCount := safeconv.MustIntToUint32(h)

	if oc.count == hCount {
		// Everything overlapping here is represented in the queue: the
		// interval has fully coalesced and needs no further ancestry above
		// the new node.
		oc.count = 0
		node = node.Next()
		doAssert(node != nil)
		r = node.Item.(*overlapCount).start
	} else {
		r = l

		for oc.count != hCount && r < rMax {
			oc.count -= hCount - 1
			node = node.Next()
			doAssert(node != nil)
			oc = node.Item.(*overlapCount)
			r = oc.start
		}

		var err error

		alpha, err = s.allocSegment(l, r, v, nil)
		if err != nil {
			return nil, err
		}
	}

	// Collect the children, trim the gathered chains to r and requeue the
	// remainders.
	s.childrenBuf = s.childrenBuf[:0]

	for _, x := range s.segmentBuf {
		s.childrenBuf = append(s.childrenBuf, x.node)

		if x.right == r {
			s.freeSegment(x)
			x = x.next
		} else if x.right > r {
			x.left = r
		}

		if x != nil {
			if err := s.enqueue(x); err != nil {
				return nil, err
			}
		}
	}

	if err := s.recordEdgeset(l, r, v, s.childrenBuf); err != nil {
		return nil, err
	}

	return alpha, nil
}

// recordEdgeset buffers the edgeset [left, right) parent→children, squashing
// it into the pending row when they abut with identical parent and
// children. Children are sorted ascending first.
func (s *Simplifier) recordEdgeset(left, right float64, parent tables.NodeID, children []tables.NodeID) error {
	slices.Sort(children)

	if len(s.last.children) > 0 {
		squash := s.last.right == left && s.last.parent == parent &&
			slices.Equal(s.last.children, children)

		if squash {
			s.last.right = right

			return nil
		}

		if err := s.flushLastEdgeset(); err != nil {
			return err
		}
	}

	s.last.left = left
	s.last.right = right
	s.last.parent = parent
	s.last.children = append(s.last.children[:0], children...)

	return nil
}

// flushLastEdgeset writes the pending squash buffer, if any, to the output
// table.
func (s *Simplifier) flushLastEdgeset() error {
	if len(s.last.children) == 0 {
		return nil
	}

	err := s.edgesets.AddRow(s.last.left, s.last.right, s.last.parent, s.last.children)
	if err != nil {
		return fmt.Errorf("record edgeset: %w", err)
	}

	s.last.children = s.last.children[:0]

	return nil
}
