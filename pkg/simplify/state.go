package simplify

import (
	"fmt"
	"io"
)

func (s *Simplifier) checkState() {
	if s.Debug {
		s.CheckState()
	}
}

// CheckState panics unless the internal invariants hold: every chain is
// strictly ordered with non-overlapping segments, and the arena accounting
// matches the collections exactly — live segments equal the chains plus the
// queued fragments, live overlap records equal the overlap index, and live
// avl nodes equal both maps together.
func (s *Simplifier) CheckState() {
	totalSegments := 0

	for j := range s.ancestorMap {
		for u := s.ancestorMap[j]; u != nil; u = u.next {
			doAssert(u.left < u.right)

			if u.next != nil {
				doAssert(u.right <= u.next.left)
			}

			totalSegments++
		}
	}

	totalAvlNodes := s.mergeQueue.Count()

	for node := s.mergeQueue.Head(); node != nil; node = node.Next() {
		for u := node.Item.(*Segment); u != nil; u = u.next {
			doAssert(u.left < u.right)

			if u.next != nil {
				doAssert(u.right <= u.next.left)
			}

			totalSegments++
		}
	}

	totalAvlNodes += s.overlapCounts.Count()

	doAssert(totalSegments == s.segmentPool.NumAllocated())
	doAssert(totalAvlNodes == s.avlNodePool.NumAllocated())
	doAssert(s.overlapCounts.Count() == s.overlapPool.NumAllocated())
}

func printSegmentChain(w io.Writer, head *Segment) {
	for u := head; u != nil; u = u.next {
		fmt.Fprintf(w, "(%f,%f->%d)", u.left, u.right, u.node)
	}
}

// PrintState writes a diagnostic dump of the whole simplifier state to w.
func (s *Simplifier) PrintState(w io.Writer) {
	fmt.Fprintf(w, "--simplifier state--\n")
	fmt.Fprintf(w, "===\nInput nodes\n===\n")
	s.inputNodes.PrintState(w)
	fmt.Fprintf(w, "===\nOutput tables\n===\n")
	s.nodes.PrintState(w)
	s.edgesets.PrintState(w)
	s.sites.PrintState(w)
	s.mutations.PrintState(w)

	fmt.Fprintf(w, "===\nmemory pools\n===\n")
	fmt.Fprintf(w, "segments: %d allocated, %d blocks\n",
		s.segmentPool.NumAllocated(), s.segmentPool.NumBlocks())
	fmt.Fprintf(w, "avl nodes: %d allocated, %d blocks\n",
		s.avlNodePool.NumAllocated(), s.avlNodePool.NumBlocks())
	fmt.Fprintf(w, "overlap counts: %d allocated, %d blocks\n",
		s.overlapPool.NumAllocated(), s.overlapPool.NumBlocks())

	fmt.Fprintf(w, "===\nancestors\n===\n")

	for j := range s.ancestorMap {
		if s.ancestorMap[j] == nil {
			continue
		}

		fmt.Fprintf(w, "%d:\t", j)
		printSegmentChain(w, s.ancestorMap[j])
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "===\nmerge queue\n===\n")

	for node := s.mergeQueue.Head(); node != nil; node = node.Next() {
		printSegmentChain(w, node.Item.(*Segment))
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "===\noverlap counts\n===\n")

	for node := s.overlapCounts.Head(); node != nil; node = node.Next() {
		oc := node.Item.(*overlapCount)
		fmt.Fprintf(w, "%f -> %d\n", oc.start, oc.count)
	}
}
