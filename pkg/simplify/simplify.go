// Package simplify reduces a tree sequence to the minimal set of nodes and
// edgesets describing the ancestry of a chosen sample set. Input edgesets
// are streamed in parent-time order; each input node owns a linked chain of
// genomic segments labelled with output node ids, and chains queued at a
// common parent are merged through an ordered priority queue plus an
// overlap-count index. All per-run small objects come from arena pools.
package simplify

import (
	"fmt"

	"github.com/Sumatoshi-tech/treeseq/pkg/arena"
	"github.com/Sumatoshi-tech/treeseq/pkg/avl"
	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

// Segment is one half-open genomic interval [left, right) of an ancestor's
// chain. The node field names the output node this interval currently maps
// to.
type Segment struct {
	left  float64
	right float64
	node  tables.NodeID
	next  *Segment
}

// overlapCount is one step of the function mapping genome coordinates to the
// number of ancestral segments overlapping there: count holds on
// [start, nextStart).
type overlapCount struct {
	start float64
	count uint32
}

// cmpSegmentQueue orders merge-queue chains by left coordinate, breaking
// ties with the output node id.
func cmpSegmentQueue(a, b any) int {
	sa := a.(*Segment)
	sb := b.(*Segment)

	ret := boolToInt(sa.left > sb.left) - boolToInt(sa.left < sb.left)
	if ret == 0 {
		ret = boolToInt(sa.node > sb.node) - boolToInt(sa.node < sb.node)
	}

	return ret
}

func cmpOverlapCount(a, b any) int {
	oa := a.(*overlapCount)
	ob := b.(*overlapCount)

	return boolToInt(oa.start > ob.start) - boolToInt(oa.start < ob.start)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

func doAssert(condition bool) {
	if !condition {
		panic("simplify internal assertion failed")
	}
}

// lastEdgeset buffers the most recently produced output row so abutting rows
// with identical parent and children squash into one. An empty children
// slice means no row is pending.
type lastEdgeset struct {
	left     float64
	right    float64
	parent   tables.NodeID
	children []tables.NodeID
}

// Simplifier holds the state of one simplification run. Create with New,
// drive with Run, release with Free. A Simplifier exclusively owns its
// arenas and maps; the tables are borrowed for the run's lifetime.
type Simplifier struct {
	// Debug enables the internal state checks at every mutation point.
	// Meant for tests; the checks are quadratic.
	Debug bool

	samples        []tables.NodeID
	sequenceLength float64
	flags          uint32

	nodes      *tables.NodeTable
	edgesets   *tables.EdgesetTable
	migrations *tables.MigrationTable
	sites      *tables.SiteTable
	mutations  *tables.MutationTable

	// Defensive copies of the input: the output tables are reset and
	// refilled in place while the originals are read.
	inputNodes    *tables.NodeTable
	inputEdgesets *tables.EdgesetTable

	nodeNameOffset []int

	ancestorMap []*Segment

	segmentPool *arena.Pool[Segment]
	avlNodePool *arena.Pool[avl.Node]
	overlapPool *arena.Pool[overlapCount]

	mergeQueue    *avl.Tree
	overlapCounts *avl.Tree

	last        lastEdgeset
	childrenBuf []tables.NodeID
	segmentBuf  []*Segment
}

// New validates the inputs and prepares a run: the output node table is
// reset and seeded with one node per sample, each sample's ancestry starts
// as a single segment spanning the whole sequence, and the overlap index is
// seeded with its two sentinels. The sites and mutations tables are reset.
func New(nodes *tables.NodeTable, edgesets *tables.EdgesetTable, migrations *tables.MigrationTable,
	sites *tables.SiteTable, mutations *tables.MutationTable,
	samples []tables.NodeID, sequenceLength float64, flags uint32,
) (*Simplifier, error) {
	if nodes == nil || edgesets == nil || sites == nil || mutations == nil {
		return nil, fmt.Errorf("simplifier tables: %w", tables.ErrBadParam)
	}

	if len(samples) < 2 || nodes.NumRows() == 0 || edgesets.NumRows() == 0 {
		return nil, fmt.Errorf("simplifier inputs: %w", tables.ErrBadParam)
	}

	s := &Simplifier{
		samples:        samples,
		sequenceLength: sequenceLength,
		flags:          flags,
		nodes:          nodes,
		edgesets:       edgesets,
		migrations:     migrations,
		sites:          sites,
		mutations:      mutations,
	}

	if err := s.copyInputs(); err != nil {
		return nil, err
	}

	s.nodes.Reset()

	// Prefix sums into the packed name payload, so output rows can copy
	// names without re-walking the table.
	s.nodeNameOffset = make([]int, s.inputNodes.NumRows())

	offset := 0
	for j := range s.inputNodes.NumRows() {
		s.nodeNameOffset[j] = offset
		offset += int(s.inputNodes.NameLength[j])
	}

	// The number of input edgesets is a reasonable first guess for every
	// pool.
	blockSize := s.inputEdgesets.NumRows()

	var err error

	s.segmentPool, err = arena.New[Segment](blockSize, nil)
	if err != nil {
		return nil, fmt.Errorf("segment pool: %w", err)
	}

	s.avlNodePool, err = arena.New[avl.Node](blockSize, nil)
	if err != nil {
		return nil, fmt.Errorf("avl node pool: %w", err)
	}

	s.overlapPool, err = arena.New[overlapCount](blockSize, nil)
	if err != nil {
		return nil, fmt.Errorf("overlap count pool: %w", err)
	}

	s.mergeQueue = avl.New(cmpSegmentQueue)
	s.overlapCounts = avl.New(cmpOverlapCount)

	s.ancestorMap = make([]*Segment, s.inputNodes.NumRows())

	if err := s.initSamples(); err != nil {
		return nil, err
	}

	s.childrenBuf = make([]tables.NodeID, 0, len(samples))
	s.segmentBuf = make([]*Segment, 0, len(samples))

	if err := s.insertOverlapCount(0, uint32(len(samples))); err != nil {
		return nil, err
	}

	// The sentinel past the genome end keeps the overlap walk from running
	// off the index.
	if err := s.insertOverlapCount(sequenceLength, uint32(len(samples))+1); err != nil {
		return nil, err
	}

	s.sites.Reset()
	s.mutations.Reset()

	return s, nil
}

// Free releases the arenas. The simplifier must not be used afterwards.
func (s *Simplifier) Free() {
	s.segmentPool.Release()
	s.avlNodePool.Release()
	s.overlapPool.Release()
	s.ancestorMap = nil
	s.inputNodes = nil
	s.inputEdgesets = nil
}

func (s *Simplifier) copyInputs() error {
	inputNodes, err := tables.NewNodeTable(max(s.nodes.NumRows(), 1), s.nodes.TotalNameLength()+1)
	if err != nil {
		return err
	}

	setErr := inputNodes.SetColumns(s.nodes.Flags, s.nodes.Time, s.nodes.Population,
		s.nodes.Name, s.nodes.NameLength)
	if setErr != nil {
		return fmt.Errorf("copy input nodes: %w", setErr)
	}

	inputEdgesets, err := tables.NewEdgesetTable(max(s.edgesets.NumRows(), 1),
		s.edgesets.TotalChildrenLength()+1)
	if err != nil {
		return err
	}

	setErr = inputEdgesets.SetColumns(s.edgesets.Left, s.edgesets.Right, s.edgesets.Parent,
		s.edgesets.Children, s.edgesets.ChildrenLength)
	if setErr != nil {
		return fmt.Errorf("copy input edgesets: %w", setErr)
	}

	s.inputNodes = inputNodes
	s.inputEdgesets = inputEdgesets

	return nil
}

func (s *Simplifier) initSamples() error {
	for _, sample := range s.samples {
		if sample < 0 || int(sample) >= s.inputNodes.NumRows() {
			return fmt.Errorf("sample %d: %w", sample, tables.ErrOutOfBounds)
		}

		if s.inputNodes.Flags[sample]&tables.NodeIsSample == 0 {
			return fmt.Errorf("sample %d: %w", sample, tables.ErrBadSamples)
		}

		if s.ancestorMap[sample] != nil {
			return fmt.Errorf("sample %d: %w", sample, tables.ErrDuplicateSample)
		}

		seg, err := s.allocSegment(0, s.sequenceLength, tables.NodeID(s.nodes.NumRows()), nil)
		if err != nil {
			return err
		}

		s.ancestorMap[sample] = seg

		if err := s.recordNode(sample); err != nil {
			return err
		}
	}

	return nil
}

// Run streams the input edgesets grouped by parent, removing each child's
// overlapped ancestry into the merge queue and merging the queue whenever
// the parent changes. The output edgeset table is rebuilt in place.
func (s *Simplifier) Run() error {
	s.edgesets.Reset()

	input := s.inputEdgesets
	numInput := input.NumRows()
	currentParent := input.Parent[0]
	childrenOffset := 0

	for j := range numInput {
		parent := input.Parent[j]
		left := input.Left[j]
		right := input.Right[j]
		children := input.ChildrenRow(j, childrenOffset)
		childrenOffset += len(children)

		if parent < 0 || int(parent) >= s.inputNodes.NumRows() {
			return fmt.Errorf("edgeset parent %d: %w", parent, tables.ErrOutOfBounds)
		}

		if parent != currentParent {
			s.checkState()

			if err := s.mergeAncestors(currentParent); err != nil {
				return err
			}

			doAssert(s.mergeQueue.Count() == 0)
			s.checkState()

			if s.inputNodes.Time[currentParent] > s.inputNodes.Time[parent] {
				return fmt.Errorf("parent %d before %d: %w", parent, currentParent,
					tables.ErrRecordsNotTimeSorted)
			}

			currentParent = parent
		}

		for _, child := range children {
			if child < 0 || int(child) >= len(s.ancestorMap) {
				return fmt.Errorf("edgeset child %d: %w", child, tables.ErrOutOfBounds)
			}

			if s.ancestorMap[child] == nil {
				continue
			}

			s.checkState()

			if err := s.removeAncestry(left, right, child); err != nil {
				return err
			}

			s.checkState()
		}
	}

	if err := s.mergeAncestors(currentParent); err != nil {
		return err
	}

	doAssert(s.mergeQueue.Count() == 0)
	s.checkState()

	return s.flushLastEdgeset()
}

func (s *Simplifier) allocSegment(left, right float64, node tables.NodeID, next *Segment) (*Segment, error) {
	seg, err := s.segmentPool.Alloc()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tables.ErrNoMemory, err)
	}

	seg.left = left
	seg.right = right
	seg.node = node
	seg.next = next

	return seg, nil
}

func (s *Simplifier) freeSegment(seg *Segment) {
	s.segmentPool.Free(seg)
}

// insertOverlapCount installs a step {start: x, count: v} into the overlap
// index.
func (s *Simplifier) insertOverlapCount(x float64, v uint32) error {
	node, err := s.avlNodePool.Alloc()
	if err != nil {
		return fmt.Errorf("%w: %v", tables.ErrNoMemory, err)
	}

	oc, err := s.overlapPool.Alloc()
	if err != nil {
		return fmt.Errorf("%w: %v", tables.ErrNoMemory, err)
	}

	oc.start = x
	oc.count = v
	node.Item = oc

	doAssert(s.overlapCounts.InsertNode(node))

	return nil
}

// copyOverlapCount materializes a breakpoint at x whose count is copied from
// the inclusive predecessor, leaving the step function unchanged.
func (s *Simplifier) copyOverlapCount(x float64) error {
	search := overlapCount{start: x}

	node, rel := s.overlapCounts.SearchClosest(&search)
	doAssert(node != nil)

	if rel == avl.RelAfter {
		node = node.Prev()
		doAssert(node != nil)
	}

	return s.insertOverlapCount(x, node.Item.(*overlapCount).count)
}

// recordNode appends the output node for the given input id, copying its
// row from the input node copy.
func (s *Simplifier) recordNode(inputID tables.NodeID) error {
	offset := s.nodeNameOffset[inputID]
	name := s.inputNodes.Name[offset : offset+int(s.inputNodes.NameLength[inputID])]

	_, err := s.nodes.AddRow(s.inputNodes.Flags[inputID], s.inputNodes.Time[inputID],
		s.inputNodes.Population[inputID], string(name))

	return err
}

// enqueue inserts a chain head into the merge queue.
func (s *Simplifier) enqueue(seg *Segment) error {
	doAssert(seg != nil)

	node, err := s.avlNodePool.Alloc()
	if err != nil {
		return fmt.Errorf("%w: %v", tables.ErrNoMemory, err)
	}

	node.Item = seg

	doAssert(s.mergeQueue.InsertNode(node))

	return nil
}
