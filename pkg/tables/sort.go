package tables

import (
	"fmt"
	"slices"
)

// edgesetSort carries one edgeset row with its parent time so the sort key
// (time, parent, left) can be applied in a single pass.
type edgesetSort struct {
	left     float64
	right    float64
	parent   NodeID
	children []NodeID
	time     float64
}

type siteSort struct {
	id             SiteID
	position       float64
	ancestralState []byte
}

type mutationSort struct {
	site         SiteID
	node         NodeID
	derivedState []byte
}

// cmpFloat64 is the three-way comparator (a>b)-(a<b); it never reports NaN
// orderings because table coordinates are finite.
func cmpFloat64(a, b float64) int {
	return boolToInt(a > b) - boolToInt(a < b)
}

func cmpNodeID(a, b NodeID) int {
	return boolToInt(a > b) - boolToInt(a < b)
}

func cmpSiteID(a, b SiteID) int {
	return boolToInt(a > b) - boolToInt(a < b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}

// tableSorter reorders the tables in place so the simplifier sees edgesets
// grouped by parent in non-decreasing time order, sites in position order and
// mutations in site order.
type tableSorter struct {
	nodes      *NodeTable
	edgesets   *EdgesetTable
	sites      *SiteTable
	mutations  *MutationTable
	migrations *MigrationTable

	siteIDMap []SiteID
}

// SortTables sorts edgesets by (parent time, parent, left) with each row's
// children ascending, sites by position, and mutations by their remapped site
// id. The migrations table is accepted for parity and left untouched. Sites
// and mutations are optional, but a site table requires a mutation table
// (even an empty one).
func SortTables(nodes *NodeTable, edgesets *EdgesetTable, migrations *MigrationTable,
	sites *SiteTable, mutations *MutationTable,
) error {
	if nodes == nil || edgesets == nil {
		return fmt.Errorf("sort tables: %w", ErrBadParam)
	}

	if sites != nil && mutations == nil {
		return fmt.Errorf("sort tables: site table without mutation table: %w", ErrBadParam)
	}

	sorter := tableSorter{
		nodes:      nodes,
		edgesets:   edgesets,
		sites:      sites,
		mutations:  mutations,
		migrations: migrations,
	}

	if err := sorter.sortEdgesets(); err != nil {
		return err
	}

	if sites == nil {
		return nil
	}

	sorter.sortSites()

	return sorter.sortMutations()
}

func (s *tableSorter) sortEdgesets() error {
	e := s.edgesets
	numRows := e.NumRows()
	rows := make([]edgesetSort, numRows)

	// The children payload is about to be rewritten in place, so each row
	// keeps its own copy.
	childrenMem := slices.Clone(e.Children)

	offset := 0
	for j := range numRows {
		length := int(e.ChildrenLength[j])
		rows[j] = edgesetSort{
			left:     e.Left[j],
			right:    e.Right[j],
			parent:   e.Parent[j],
			children: childrenMem[offset : offset+length],
		}
		offset += length

		if int(rows[j].parent) >= s.nodes.NumRows() || rows[j].parent < 0 {
			return fmt.Errorf("edgeset parent %d: %w", rows[j].parent, ErrOutOfBounds)
		}

		rows[j].time = s.nodes.Time[rows[j].parent]
	}

	slices.SortStableFunc(rows, func(a, b edgesetSort) int {
		if c := cmpFloat64(a.time, b.time); c != 0 {
			return c
		}

		if c := cmpNodeID(a.parent, b.parent); c != 0 {
			return c
		}

		return cmpFloat64(a.left, b.left)
	})

	offset = 0
	for j, row := range rows {
		e.Left[j] = row.left
		e.Right[j] = row.right
		e.Parent[j] = row.parent
		e.ChildrenLength[j] = uint16(len(row.children))

		slices.SortFunc(row.children, cmpNodeID)
		copy(e.Children[offset:], row.children)
		offset += len(row.children)
	}

	return nil
}

func (s *tableSorter) sortSites() {
	st := s.sites
	numRows := st.NumRows()
	rows := make([]siteSort, numRows)
	stateMem := slices.Clone(st.AncestralState)

	offset := 0
	for j := range numRows {
		length := int(st.AncestralStateLength[j])
		rows[j] = siteSort{
			id:             SiteID(j),
			position:       st.Position[j],
			ancestralState: stateMem[offset : offset+length],
		}
		offset += length
	}

	slices.SortStableFunc(rows, func(a, b siteSort) int {
		return cmpFloat64(a.position, b.position)
	})

	s.siteIDMap = make([]SiteID, numRows)

	offset = 0
	for j, row := range rows {
		s.siteIDMap[row.id] = SiteID(j)
		st.Position[j] = row.position
		st.AncestralStateLength[j] = uint32(len(row.ancestralState))
		copy(st.AncestralState[offset:], row.ancestralState)
		offset += len(row.ancestralState)
	}
}

func (s *tableSorter) sortMutations() error {
	m := s.mutations
	numRows := m.NumRows()
	rows := make([]mutationSort, numRows)
	stateMem := slices.Clone(m.DerivedState)

	offset := 0
	for j := range numRows {
		site := m.Site[j]
		if int(site) >= s.sites.NumRows() || site < 0 {
			return fmt.Errorf("mutation site %d: %w", site, ErrOutOfBounds)
		}

		node := m.Node[j]
		if int(node) >= s.nodes.NumRows() || node < 0 {
			return fmt.Errorf("mutation node %d: %w", node, ErrOutOfBounds)
		}

		length := int(m.DerivedStateLength[j])
		rows[j] = mutationSort{
			site:         s.siteIDMap[site],
			node:         node,
			derivedState: stateMem[offset : offset+length],
		}
		offset += length
	}

	// Mutations at the same site are an unordered set at this stage; the
	// stable sort keeps the input order within a site anyway.
	slices.SortStableFunc(rows, func(a, b mutationSort) int {
		return cmpSiteID(a.site, b.site)
	})

	offset = 0
	for j, row := range rows {
		m.Site[j] = row.site
		m.Node[j] = row.node
		m.DerivedStateLength[j] = uint16(len(row.derivedState))
		copy(m.DerivedState[offset:], row.derivedState)
		offset += len(row.derivedState)
	}

	return nil
}
