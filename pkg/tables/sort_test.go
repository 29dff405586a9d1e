package tables //nolint:testpackage // fixtures build tables through internal columns

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sortFixture builds nodes with the given times and an edgeset table from
// (left, right, parent, children) rows.
func sortFixture(t *testing.T, times []float64, rows [][2]float64, parents []NodeID, children [][]NodeID) (*NodeTable, *EdgesetTable) {
	t.Helper()

	nodes, err := NewNodeTable(8, 8)
	require.NoError(t, err)

	for _, tm := range times {
		_, addErr := nodes.AddRow(NodeIsSample, tm, NullPopulation, "")
		require.NoError(t, addErr)
	}

	edgesets, err := NewEdgesetTable(8, 8)
	require.NoError(t, err)

	for j := range rows {
		require.NoError(t, edgesets.AddRow(rows[j][0], rows[j][1], parents[j], children[j]))
	}

	return nodes, edgesets
}

func TestSortEdgesetsDeterminism(t *testing.T) {
	t.Parallel()

	// Parent times [2, 1, 2] on parents [5, 4, 3]: the time=1 row comes
	// first, then the time=2 rows in parent order 3, 5.
	times := []float64{0, 0, 0, 2, 1, 2}
	nodes, edgesets := sortFixture(t, times,
		[][2]float64{{0, 1}, {0, 1}, {0, 1}},
		[]NodeID{5, 4, 3},
		[][]NodeID{{1, 0}, {0, 2}, {2, 1}})

	require.NoError(t, SortTables(nodes, edgesets, nil, nil, nil))

	assert.Equal(t, []NodeID{4, 3, 5}, edgesets.Parent)

	// Children are sorted ascending within each row.
	assert.Equal(t, []NodeID{0, 2}, edgesets.ChildrenRow(0, 0))
	assert.Equal(t, []NodeID{1, 2}, edgesets.ChildrenRow(1, 2))
	assert.Equal(t, []NodeID{0, 1}, edgesets.ChildrenRow(2, 4))
}

func TestSortEdgesetsByLeftWithinParent(t *testing.T) {
	t.Parallel()

	times := []float64{0, 0, 1}
	nodes, edgesets := sortFixture(t, times,
		[][2]float64{{0.5, 1}, {0, 0.5}},
		[]NodeID{2, 2},
		[][]NodeID{{0, 1}, {0, 1}})

	require.NoError(t, SortTables(nodes, edgesets, nil, nil, nil))

	assert.Equal(t, []float64{0, 0.5}, edgesets.Left)
}

func TestSortIdempotent(t *testing.T) {
	t.Parallel()

	times := []float64{0, 0, 0, 1, 2}
	build := func() (*NodeTable, *EdgesetTable) {
		return sortFixture(t, times,
			[][2]float64{{0, 1}, {0, 0.7}, {0.2, 1}},
			[]NodeID{4, 3, 3},
			[][]NodeID{{2, 0}, {1, 0}, {1, 2}})
	}

	nodes, once := build()
	require.NoError(t, SortTables(nodes, once, nil, nil, nil))

	twice, err := NewEdgesetTable(8, 8)
	require.NoError(t, err)
	require.NoError(t, twice.SetColumns(once.Left, once.Right, once.Parent, once.Children, once.ChildrenLength))

	require.NoError(t, SortTables(nodes, twice, nil, nil, nil))
	assert.True(t, once.Equal(twice))
}

func TestSortPreservesEdgesetMultiset(t *testing.T) {
	t.Parallel()

	times := []float64{0, 0, 0, 1, 2}
	nodes, edgesets := sortFixture(t, times,
		[][2]float64{{0, 1}, {0, 0.7}, {0.2, 1}},
		[]NodeID{4, 3, 3},
		[][]NodeID{{2, 0}, {1, 0}, {1, 2}})

	type row struct {
		left, right float64
		parent      NodeID
		children    string
	}

	collect := func(e *EdgesetTable) map[row]int {
		rows := map[row]int{}
		offset := 0

		for j := range e.NumRows() {
			children := slices.Clone(e.ChildrenRow(j, offset))
			offset += len(children)

			// Children are a set: compare them order-independently.
			slices.Sort(children)

			ids := ""
			for _, c := range children {
				ids += string(rune('a' + c))
			}

			rows[row{e.Left[j], e.Right[j], e.Parent[j], ids}]++
		}

		return rows
	}

	before := collect(edgesets)

	require.NoError(t, SortTables(nodes, edgesets, nil, nil, nil))

	assert.Equal(t, before, collect(edgesets))
}

func TestSortSitesAndMutations(t *testing.T) {
	t.Parallel()

	times := []float64{0, 0, 1}
	nodes, edgesets := sortFixture(t, times,
		[][2]float64{{0, 1}},
		[]NodeID{2},
		[][]NodeID{{0, 1}})

	sites, err := NewSiteTable(4, 4)
	require.NoError(t, err)
	require.NoError(t, sites.AddRow(0.8, []byte("T")))
	require.NoError(t, sites.AddRow(0.2, []byte("AC")))
	require.NoError(t, sites.AddRow(0.5, []byte("G")))

	mutations, err := NewMutationTable(4, 4)
	require.NoError(t, err)
	require.NoError(t, mutations.AddRow(0, 1, []byte("C")))
	require.NoError(t, mutations.AddRow(2, 0, []byte("A")))
	require.NoError(t, mutations.AddRow(1, 1, []byte("G")))

	require.NoError(t, SortTables(nodes, edgesets, nil, sites, mutations))

	assert.Equal(t, []float64{0.2, 0.5, 0.8}, sites.Position)
	assert.Equal(t, uint32(2), sites.AncestralStateLength[0])
	assert.Equal(t, "ACGT", string(sites.AncestralState))

	// Old site ids 0,2,1 map to 2,1,0: sorted mutation order is the input
	// reversed.
	assert.Equal(t, []SiteID{0, 1, 2}, mutations.Site)
	assert.Equal(t, []NodeID{1, 0, 1}, mutations.Node)
	assert.Equal(t, "GAC", string(mutations.DerivedState))
}

func TestSortValidation(t *testing.T) {
	t.Parallel()

	times := []float64{0, 0}
	nodes, edgesets := sortFixture(t, times,
		[][2]float64{{0, 1}},
		[]NodeID{7},
		[][]NodeID{{0, 1}})

	require.ErrorIs(t, SortTables(nodes, edgesets, nil, nil, nil), ErrOutOfBounds)

	require.ErrorIs(t, SortTables(nil, edgesets, nil, nil, nil), ErrBadParam)
	require.ErrorIs(t, SortTables(nodes, nil, nil, nil, nil), ErrBadParam)

	sites, err := NewSiteTable(1, 1)
	require.NoError(t, err)

	// A site table without a mutation table is rejected.
	nodesOK, edgesetsOK := sortFixture(t, []float64{0, 0, 1},
		[][2]float64{{0, 1}}, []NodeID{2}, [][]NodeID{{0, 1}})
	require.ErrorIs(t, SortTables(nodesOK, edgesetsOK, nil, sites, nil), ErrBadParam)
}

func TestSortMutationValidation(t *testing.T) {
	t.Parallel()

	nodes, edgesets := sortFixture(t, []float64{0, 0, 1},
		[][2]float64{{0, 1}}, []NodeID{2}, [][]NodeID{{0, 1}})

	sites, err := NewSiteTable(1, 1)
	require.NoError(t, err)
	require.NoError(t, sites.AddRow(0.5, []byte("A")))

	mutations, err := NewMutationTable(1, 1)
	require.NoError(t, err)
	require.NoError(t, mutations.AddRow(9, 0, []byte("T")))

	require.ErrorIs(t, SortTables(nodes, edgesets, nil, sites, mutations), ErrOutOfBounds)

	badNode, err := NewMutationTable(1, 1)
	require.NoError(t, err)
	require.NoError(t, badNode.AddRow(0, 99, []byte("T")))

	require.ErrorIs(t, SortTables(nodes, edgesets, nil, sites, badNode), ErrOutOfBounds)
}
