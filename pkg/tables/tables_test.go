package tables //nolint:testpackage // growth tests inspect column capacities

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableBadIncrements(t *testing.T) {
	t.Parallel()

	_, err := NewNodeTable(0, 1)
	require.ErrorIs(t, err, ErrBadParam)

	_, err = NewNodeTable(1, 0)
	require.ErrorIs(t, err, ErrBadParam)

	_, err = NewEdgesetTable(0, 1)
	require.ErrorIs(t, err, ErrBadParam)

	_, err = NewSiteTable(1, 0)
	require.ErrorIs(t, err, ErrBadParam)

	_, err = NewMutationTable(0, 1)
	require.ErrorIs(t, err, ErrBadParam)

	_, err = NewMigrationTable(0)
	require.ErrorIs(t, err, ErrBadParam)
}

func TestNodeTableAddRow(t *testing.T) {
	t.Parallel()

	table, err := NewNodeTable(2, 8)
	require.NoError(t, err)

	id, err := table.AddRow(NodeIsSample, 0.0, 0, "n0")
	require.NoError(t, err)
	assert.Equal(t, NodeID(0), id)

	id, err = table.AddRow(0, 1.5, NullPopulation, "")
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), id)

	// The third row forces an additive growth step.
	id, err = table.AddRow(0, 2.5, 1, "ancestor")
	require.NoError(t, err)
	assert.Equal(t, NodeID(2), id)

	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, 4, cap(table.Flags))
	assert.Equal(t, []float64{0.0, 1.5, 2.5}, table.Time)
	assert.Equal(t, []uint32{2, 0, 8}, table.NameLength)
	assert.Equal(t, "n0ancestor", string(table.Name))
}

func TestNodeTableSetColumnsDefaults(t *testing.T) {
	t.Parallel()

	table, err := NewNodeTable(1, 1)
	require.NoError(t, err)

	flags := []uint32{1, 0}
	time := []float64{0, 1}

	// Absent population fills with the unspecified sentinel; absent name
	// clears the payload.
	require.NoError(t, table.SetColumns(flags, time, nil, nil, nil))

	assert.Equal(t, []PopulationID{NullPopulation, NullPopulation}, table.Population)
	assert.Equal(t, []uint32{0, 0}, table.NameLength)
	assert.Equal(t, 0, table.TotalNameLength())
}

func TestNodeTableSetColumnsValidation(t *testing.T) {
	t.Parallel()

	table, err := NewNodeTable(1, 1)
	require.NoError(t, err)

	require.ErrorIs(t, table.SetColumns(nil, []float64{0}, nil, nil, nil), ErrBadParam)
	require.ErrorIs(t, table.SetColumns([]uint32{1}, nil, nil, nil, nil), ErrBadParam)

	// Name and name lengths must come together.
	err = table.SetColumns([]uint32{1}, []float64{0}, nil, []byte("x"), nil)
	require.ErrorIs(t, err, ErrBadParam)

	// The name payload must match the sum of lengths.
	err = table.SetColumns([]uint32{1}, []float64{0}, nil, []byte("xy"), []uint32{1})
	require.ErrorIs(t, err, ErrBadParam)
}

func TestNodeTableResetKeepsCapacity(t *testing.T) {
	t.Parallel()

	table, err := NewNodeTable(4, 16)
	require.NoError(t, err)

	for range 4 {
		_, addErr := table.AddRow(0, 0, 0, "name")
		require.NoError(t, addErr)
	}

	rowCap := cap(table.Flags)
	nameCap := cap(table.Name)

	table.Reset()

	assert.Equal(t, 0, table.NumRows())
	assert.Equal(t, 0, table.TotalNameLength())
	assert.Equal(t, rowCap, cap(table.Flags))
	assert.Equal(t, nameCap, cap(table.Name))
}

func TestEdgesetTableAddRow(t *testing.T) {
	t.Parallel()

	table, err := NewEdgesetTable(1, 2)
	require.NoError(t, err)

	require.NoError(t, table.AddRow(0, 1, 2, []NodeID{0, 1}))
	require.NoError(t, table.AddRow(0, 0.5, 3, []NodeID{0, 1, 2}))

	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, 5, table.TotalChildrenLength())
	assert.Equal(t, []NodeID{0, 1}, table.ChildrenRow(0, 0))
	assert.Equal(t, []NodeID{0, 1, 2}, table.ChildrenRow(1, 2))

	// A row without children is rejected.
	require.ErrorIs(t, table.AddRow(0, 1, 2, nil), ErrBadParam)
}

func TestEdgesetTableSetColumnsValidation(t *testing.T) {
	t.Parallel()

	table, err := NewEdgesetTable(1, 1)
	require.NoError(t, err)

	err = table.SetColumns([]float64{0}, []float64{1}, []NodeID{2}, nil, []uint16{1})
	require.ErrorIs(t, err, ErrBadParam)

	// Payload length must match the per-row lengths.
	err = table.SetColumns([]float64{0}, []float64{1}, []NodeID{2}, []NodeID{0, 1}, []uint16{1})
	require.ErrorIs(t, err, ErrBadParam)
}

func TestSiteAndMutationEqual(t *testing.T) {
	t.Parallel()

	a, err := NewSiteTable(1, 1)
	require.NoError(t, err)
	b, err := NewSiteTable(4, 4)
	require.NoError(t, err)

	require.NoError(t, a.AddRow(0.5, []byte("A")))
	require.NoError(t, b.AddRow(0.5, []byte("A")))
	assert.True(t, a.Equal(b))

	require.NoError(t, b.AddRow(0.7, []byte("T")))
	assert.False(t, a.Equal(b))

	ma, err := NewMutationTable(1, 1)
	require.NoError(t, err)
	mb, err := NewMutationTable(2, 2)
	require.NoError(t, err)

	require.NoError(t, ma.AddRow(0, 3, []byte("G")))
	require.NoError(t, mb.AddRow(0, 3, []byte("G")))
	assert.True(t, ma.Equal(mb))

	require.NoError(t, mb.AddRow(1, 4, []byte("C")))
	assert.False(t, ma.Equal(mb))
}

func TestSetColumnsRoundTrip(t *testing.T) {
	t.Parallel()

	src, err := NewNodeTable(2, 4)
	require.NoError(t, err)

	_, err = src.AddRow(NodeIsSample, 0, 0, "alpha")
	require.NoError(t, err)
	_, err = src.AddRow(0, 2.5, NullPopulation, "")
	require.NoError(t, err)

	dst, err := NewNodeTable(16, 16)
	require.NoError(t, err)

	require.NoError(t, dst.SetColumns(src.Flags, src.Time, src.Population, src.Name, src.NameLength))
	assert.True(t, src.Equal(dst))
}

func TestMigrationTablePassThrough(t *testing.T) {
	t.Parallel()

	table, err := NewMigrationTable(2)
	require.NoError(t, err)

	require.NoError(t, table.AddRow(0, 1, 5, 0, 1, 2.5))
	assert.Equal(t, 1, table.NumRows())

	other, err := NewMigrationTable(8)
	require.NoError(t, err)

	require.NoError(t, other.SetColumns(table.Left, table.Right, table.Node,
		table.Source, table.Dest, table.Time))
	assert.True(t, table.Equal(other))
}

func TestPrintStateSmoke(t *testing.T) {
	t.Parallel()

	table, err := NewNodeTable(1, 1)
	require.NoError(t, err)

	_, err = table.AddRow(NodeIsSample, 0, 0, "s0")
	require.NoError(t, err)

	var buf bytes.Buffer

	table.PrintState(&buf)
	assert.Contains(t, buf.String(), "node_table")
	assert.Contains(t, buf.String(), "s0")
}

func TestHibernateBootRoundTrip(t *testing.T) {
	t.Parallel()

	nodes, err := NewNodeTable(4, 16)
	require.NoError(t, err)

	for j := range 100 {
		_, addErr := nodes.AddRow(uint32(j%2), float64(j), PopulationID(j%3), "node")
		require.NoError(t, addErr)
	}

	snapshot, err := NewNodeTable(4, 16)
	require.NoError(t, err)
	require.NoError(t, snapshot.SetColumns(nodes.Flags, nodes.Time, nodes.Population,
		nodes.Name, nodes.NameLength))

	nodes.Hibernate()
	assert.Positive(t, nodes.HibernatedSize())
	assert.Nil(t, nodes.Flags)

	require.Panics(t, func() { nodes.Hibernate() })

	nodes.Boot()
	assert.True(t, nodes.Equal(snapshot))

	edgesets, err := NewEdgesetTable(4, 8)
	require.NoError(t, err)

	for j := range 50 {
		require.NoError(t, edgesets.AddRow(float64(j), float64(j+1), NodeID(j), []NodeID{0, 1}))
	}

	edgeSnapshot, err := NewEdgesetTable(4, 8)
	require.NoError(t, err)
	require.NoError(t, edgeSnapshot.SetColumns(edgesets.Left, edgesets.Right, edgesets.Parent,
		edgesets.Children, edgesets.ChildrenLength))

	edgesets.Hibernate()
	edgesets.Boot()
	assert.True(t, edgesets.Equal(edgeSnapshot))
}
