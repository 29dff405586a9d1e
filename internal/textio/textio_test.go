package textio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treeseq/internal/textio"
	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

func TestLoadNodes(t *testing.T) {
	t.Parallel()

	input := `# flags time population name
1 0.0 0 s0
1 0.0 0 s1

0 1.5 -1
`

	nodes, err := textio.LoadNodes(strings.NewReader(input), 4, 16)
	require.NoError(t, err)

	assert.Equal(t, 3, nodes.NumRows())
	assert.Equal(t, []uint32{1, 1, 0}, nodes.Flags)
	assert.Equal(t, []float64{0, 0, 1.5}, nodes.Time)
	assert.Equal(t, tables.NullPopulation, nodes.Population[2])
	assert.Equal(t, "s0s1", string(nodes.Name))
}

func TestLoadEdgesets(t *testing.T) {
	t.Parallel()

	input := "0 1 2 0,1\n0.5 1 3 0,1,2\n"

	edgesets, err := textio.LoadEdgesets(strings.NewReader(input), 4, 16)
	require.NoError(t, err)

	assert.Equal(t, 2, edgesets.NumRows())
	assert.Equal(t, []tables.NodeID{0, 1}, edgesets.ChildrenRow(0, 0))
	assert.Equal(t, []tables.NodeID{0, 1, 2}, edgesets.ChildrenRow(1, 2))
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	t.Parallel()

	_, err := textio.LoadNodes(strings.NewReader("1 0.0\n"), 4, 4)
	require.Error(t, err)

	_, err = textio.LoadEdgesets(strings.NewReader("0 1 2\n"), 4, 4)
	require.Error(t, err)

	_, err = textio.LoadEdgesets(strings.NewReader("0 x 2 0,1\n"), 4, 4)
	require.Error(t, err)
}

func TestRoundTrips(t *testing.T) {
	t.Parallel()

	nodes, err := tables.NewNodeTable(4, 16)
	require.NoError(t, err)

	_, err = nodes.AddRow(tables.NodeIsSample, 0, 0, "s0")
	require.NoError(t, err)
	_, err = nodes.AddRow(0, 2.5, tables.NullPopulation, "")
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, textio.DumpNodes(&buf, nodes))

	reloaded, err := textio.LoadNodes(&buf, 4, 16)
	require.NoError(t, err)
	assert.True(t, nodes.Equal(reloaded))

	edgesets, err := tables.NewEdgesetTable(4, 16)
	require.NoError(t, err)
	require.NoError(t, edgesets.AddRow(0, 0.5, 2, []tables.NodeID{0, 1}))
	require.NoError(t, edgesets.AddRow(0.5, 1, 3, []tables.NodeID{1}))

	buf.Reset()
	require.NoError(t, textio.DumpEdgesets(&buf, edgesets))

	reloadedEdges, err := textio.LoadEdgesets(&buf, 4, 16)
	require.NoError(t, err)
	assert.True(t, edgesets.Equal(reloadedEdges))

	sites, err := tables.NewSiteTable(4, 16)
	require.NoError(t, err)
	require.NoError(t, sites.AddRow(0.25, []byte("A")))

	buf.Reset()
	require.NoError(t, textio.DumpSites(&buf, sites))

	reloadedSites, err := textio.LoadSites(&buf, 4, 16)
	require.NoError(t, err)
	assert.True(t, sites.Equal(reloadedSites))

	mutations, err := tables.NewMutationTable(4, 16)
	require.NoError(t, err)
	require.NoError(t, mutations.AddRow(0, 1, []byte("T")))

	buf.Reset()
	require.NoError(t, textio.DumpMutations(&buf, mutations))

	reloadedMutations, err := textio.LoadMutations(&buf, 4, 16)
	require.NoError(t, err)
	assert.True(t, mutations.Equal(reloadedMutations))

	migrations, err := tables.NewMigrationTable(4)
	require.NoError(t, err)
	require.NoError(t, migrations.AddRow(0, 1, 2, 0, 1, 1.5))

	buf.Reset()
	require.NoError(t, textio.DumpMigrations(&buf, migrations))

	reloadedMigrations, err := textio.LoadMigrations(&buf, 4)
	require.NoError(t, err)
	assert.True(t, migrations.Equal(reloadedMigrations))
}
