package simplify

import "github.com/Sumatoshi-tech/treeseq/pkg/tables"

// Simplify reduces the tables in place to the ancestry of the sample set:
// the node table is refilled with the used nodes in first-recorded order,
// the edgeset table with the minimal squashed edgesets, and the site and
// mutation tables are reset. The edgeset table must be sorted (see
// tables.SortTables) beforehand. No flags are currently defined.
func Simplify(nodes *tables.NodeTable, edgesets *tables.EdgesetTable, migrations *tables.MigrationTable,
	sites *tables.SiteTable, mutations *tables.MutationTable,
	samples []tables.NodeID, sequenceLength float64, flags uint32,
) error {
	s, err := New(nodes, edgesets, migrations, sites, mutations, samples, sequenceLength, flags)
	if err != nil {
		return err
	}

	defer s.Free()

	return s.Run()
}
