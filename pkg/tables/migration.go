package tables

import (
	"fmt"
	"io"
	"slices"
)

// MigrationTable stores one row per migration event. The simplifier passes
// migrations through untouched.
type MigrationTable struct {
	// Columns, logical length == NumRows().
	Left   []float64
	Right  []float64
	Node   []NodeID
	Source []PopulationID
	Dest   []PopulationID
	Time   []float64

	rowsIncrement int
}

// NewMigrationTable creates an empty migration table.
func NewMigrationTable(rowsIncrement int) (*MigrationTable, error) {
	if rowsIncrement <= 0 {
		return nil, fmt.Errorf("migration table increment: %w", ErrBadParam)
	}

	return &MigrationTable{rowsIncrement: rowsIncrement}, nil
}

// NumRows returns the logical row count.
func (t *MigrationTable) NumRows() int {
	return len(t.Left)
}

// AddRow appends one migration.
func (t *MigrationTable) AddRow(left, right float64, node NodeID,
	source, dest PopulationID, time float64,
) error {
	t.Left = ensureRowCap(t.Left, t.rowsIncrement)
	t.Right = ensureRowCap(t.Right, t.rowsIncrement)
	t.Node = ensureRowCap(t.Node, t.rowsIncrement)
	t.Source = ensureRowCap(t.Source, t.rowsIncrement)
	t.Dest = ensureRowCap(t.Dest, t.rowsIncrement)
	t.Time = ensureRowCap(t.Time, t.rowsIncrement)

	t.Left = append(t.Left, left)
	t.Right = append(t.Right, right)
	t.Node = append(t.Node, node)
	t.Source = append(t.Source, source)
	t.Dest = append(t.Dest, dest)
	t.Time = append(t.Time, time)

	return nil
}

// SetColumns bulk-replaces the table contents. All columns are mandatory.
func (t *MigrationTable) SetColumns(left, right []float64, node []NodeID,
	source, dest []PopulationID, time []float64,
) error {
	if left == nil || right == nil || node == nil || source == nil || dest == nil || time == nil {
		return fmt.Errorf("migration columns: %w", ErrBadParam)
	}

	numRows := len(left)
	if len(right) != numRows || len(node) != numRows || len(source) != numRows ||
		len(dest) != numRows || len(time) != numRows {
		return fmt.Errorf("migration column lengths: %w", ErrBadParam)
	}

	t.Left = slices.Clone(left)
	t.Right = slices.Clone(right)
	t.Node = slices.Clone(node)
	t.Source = slices.Clone(source)
	t.Dest = slices.Clone(dest)
	t.Time = slices.Clone(time)

	return nil
}

// Reset clears the logical contents while keeping the column capacity.
func (t *MigrationTable) Reset() {
	t.Left = t.Left[:0]
	t.Right = t.Right[:0]
	t.Node = t.Node[:0]
	t.Source = t.Source[:0]
	t.Dest = t.Dest[:0]
	t.Time = t.Time[:0]
}

// Equal reports whether both tables hold identical rows.
func (t *MigrationTable) Equal(other *MigrationTable) bool {
	return slices.Equal(t.Left, other.Left) &&
		slices.Equal(t.Right, other.Right) &&
		slices.Equal(t.Node, other.Node) &&
		slices.Equal(t.Source, other.Source) &&
		slices.Equal(t.Dest, other.Dest) &&
		slices.Equal(t.Time, other.Time)
}

// MemSize returns the approximate heap footprint of the column buffers in
// bytes.
func (t *MigrationTable) MemSize() int {
	return cap(t.Left)*8 + cap(t.Right)*8 + cap(t.Node)*4 +
		cap(t.Source)*4 + cap(t.Dest)*4 + cap(t.Time)*8
}

// PrintState writes a human-readable dump of the table to w.
func (t *MigrationTable) PrintState(w io.Writer) {
	fmt.Fprintf(w, "migration_table: rows=%d (cap %d, inc %d)\n",
		t.NumRows(), cap(t.Left), t.rowsIncrement)

	tw := newStateWriter(w)
	tw.AppendHeader(stateRow{"index", "left", "right", "node", "source", "dest", "time"})

	for j := range t.NumRows() {
		tw.AppendRow(stateRow{j, t.Left[j], t.Right[j], t.Node[j], t.Source[j], t.Dest[j], t.Time[j]})
	}

	tw.Render()
}

// Free releases the column buffers.
func (t *MigrationTable) Free() {
	t.Left = nil
	t.Right = nil
	t.Node = nil
	t.Source = nil
	t.Dest = nil
	t.Time = nil
}
