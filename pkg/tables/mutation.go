package tables

import (
	"fmt"
	"io"
	"slices"

	"github.com/Sumatoshi-tech/treeseq/pkg/safeconv"
)

// MutationTable stores one row per mutation: the site it occurs at, the node
// it occurs above and a variable-length derived state.
type MutationTable struct {
	// Columns, logical length == NumRows().
	Site               []SiteID
	Node               []NodeID
	DerivedStateLength []uint16

	// DerivedState is the packed state payload.
	DerivedState []byte

	rowsIncrement               int
	derivedStateLengthIncrement int
}

// NewMutationTable creates an empty mutation table.
func NewMutationTable(rowsIncrement, derivedStateLengthIncrement int) (*MutationTable, error) {
	if rowsIncrement <= 0 || derivedStateLengthIncrement <= 0 {
		return nil, fmt.Errorf("mutation table increments: %w", ErrBadParam)
	}

	return &MutationTable{
		rowsIncrement:               rowsIncrement,
		derivedStateLengthIncrement: derivedStateLengthIncrement,
	}, nil
}

// NumRows returns the logical row count.
func (t *MutationTable) NumRows() int {
	return len(t.Site)
}

// TotalDerivedStateLength returns the packed state payload length.
func (t *MutationTable) TotalDerivedStateLength() int {
	return len(t.DerivedState)
}

// AddRow appends one mutation.
func (t *MutationTable) AddRow(site SiteID, node NodeID, derivedState []byte) error {
	t.Site = ensureRowCap(t.Site, t.rowsIncrement)
	t.Node = ensureRowCap(t.Node, t.rowsIncrement)
	t.DerivedStateLength = ensureRowCap(t.DerivedStateLength, t.rowsIncrement)
	t.DerivedState = ensurePayloadCap(t.DerivedState, t.derivedStateLengthIncrement, len(derivedState))

	t.Site = append(t.Site, site)
	t.Node = append(t.Node, node)
	t.DerivedStateLength = append(t.DerivedStateLength, safeconv.MustIntToUint16(len(derivedState)))
	t.DerivedState = append(t.DerivedState, derivedState...)

	return nil
}

// SetColumns bulk-replaces the table contents. All columns are mandatory.
func (t *MutationTable) SetColumns(site []SiteID, node []NodeID,
	derivedState []byte, derivedStateLength []uint16,
) error {
	if site == nil || node == nil || derivedState == nil || derivedStateLength == nil {
		return fmt.Errorf("mutation columns: %w", ErrBadParam)
	}

	numRows := len(site)
	if len(node) != numRows || len(derivedStateLength) != numRows {
		return fmt.Errorf("mutation column lengths: %w", ErrBadParam)
	}

	total := 0
	for _, l := range derivedStateLength {
		total += int(l)
	}

	if total != len(derivedState) {
		return fmt.Errorf("mutation state payload length: %w", ErrBadParam)
	}

	t.Site = slices.Clone(site)
	t.Node = slices.Clone(node)
	t.DerivedState = slices.Clone(derivedState)
	t.DerivedStateLength = slices.Clone(derivedStateLength)

	return nil
}

// Reset clears the logical contents while keeping the column capacity.
func (t *MutationTable) Reset() {
	t.Site = t.Site[:0]
	t.Node = t.Node[:0]
	t.DerivedStateLength = t.DerivedStateLength[:0]
	t.DerivedState = t.DerivedState[:0]
}

// Equal reports whether both tables hold identical rows.
func (t *MutationTable) Equal(other *MutationTable) bool {
	return slices.Equal(t.Site, other.Site) &&
		slices.Equal(t.Node, other.Node) &&
		slices.Equal(t.DerivedStateLength, other.DerivedStateLength) &&
		slices.Equal(t.DerivedState, other.DerivedState)
}

// MemSize returns the approximate heap footprint of the column buffers in
// bytes.
func (t *MutationTable) MemSize() int {
	return cap(t.Site)*4 + cap(t.Node)*4 + cap(t.DerivedStateLength)*2 + cap(t.DerivedState)
}

// PrintState writes a human-readable dump of the table to w.
func (t *MutationTable) PrintState(w io.Writer) {
	fmt.Fprintf(w, "mutation_table: rows=%d (cap %d, inc %d)\tderived_state=%d (cap %d, inc %d)\n",
		t.NumRows(), cap(t.Site), t.rowsIncrement,
		len(t.DerivedState), cap(t.DerivedState), t.derivedStateLengthIncrement)

	tw := newStateWriter(w)
	tw.AppendHeader(stateRow{"index", "site", "node", "derived_state"})

	offset := 0
	for j := range t.NumRows() {
		state := t.DerivedState[offset : offset+int(t.DerivedStateLength[j])]
		offset += int(t.DerivedStateLength[j])

		tw.AppendRow(stateRow{j, t.Site[j], t.Node[j], string(state)})
	}

	tw.Render()
}

// Free releases the column buffers.
func (t *MutationTable) Free() {
	t.Site = nil
	t.Node = nil
	t.DerivedStateLength = nil
	t.DerivedState = nil
}
