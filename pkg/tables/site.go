package tables

import (
	"fmt"
	"io"
	"slices"
)

// SiteTable stores one row per site: a genomic position and a variable-length
// ancestral state. SortTables orders rows by position; rows with equal
// positions are kept, in input order, and are not rejected.
type SiteTable struct {
	// Columns, logical length == NumRows().
	Position             []float64
	AncestralStateLength []uint32

	// AncestralState is the packed state payload.
	AncestralState []byte

	rowsIncrement                 int
	ancestralStateLengthIncrement int
}

// NewSiteTable creates an empty site table.
func NewSiteTable(rowsIncrement, ancestralStateLengthIncrement int) (*SiteTable, error) {
	if rowsIncrement <= 0 || ancestralStateLengthIncrement <= 0 {
		return nil, fmt.Errorf("site table increments: %w", ErrBadParam)
	}

	return &SiteTable{
		rowsIncrement:                 rowsIncrement,
		ancestralStateLengthIncrement: ancestralStateLengthIncrement,
	}, nil
}

// NumRows returns the logical row count.
func (t *SiteTable) NumRows() int {
	return len(t.Position)
}

// TotalAncestralStateLength returns the packed state payload length.
func (t *SiteTable) TotalAncestralStateLength() int {
	return len(t.AncestralState)
}

// AddRow appends one site.
func (t *SiteTable) AddRow(position float64, ancestralState []byte) error {
	t.Position = ensureRowCap(t.Position, t.rowsIncrement)
	t.AncestralStateLength = ensureRowCap(t.AncestralStateLength, t.rowsIncrement)
	t.AncestralState = ensurePayloadCap(t.AncestralState, t.ancestralStateLengthIncrement, len(ancestralState))

	t.Position = append(t.Position, position)
	t.AncestralStateLength = append(t.AncestralStateLength, uint32(len(ancestralState)))
	t.AncestralState = append(t.AncestralState, ancestralState...)

	return nil
}

// SetColumns bulk-replaces the table contents. All columns are mandatory.
func (t *SiteTable) SetColumns(position []float64, ancestralState []byte, ancestralStateLength []uint32) error {
	if position == nil || ancestralState == nil || ancestralStateLength == nil {
		return fmt.Errorf("site columns: %w", ErrBadParam)
	}

	if len(ancestralStateLength) != len(position) {
		return fmt.Errorf("site column lengths: %w", ErrBadParam)
	}

	total := 0
	for _, l := range ancestralStateLength {
		total += int(l)
	}

	if total != len(ancestralState) {
		return fmt.Errorf("site state payload length: %w", ErrBadParam)
	}

	t.Position = slices.Clone(position)
	t.AncestralState = slices.Clone(ancestralState)
	t.AncestralStateLength = slices.Clone(ancestralStateLength)

	return nil
}

// Reset clears the logical contents while keeping the column capacity.
func (t *SiteTable) Reset() {
	t.Position = t.Position[:0]
	t.AncestralStateLength = t.AncestralStateLength[:0]
	t.AncestralState = t.AncestralState[:0]
}

// Equal reports whether both tables hold identical rows.
func (t *SiteTable) Equal(other *SiteTable) bool {
	return slices.Equal(t.Position, other.Position) &&
		slices.Equal(t.AncestralStateLength, other.AncestralStateLength) &&
		slices.Equal(t.AncestralState, other.AncestralState)
}

// MemSize returns the approximate heap footprint of the column buffers in
// bytes.
func (t *SiteTable) MemSize() int {
	return cap(t.Position)*8 + cap(t.AncestralStateLength)*4 + cap(t.AncestralState)
}

// PrintState writes a human-readable dump of the table to w.
func (t *SiteTable) PrintState(w io.Writer) {
	fmt.Fprintf(w, "site_table: rows=%d (cap %d, inc %d)\tancestral_state=%d (cap %d, inc %d)\n",
		t.NumRows(), cap(t.Position), t.rowsIncrement,
		len(t.AncestralState), cap(t.AncestralState), t.ancestralStateLengthIncrement)

	tw := newStateWriter(w)
	tw.AppendHeader(stateRow{"index", "position", "ancestral_state"})

	offset := 0
	for j := range t.NumRows() {
		state := t.AncestralState[offset : offset+int(t.AncestralStateLength[j])]
		offset += int(t.AncestralStateLength[j])

		tw.AppendRow(stateRow{j, t.Position[j], string(state)})
	}

	tw.Render()
}

// Free releases the column buffers.
func (t *SiteTable) Free() {
	t.Position = nil
	t.AncestralStateLength = nil
	t.AncestralState = nil
}
