package tables

import (
	"fmt"
	"io"
	"slices"
)

// NodeTable stores one row per node: a flags bitset, a time, a population and
// a variable-length UTF-8 name. Names are packed into a single buffer and
// addressed through per-row lengths; offsets are implicit prefix sums.
type NodeTable struct {
	// Columns, logical length == NumRows().
	Flags      []uint32
	Time       []float64
	Population []PopulationID
	NameLength []uint32

	// Name is the packed name payload; its length equals the sum of
	// NameLength.
	Name []byte

	rowsIncrement       int
	nameLengthIncrement int

	hibernated *hibernatedColumns
}

// NewNodeTable creates an empty node table growing by rowsIncrement rows and
// nameLengthIncrement name bytes at a time.
func NewNodeTable(rowsIncrement, nameLengthIncrement int) (*NodeTable, error) {
	if rowsIncrement <= 0 || nameLengthIncrement <= 0 {
		return nil, fmt.Errorf("node table increments: %w", ErrBadParam)
	}

	return &NodeTable{
		rowsIncrement:       rowsIncrement,
		nameLengthIncrement: nameLengthIncrement,
	}, nil
}

// NumRows returns the logical row count.
func (t *NodeTable) NumRows() int {
	return len(t.Flags)
}

// TotalNameLength returns the packed name payload length.
func (t *NodeTable) TotalNameLength() int {
	return len(t.Name)
}

// AddRow appends one node and returns its id.
func (t *NodeTable) AddRow(flags uint32, time float64, population PopulationID, name string) (NodeID, error) {
	t.Flags = ensureRowCap(t.Flags, t.rowsIncrement)
	t.Time = ensureRowCap(t.Time, t.rowsIncrement)
	t.Population = ensureRowCap(t.Population, t.rowsIncrement)
	t.NameLength = ensureRowCap(t.NameLength, t.rowsIncrement)
	t.Name = ensurePayloadCap(t.Name, t.nameLengthIncrement, len(name))

	t.Flags = append(t.Flags, flags)
	t.Time = append(t.Time, time)
	t.Population = append(t.Population, population)
	t.NameLength = append(t.NameLength, uint32(len(name)))
	t.Name = append(t.Name, name...)

	return NodeID(len(t.Flags) - 1), nil
}

// SetColumns bulk-replaces the table contents. The flags and time columns are
// mandatory and must have equal length. A nil population column fills with
// NullPopulation. The name and nameLength columns must be provided together;
// when absent the name payload is cleared and all name lengths zeroed.
func (t *NodeTable) SetColumns(flags []uint32, time []float64, population []PopulationID,
	name []byte, nameLength []uint32,
) error {
	if flags == nil || time == nil || len(flags) != len(time) {
		return fmt.Errorf("node columns flags/time: %w", ErrBadParam)
	}

	if (name == nil) != (nameLength == nil) {
		return fmt.Errorf("node columns name/name_length: %w", ErrBadParam)
	}

	numRows := len(flags)

	if population != nil && len(population) != numRows {
		return fmt.Errorf("node columns population: %w", ErrBadParam)
	}

	if nameLength != nil && len(nameLength) != numRows {
		return fmt.Errorf("node columns name_length: %w", ErrBadParam)
	}

	t.Flags = slices.Clone(flags)
	t.Time = slices.Clone(time)

	if population == nil {
		t.Population = make([]PopulationID, numRows)
		for j := range t.Population {
			t.Population[j] = NullPopulation
		}
	} else {
		t.Population = slices.Clone(population)
	}

	if name == nil {
		// Keep the payload non-nil so the table can be copied back through
		// SetColumns.
		if t.Name == nil {
			t.Name = []byte{}
		} else {
			t.Name = t.Name[:0]
		}

		t.NameLength = make([]uint32, numRows)
	} else {
		total := 0
		for _, l := range nameLength {
			total += int(l)
		}

		if total != len(name) {
			return fmt.Errorf("node name payload length: %w", ErrBadParam)
		}

		t.Name = slices.Clone(name)
		t.NameLength = slices.Clone(nameLength)
	}

	return nil
}

// Reset clears the logical contents while keeping the column capacity.
func (t *NodeTable) Reset() {
	t.Flags = t.Flags[:0]
	t.Time = t.Time[:0]
	t.Population = t.Population[:0]
	t.NameLength = t.NameLength[:0]
	t.Name = t.Name[:0]
}

// Equal reports whether both tables hold identical rows.
func (t *NodeTable) Equal(other *NodeTable) bool {
	return slices.Equal(t.Flags, other.Flags) &&
		slices.Equal(t.Time, other.Time) &&
		slices.Equal(t.Population, other.Population) &&
		slices.Equal(t.NameLength, other.NameLength) &&
		slices.Equal(t.Name, other.Name)
}

// NameRow returns the name payload of row j given its prefix-sum offset.
// Callers iterating all rows should track the offset themselves.
func (t *NodeTable) NameRow(j int, offset int) []byte {
	return t.Name[offset : offset+int(t.NameLength[j])]
}

// MemSize returns the approximate heap footprint of the column buffers in
// bytes.
func (t *NodeTable) MemSize() int {
	return cap(t.Flags)*4 + cap(t.Time)*8 + cap(t.Population)*4 +
		cap(t.NameLength)*4 + cap(t.Name)
}

// PrintState writes a human-readable dump of the table to w.
func (t *NodeTable) PrintState(w io.Writer) {
	fmt.Fprintf(w, "node_table: rows=%d (cap %d, inc %d)\tname=%d (cap %d, inc %d)\n",
		t.NumRows(), cap(t.Flags), t.rowsIncrement,
		len(t.Name), cap(t.Name), t.nameLengthIncrement)

	tw := newStateWriter(w)
	tw.AppendHeader(stateRow{"index", "flags", "time", "population", "name_length", "name"})

	offset := 0
	for j := range t.NumRows() {
		name := t.NameRow(j, offset)
		offset += int(t.NameLength[j])

		tw.AppendRow(stateRow{j, t.Flags[j], t.Time[j], t.Population[j], t.NameLength[j], string(name)})
	}

	tw.Render()
}

// Free releases the column buffers. The table must be re-created or have
// SetColumns called before further use.
func (t *NodeTable) Free() {
	t.Flags = nil
	t.Time = nil
	t.Population = nil
	t.NameLength = nil
	t.Name = nil
	t.hibernated = nil
}
