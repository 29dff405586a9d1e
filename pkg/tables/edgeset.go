package tables

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/treeseq/pkg/safeconv"
)

// EdgesetTable stores one row per edgeset: a half-open genomic interval
// [left, right), a parent node and a variable-length children list. Children
// are packed into a single buffer and addressed through per-row lengths.
type EdgesetTable struct {
	// Columns, logical length == NumRows().
	Left           []float64
	Right          []float64
	Parent         []NodeID
	ChildrenLength []uint16

	// Children is the packed children payload; its length equals the sum of
	// ChildrenLength.
	Children []NodeID

	rowsIncrement           int
	childrenLengthIncrement int

	hibernated *hibernatedColumns
}

// NewEdgesetTable creates an empty edgeset table growing by rowsIncrement
// rows and childrenLengthIncrement child ids at a time.
func NewEdgesetTable(rowsIncrement, childrenLengthIncrement int) (*EdgesetTable, error) {
	if rowsIncrement <= 0 || childrenLengthIncrement <= 0 {
		return nil, fmt.Errorf("edgeset table increments: %w", ErrBadParam)
	}

	return &EdgesetTable{
		rowsIncrement:           rowsIncrement,
		childrenLengthIncrement: childrenLengthIncrement,
	}, nil
}

// NumRows returns the logical row count.
func (t *EdgesetTable) NumRows() int {
	return len(t.Left)
}

// TotalChildrenLength returns the packed children payload length.
func (t *EdgesetTable) TotalChildrenLength() int {
	return len(t.Children)
}

// AddRow appends one edgeset. Every row must name at least one child.
func (t *EdgesetTable) AddRow(left, right float64, parent NodeID, children []NodeID) error {
	if len(children) == 0 {
		return fmt.Errorf("edgeset row without children: %w", ErrBadParam)
	}

	t.Left = ensureRowCap(t.Left, t.rowsIncrement)
	t.Right = ensureRowCap(t.Right, t.rowsIncrement)
	t.Parent = ensureRowCap(t.Parent, t.rowsIncrement)
	t.ChildrenLength = ensureRowCap(t.ChildrenLength, t.rowsIncrement)
	// The loop inside matters for rows with very many children.
	t.Children = ensurePayloadCap(t.Children, t.childrenLengthIncrement, len(children))

	t.Left = append(t.Left, left)
	t.Right = append(t.Right, right)
	t.Parent = append(t.Parent, parent)
	t.ChildrenLength = append(t.ChildrenLength, safeconv.MustIntToUint16(len(children)))
	t.Children = append(t.Children, children...)

	return nil
}

// SetColumns bulk-replaces the table contents. All columns are mandatory.
func (t *EdgesetTable) SetColumns(left, right []float64, parent []NodeID,
	children []NodeID, childrenLength []uint16,
) error {
	if left == nil || right == nil || parent == nil || children == nil || childrenLength == nil {
		return fmt.Errorf("edgeset columns: %w", ErrBadParam)
	}

	numRows := len(left)
	if len(right) != numRows || len(parent) != numRows || len(childrenLength) != numRows {
		return fmt.Errorf("edgeset column lengths: %w", ErrBadParam)
	}

	total := 0
	for _, l := range childrenLength {
		total += int(l)
	}

	if total != len(children) {
		return fmt.Errorf("edgeset children payload length: %w", ErrBadParam)
	}

	t.Left = slices.Clone(left)
	t.Right = slices.Clone(right)
	t.Parent = slices.Clone(parent)
	t.Children = slices.Clone(children)
	t.ChildrenLength = slices.Clone(childrenLength)

	return nil
}

// Reset clears the logical contents while keeping the column capacity.
func (t *EdgesetTable) Reset() {
	t.Left = t.Left[:0]
	t.Right = t.Right[:0]
	t.Parent = t.Parent[:0]
	t.ChildrenLength = t.ChildrenLength[:0]
	t.Children = t.Children[:0]
}

// Equal reports whether both tables hold identical rows.
func (t *EdgesetTable) Equal(other *EdgesetTable) bool {
	return slices.Equal(t.Left, other.Left) &&
		slices.Equal(t.Right, other.Right) &&
		slices.Equal(t.Parent, other.Parent) &&
		slices.Equal(t.ChildrenLength, other.ChildrenLength) &&
		slices.Equal(t.Children, other.Children)
}

// ChildrenRow returns the children of row j given its prefix-sum offset.
func (t *EdgesetTable) ChildrenRow(j int, offset int) []NodeID {
	return t.Children[offset : offset+int(t.ChildrenLength[j])]
}

// MemSize returns the approximate heap footprint of the column buffers in
// bytes.
func (t *EdgesetTable) MemSize() int {
	return cap(t.Left)*8 + cap(t.Right)*8 + cap(t.Parent)*4 +
		cap(t.ChildrenLength)*2 + cap(t.Children)*4
}

// PrintState writes a human-readable dump of the table to w.
func (t *EdgesetTable) PrintState(w io.Writer) {
	fmt.Fprintf(w, "edgeset_table: rows=%d (cap %d, inc %d)\tchildren=%d (cap %d, inc %d)\n",
		t.NumRows(), cap(t.Left), t.rowsIncrement,
		len(t.Children), cap(t.Children), t.childrenLengthIncrement)

	tw := newStateWriter(w)
	tw.AppendHeader(stateRow{"index", "left", "right", "parent", "children"})

	offset := 0
	for j := range t.NumRows() {
		children := t.ChildrenRow(j, offset)
		offset += int(t.ChildrenLength[j])

		ids := make([]string, len(children))
		for k, c := range children {
			ids[k] = strconv.Itoa(int(c))
		}

		tw.AppendRow(stateRow{j, t.Left[j], t.Right[j], t.Parent[j], strings.Join(ids, ",")})
	}

	tw.Render()
}

// Free releases the column buffers.
func (t *EdgesetTable) Free() {
	t.Left = nil
	t.Right = nil
	t.Parent = nil
	t.ChildrenLength = nil
	t.Children = nil
	t.hibernated = nil
}
