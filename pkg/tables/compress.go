package tables

import (
	"bytes"
	"encoding/binary"

	"github.com/pierrec/lz4/v4"
)

// hibernatedColumns holds the LZ4-compressed column buffers of a hibernated
// table together with the logical lengths needed to restore them.
type hibernatedColumns struct {
	numRows    int
	payloadLen int
	data       [][]byte
}

// compressColumn compresses a column of fixed-size values with LZ4.
func compressColumn[T any](col []T) []byte {
	buf := new(bytes.Buffer)

	writeErr := binary.Write(buf, binary.LittleEndian, col)
	if writeErr != nil {
		return nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(buf.Len()))

	written, err := lz4.CompressBlock(buf.Bytes(), compressed, nil)
	if err != nil || written == 0 {
		return nil
	}

	return compressed[:written]
}

// decompressColumn restores a column previously compressed with
// compressColumn. The result slice must be preallocated to the original
// length.
func decompressColumn[T any](data []byte, result []T, elemSize int) {
	decompressed := make([]byte, len(result)*elemSize)

	_, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return
	}

	readErr := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
	if readErr != nil {
		return
	}
}

// Hibernate compresses the node columns and releases the working buffers.
// The table cannot be used until Boot is called. Node and edgeset tables
// dominate the footprint of a loaded tree sequence, so hibernation is
// provided for these two.
func (t *NodeTable) Hibernate() {
	if t.hibernated != nil {
		panic("cannot hibernate an already hibernated table")
	}

	t.hibernated = &hibernatedColumns{
		numRows:    t.NumRows(),
		payloadLen: len(t.Name),
		data: [][]byte{
			compressColumn(t.Flags),
			compressColumn(t.Time),
			compressColumn(t.Population),
			compressColumn(t.NameLength),
			compressColumn(t.Name),
		},
	}

	t.Flags = nil
	t.Time = nil
	t.Population = nil
	t.NameLength = nil
	t.Name = nil
}

// Boot decompresses and restores a hibernated node table.
func (t *NodeTable) Boot() {
	if t.hibernated == nil {
		return
	}

	h := t.hibernated
	t.Flags = make([]uint32, h.numRows)
	t.Time = make([]float64, h.numRows)
	t.Population = make([]PopulationID, h.numRows)
	t.NameLength = make([]uint32, h.numRows)
	t.Name = make([]byte, h.payloadLen)

	decompressColumn(h.data[0], t.Flags, 4)
	decompressColumn(h.data[1], t.Time, 8)
	decompressColumn(h.data[2], t.Population, 4)
	decompressColumn(h.data[3], t.NameLength, 4)
	decompressColumn(h.data[4], t.Name, 1)

	t.hibernated = nil
}

// HibernatedSize returns the compressed footprint in bytes, or 0 when the
// table is not hibernated.
func (t *NodeTable) HibernatedSize() int {
	if t.hibernated == nil {
		return 0
	}

	total := 0
	for _, d := range t.hibernated.data {
		total += len(d)
	}

	return total
}

// Hibernate compresses the edgeset columns and releases the working buffers.
func (t *EdgesetTable) Hibernate() {
	if t.hibernated != nil {
		panic("cannot hibernate an already hibernated table")
	}

	t.hibernated = &hibernatedColumns{
		numRows:    t.NumRows(),
		payloadLen: len(t.Children),
		data: [][]byte{
			compressColumn(t.Left),
			compressColumn(t.Right),
			compressColumn(t.Parent),
			compressColumn(t.ChildrenLength),
			compressColumn(t.Children),
		},
	}

	t.Left = nil
	t.Right = nil
	t.Parent = nil
	t.ChildrenLength = nil
	t.Children = nil
}

// Boot decompresses and restores a hibernated edgeset table.
func (t *EdgesetTable) Boot() {
	if t.hibernated == nil {
		return
	}

	h := t.hibernated
	t.Left = make([]float64, h.numRows)
	t.Right = make([]float64, h.numRows)
	t.Parent = make([]NodeID, h.numRows)
	t.ChildrenLength = make([]uint16, h.numRows)
	t.Children = make([]NodeID, h.payloadLen)

	decompressColumn(h.data[0], t.Left, 8)
	decompressColumn(h.data[1], t.Right, 8)
	decompressColumn(h.data[2], t.Parent, 4)
	decompressColumn(h.data[3], t.ChildrenLength, 2)
	decompressColumn(h.data[4], t.Children, 4)

	t.hibernated = nil
}

// HibernatedSize returns the compressed footprint in bytes, or 0 when the
// table is not hibernated.
func (t *EdgesetTable) HibernatedSize() int {
	if t.hibernated == nil {
		return 0
	}

	total := 0
	for _, d := range t.hibernated.data {
		total += len(d)
	}

	return total
}
