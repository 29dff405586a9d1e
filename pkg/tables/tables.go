// Package tables implements the column-oriented tables that encode a tree
// sequence: nodes, edgesets, sites, mutations and migrations. Each table owns
// its column buffers and grows them additively by client-configured
// increments, so memory behaviour stays predictable with large initial
// increments. The package also provides the table sorter which establishes
// the ordering invariants the simplifier relies upon.
package tables

import "errors"

// NodeID identifies a node (ancestor) in a node table. Negative values are
// sentinels.
type NodeID int32

// SiteID identifies a site in a site table. Negative values are sentinels.
type SiteID int32

// PopulationID identifies a population. The all-bits-set value means
// "unspecified".
type PopulationID int32

// NullNode is the missing-node sentinel.
const NullNode NodeID = -1

// NullPopulation is the "unspecified" population sentinel, default-filled by
// NodeTable.SetColumns when the population column is absent.
const NullPopulation PopulationID = -1

// NodeIsSample is the node flag bit marking a node as a sample.
const NodeIsSample uint32 = 1

// The closed set of error kinds surfaced by the table, sorter and simplifier
// entry points. Callers match with errors.Is; call sites wrap with context.
var (
	// ErrNoMemory is returned when a buffer or arena cannot grow.
	ErrNoMemory = errors.New("out of memory")
	// ErrBadParam is returned when a required input is missing or an
	// increment is zero.
	ErrBadParam = errors.New("bad parameter value")
	// ErrOutOfBounds is returned when a node or site id exceeds its table.
	ErrOutOfBounds = errors.New("id out of bounds")
	// ErrDuplicateSample is returned when the sample list repeats an id.
	ErrDuplicateSample = errors.New("duplicate sample")
	// ErrBadSamples is returned when a listed sample id lacks the sample flag.
	ErrBadSamples = errors.New("bad sample configuration")
	// ErrRecordsNotTimeSorted is returned when parent times are not
	// non-decreasing across a parent flush boundary.
	ErrRecordsNotTimeSorted = errors.New("records not time sorted")
	// ErrGeneric is the catch-all failure.
	ErrGeneric = errors.New("generic error")
)

// growCol extends a column to the exact capacity newCap while preserving the
// logical contents. Growth is additive, never geometric.
func growCol[T any](col []T, newCap int) []T {
	grown := make([]T, len(col), newCap)
	copy(grown, col)

	return grown
}

// ensureRowCap grows col by inc-sized steps until it can hold one more row.
func ensureRowCap[T any](col []T, inc int) []T {
	if len(col) < cap(col) {
		return col
	}

	return growCol(col, cap(col)+inc)
}

// ensurePayloadCap grows col by inc-sized steps until it can hold extra more
// bytes/ids. The loop matters when a single row carries a payload larger than
// the increment.
func ensurePayloadCap[T any](col []T, inc, extra int) []T {
	for len(col)+extra >= cap(col) {
		col = growCol(col, cap(col)+inc)
	}

	return col
}
