package tables

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

type stateRow = table.Row

// newStateWriter builds the go-pretty writer shared by the PrintState
// methods.
func newStateWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	return tw
}
