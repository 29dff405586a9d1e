package commands

import (
	"log/slog"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

// SortCommand holds the flags for the sort command.
type SortCommand struct {
	root   *rootOptions
	inputs tableFlags
	prefix string
}

// NewSortCommand creates and configures the sort command.
func NewSortCommand(root *rootOptions) *cobra.Command {
	cmd := &SortCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort tables into the order the simplifier requires",
		Long:  "Sort edgesets by (parent time, parent, left), sites by position and mutations by site",
		RunE:  cmd.Run,
	}

	cmd.inputs.register(cobraCmd.Flags())
	cobraCmd.Flags().StringVarP(&cmd.prefix, "out-prefix", "o", "sorted_", "Output file prefix")

	return cobraCmd
}

// Run executes the sort command.
func (c *SortCommand) Run(cmd *cobra.Command, args []string) error {
	set, err := c.inputs.load(c.root.cfg)
	if err != nil {
		return err
	}

	start := time.Now()

	err = tables.SortTables(set.nodes, set.edgesets, set.migrations, set.sites, set.mutations)
	if err != nil {
		return err
	}

	slog.Info("sorted tables",
		"edgesets", set.edgesets.NumRows(),
		"sites", rowsOrZero(set.sites),
		"duration", time.Since(start))

	if err := set.dump(c.prefix); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "sorted tables written to %s*\n", c.prefix)

	return nil
}

func rowsOrZero(t *tables.SiteTable) int {
	if t == nil {
		return 0
	}

	return t.NumRows()
}
