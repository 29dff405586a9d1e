package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// StatsCommand holds the flags for the stats command.
type StatsCommand struct {
	root      *rootOptions
	inputs    tableFlags
	hibernate bool
}

// NewStatsCommand creates and configures the stats command.
func NewStatsCommand(root *rootOptions) *cobra.Command {
	cmd := &StatsCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "stats",
		Short: "Report row counts and memory footprint of the tables",
		RunE:  cmd.Run,
	}

	cmd.inputs.register(cobraCmd.Flags())
	cobraCmd.Flags().BoolVar(&cmd.hibernate, "compressed", false,
		"Also report the LZ4-compressed footprint of the node and edgeset tables")

	return cobraCmd
}

// Run executes the stats command.
func (c *StatsCommand) Run(cmd *cobra.Command, args []string) error {
	set, err := c.inputs.load(c.root.cfg)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"table", "rows", "payload", "memory"})

	tw.AppendRow(table.Row{"nodes", set.nodes.NumRows(), set.nodes.TotalNameLength(),
		humanize.IBytes(uint64(set.nodes.MemSize()))})
	tw.AppendRow(table.Row{"edgesets", set.edgesets.NumRows(), set.edgesets.TotalChildrenLength(),
		humanize.IBytes(uint64(set.edgesets.MemSize()))})

	if set.sites != nil {
		tw.AppendRow(table.Row{"sites", set.sites.NumRows(), set.sites.TotalAncestralStateLength(),
			humanize.IBytes(uint64(set.sites.MemSize()))})
	}

	if set.mutations != nil {
		tw.AppendRow(table.Row{"mutations", set.mutations.NumRows(), set.mutations.TotalDerivedStateLength(),
			humanize.IBytes(uint64(set.mutations.MemSize()))})
	}

	if set.migrations != nil {
		tw.AppendRow(table.Row{"migrations", set.migrations.NumRows(), 0,
			humanize.IBytes(uint64(set.migrations.MemSize()))})
	}

	tw.Render()

	if c.hibernate {
		set.nodes.Hibernate()
		set.edgesets.Hibernate()

		fmt.Fprintf(cmd.OutOrStdout(), "compressed: nodes %s, edgesets %s\n",
			humanize.IBytes(uint64(set.nodes.HibernatedSize())),
			humanize.IBytes(uint64(set.edgesets.HibernatedSize())))

		set.nodes.Boot()
		set.edgesets.Boot()
	}

	return nil
}
