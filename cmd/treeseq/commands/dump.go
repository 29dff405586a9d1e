package commands

import (
	"github.com/spf13/cobra"
)

// DumpCommand holds the flags for the dump command.
type DumpCommand struct {
	root   *rootOptions
	inputs tableFlags
}

// NewDumpCommand creates and configures the dump command.
func NewDumpCommand(root *rootOptions) *cobra.Command {
	cmd := &DumpCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "dump",
		Short: "Pretty-print the state of every provided table",
		RunE:  cmd.Run,
	}

	cmd.inputs.register(cobraCmd.Flags())

	return cobraCmd
}

// Run executes the dump command.
func (c *DumpCommand) Run(cmd *cobra.Command, args []string) error {
	set, err := c.inputs.load(c.root.cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	set.nodes.PrintState(out)
	set.edgesets.PrintState(out)

	if set.sites != nil {
		set.sites.PrintState(out)
	}

	if set.mutations != nil {
		set.mutations.PrintState(out)
	}

	if set.migrations != nil {
		set.migrations.PrintState(out)
	}

	return nil
}
