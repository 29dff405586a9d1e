package commands

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treeseq/pkg/simplify"
	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

// SimplifyCommand holds the flags for the simplify command.
type SimplifyCommand struct {
	root *rootOptions

	inputs         tableFlags
	prefix         string
	samples        string
	sequenceLength float64
	sortFirst      bool
}

// NewSimplifyCommand creates and configures the simplify command.
func NewSimplifyCommand(root *rootOptions) *cobra.Command {
	cmd := &SimplifyCommand{root: root}

	cobraCmd := &cobra.Command{
		Use:   "simplify",
		Short: "Reduce the tables to the ancestry of a sample set",
		RunE:  cmd.Run,
	}

	cmd.inputs.register(cobraCmd.Flags())
	cobraCmd.Flags().StringVarP(&cmd.prefix, "out-prefix", "o", "simplified_", "Output file prefix")
	cobraCmd.Flags().StringVarP(&cmd.samples, "samples", "s", "", "Comma-separated sample node ids (required)")
	cobraCmd.Flags().Float64VarP(&cmd.sequenceLength, "sequence-length", "L", 0, "Sequence length (required)")
	cobraCmd.Flags().BoolVar(&cmd.sortFirst, "sort", true, "Sort the tables before simplifying")

	return cobraCmd
}

// Run executes the simplify command.
func (c *SimplifyCommand) Run(cmd *cobra.Command, args []string) error {
	samples, err := parseSamples(c.samples)
	if err != nil {
		return err
	}

	if c.sequenceLength <= 0 {
		return fmt.Errorf("--sequence-length must be positive")
	}

	set, err := c.inputs.load(c.root.cfg)
	if err != nil {
		return err
	}

	if err := set.ensureOptional(c.root.cfg); err != nil {
		return err
	}

	start := time.Now()

	if c.sortFirst {
		err = tables.SortTables(set.nodes, set.edgesets, set.migrations, set.sites, set.mutations)
		if err != nil {
			return err
		}
	}

	inputNodes := set.nodes.NumRows()
	inputEdgesets := set.edgesets.NumRows()

	err = simplify.Simplify(set.nodes, set.edgesets, set.migrations, set.sites, set.mutations,
		samples, c.sequenceLength, 0)
	if err != nil {
		return err
	}

	slog.Info("simplified tables",
		"samples", len(samples),
		"nodes", fmt.Sprintf("%d->%d", inputNodes, set.nodes.NumRows()),
		"edgesets", fmt.Sprintf("%d->%d", inputEdgesets, set.edgesets.NumRows()),
		"duration", time.Since(start))

	if err := set.dump(c.prefix); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "simplified tables written to %s*\n", c.prefix)

	return nil
}

func parseSamples(arg string) ([]tables.NodeID, error) {
	if arg == "" {
		return nil, fmt.Errorf("--samples is required")
	}

	fields := strings.Split(arg, ",")
	samples := make([]tables.NodeID, 0, len(fields))

	for _, f := range fields {
		id, err := strconv.ParseInt(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("sample id %q: %w", f, err)
		}

		samples = append(samples, tables.NodeID(id))
	}

	return samples, nil
}
