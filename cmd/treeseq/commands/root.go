package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treeseq/internal/config"
)

// rootOptions carries the global flags and the loaded configuration shared
// by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg *config.Config
}

// NewRootCommand builds the treeseq command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "treeseq",
		Short:         "Sort, simplify and inspect tree-sequence tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default: .treeseq.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewSortCommand(opts))
	rootCmd.AddCommand(NewSimplifyCommand(opts))
	rootCmd.AddCommand(NewDumpCommand(opts))
	rootCmd.AddCommand(NewStatsCommand(opts))

	return rootCmd
}

// setup loads the configuration and wires logging and color handling.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	o.cfg = cfg

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if o.noColor || cfg.NoColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	return nil
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprintf("error: %v", err))
		os.Exit(1)
	}
}
