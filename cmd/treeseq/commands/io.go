package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/treeseq/internal/config"
	"github.com/Sumatoshi-tech/treeseq/internal/textio"
	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

// tableFlags holds the input file paths shared by the table commands. Only
// nodes and edgesets are mandatory.
type tableFlags struct {
	nodesPath      string
	edgesetsPath   string
	sitesPath      string
	mutationsPath  string
	migrationsPath string
}

// tableSet bundles the loaded tables of one invocation.
type tableSet struct {
	nodes      *tables.NodeTable
	edgesets   *tables.EdgesetTable
	sites      *tables.SiteTable
	mutations  *tables.MutationTable
	migrations *tables.MigrationTable
}

func (f *tableFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.nodesPath, "nodes", "", "Node table file (required)")
	flags.StringVar(&f.edgesetsPath, "edgesets", "", "Edgeset table file (required)")
	flags.StringVar(&f.sitesPath, "sites", "", "Site table file")
	flags.StringVar(&f.mutationsPath, "mutations", "", "Mutation table file")
	flags.StringVar(&f.migrationsPath, "migrations", "", "Migration table file")
}

// load reads every table whose path was provided.
func (f *tableFlags) load(cfg *config.Config) (*tableSet, error) {
	if f.nodesPath == "" || f.edgesetsPath == "" {
		return nil, fmt.Errorf("--nodes and --edgesets are required")
	}

	set := &tableSet{}
	rowInc := cfg.Tables.RowsIncrement
	payloadInc := cfg.Tables.PayloadIncrement

	err := withFile(f.nodesPath, func(file *os.File) error {
		var loadErr error
		set.nodes, loadErr = textio.LoadNodes(file, rowInc, payloadInc)

		return loadErr
	})
	if err != nil {
		return nil, err
	}

	err = withFile(f.edgesetsPath, func(file *os.File) error {
		var loadErr error
		set.edgesets, loadErr = textio.LoadEdgesets(file, rowInc, payloadInc)

		return loadErr
	})
	if err != nil {
		return nil, err
	}

	if f.sitesPath != "" {
		err = withFile(f.sitesPath, func(file *os.File) error {
			var loadErr error
			set.sites, loadErr = textio.LoadSites(file, rowInc, payloadInc)

			return loadErr
		})
		if err != nil {
			return nil, err
		}
	}

	if f.mutationsPath != "" {
		err = withFile(f.mutationsPath, func(file *os.File) error {
			var loadErr error
			set.mutations, loadErr = textio.LoadMutations(file, rowInc, payloadInc)

			return loadErr
		})
		if err != nil {
			return nil, err
		}
	}

	if f.migrationsPath != "" {
		err = withFile(f.migrationsPath, func(file *os.File) error {
			var loadErr error
			set.migrations, loadErr = textio.LoadMigrations(file, rowInc)

			return loadErr
		})
		if err != nil {
			return nil, err
		}
	}

	return set, nil
}

// ensureOptional fills the optional tables the simplifier requires.
func (s *tableSet) ensureOptional(cfg *config.Config) error {
	rowInc := cfg.Tables.RowsIncrement
	payloadInc := cfg.Tables.PayloadIncrement

	var err error

	if s.sites == nil {
		s.sites, err = tables.NewSiteTable(rowInc, payloadInc)
		if err != nil {
			return err
		}
	}

	if s.mutations == nil {
		s.mutations, err = tables.NewMutationTable(rowInc, payloadInc)
		if err != nil {
			return err
		}
	}

	return nil
}

// dump writes every loaded table back out under the prefix.
func (s *tableSet) dump(prefix string) error {
	err := writeFile(prefix+"nodes.txt", func(file *os.File) error {
		return textio.DumpNodes(file, s.nodes)
	})
	if err != nil {
		return err
	}

	err = writeFile(prefix+"edgesets.txt", func(file *os.File) error {
		return textio.DumpEdgesets(file, s.edgesets)
	})
	if err != nil {
		return err
	}

	if s.sites != nil {
		err = writeFile(prefix+"sites.txt", func(file *os.File) error {
			return textio.DumpSites(file, s.sites)
		})
		if err != nil {
			return err
		}
	}

	if s.mutations != nil {
		err = writeFile(prefix+"mutations.txt", func(file *os.File) error {
			return textio.DumpMutations(file, s.mutations)
		})
		if err != nil {
			return err
		}
	}

	if s.migrations != nil {
		err = writeFile(prefix+"migrations.txt", func(file *os.File) error {
			return textio.DumpMigrations(file, s.migrations)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func withFile(path string, fn func(*os.File) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer file.Close()

	if err := fn(file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := fn(file); err != nil {
		file.Close()

		return fmt.Errorf("%s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}
