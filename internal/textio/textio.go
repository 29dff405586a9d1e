// Package textio reads and writes the whitespace-separated text encoding of
// the tree-sequence tables used by the CLI. Each line is one row; blank
// lines and lines starting with '#' are skipped. The dump format round-trips
// through the loaders.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/treeseq/pkg/tables"
)

// scanRows feeds every non-comment, non-blank line's fields to fn with its
// 1-based line number.
func scanRows(r io.Reader, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if err := fn(line, strings.Fields(text)); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan rows: %w", err)
	}

	return nil
}

func parseFloat(line int, field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %q: %w", line, field, err)
	}

	return v, nil
}

func parseID(line int, field string) (int32, error) {
	v, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: %q: %w", line, field, err)
	}

	return int32(v), nil
}

// LoadNodes reads rows of the form "flags time population [name]".
func LoadNodes(r io.Reader, rowsIncrement, nameLengthIncrement int) (*tables.NodeTable, error) {
	t, err := tables.NewNodeTable(rowsIncrement, nameLengthIncrement)
	if err != nil {
		return nil, err
	}

	err = scanRows(r, func(line int, fields []string) error {
		if len(fields) < 3 {
			return fmt.Errorf("line %d: node row needs flags, time and population", line)
		}

		flags, parseErr := strconv.ParseUint(fields[0], 10, 32)
		if parseErr != nil {
			return fmt.Errorf("line %d: %q: %w", line, fields[0], parseErr)
		}

		time, parseErr := parseFloat(line, fields[1])
		if parseErr != nil {
			return parseErr
		}

		population, parseErr := parseID(line, fields[2])
		if parseErr != nil {
			return parseErr
		}

		name := ""
		if len(fields) > 3 {
			name = fields[3]
		}

		_, addErr := t.AddRow(uint32(flags), time, tables.PopulationID(population), name)

		return addErr
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// LoadEdgesets reads rows of the form "left right parent c1,c2,...".
func LoadEdgesets(r io.Reader, rowsIncrement, childrenLengthIncrement int) (*tables.EdgesetTable, error) {
	t, err := tables.NewEdgesetTable(rowsIncrement, childrenLengthIncrement)
	if err != nil {
		return nil, err
	}

	err = scanRows(r, func(line int, fields []string) error {
		if len(fields) != 4 {
			return fmt.Errorf("line %d: edgeset row needs left, right, parent and children", line)
		}

		left, parseErr := parseFloat(line, fields[0])
		if parseErr != nil {
			return parseErr
		}

		right, parseErr := parseFloat(line, fields[1])
		if parseErr != nil {
			return parseErr
		}

		parent, parseErr := parseID(line, fields[2])
		if parseErr != nil {
			return parseErr
		}

		idFields := strings.Split(fields[3], ",")
		children := make([]tables.NodeID, 0, len(idFields))

		for _, f := range idFields {
			child, childErr := parseID(line, f)
			if childErr != nil {
				return childErr
			}

			children = append(children, tables.NodeID(child))
		}

		return t.AddRow(left, right, tables.NodeID(parent), children)
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// LoadSites reads rows of the form "position ancestral_state".
func LoadSites(r io.Reader, rowsIncrement, stateLengthIncrement int) (*tables.SiteTable, error) {
	t, err := tables.NewSiteTable(rowsIncrement, stateLengthIncrement)
	if err != nil {
		return nil, err
	}

	err = scanRows(r, func(line int, fields []string) error {
		if len(fields) != 2 {
			return fmt.Errorf("line %d: site row needs position and ancestral state", line)
		}

		position, parseErr := parseFloat(line, fields[0])
		if parseErr != nil {
			return parseErr
		}

		return t.AddRow(position, []byte(fields[1]))
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// LoadMutations reads rows of the form "site node derived_state".
func LoadMutations(r io.Reader, rowsIncrement, stateLengthIncrement int) (*tables.MutationTable, error) {
	t, err := tables.NewMutationTable(rowsIncrement, stateLengthIncrement)
	if err != nil {
		return nil, err
	}

	err = scanRows(r, func(line int, fields []string) error {
		if len(fields) != 3 {
			return fmt.Errorf("line %d: mutation row needs site, node and derived state", line)
		}

		site, parseErr := parseID(line, fields[0])
		if parseErr != nil {
			return parseErr
		}

		node, parseErr := parseID(line, fields[1])
		if parseErr != nil {
			return parseErr
		}

		return t.AddRow(tables.SiteID(site), tables.NodeID(node), []byte(fields[2]))
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// LoadMigrations reads rows of the form "left right node source dest time".
func LoadMigrations(r io.Reader, rowsIncrement int) (*tables.MigrationTable, error) {
	t, err := tables.NewMigrationTable(rowsIncrement)
	if err != nil {
		return nil, err
	}

	err = scanRows(r, func(line int, fields []string) error {
		if len(fields) != 6 {
			return fmt.Errorf("line %d: migration row needs left, right, node, source, dest and time", line)
		}

		left, parseErr := parseFloat(line, fields[0])
		if parseErr != nil {
			return parseErr
		}

		right, parseErr := parseFloat(line, fields[1])
		if parseErr != nil {
			return parseErr
		}

		node, parseErr := parseID(line, fields[2])
		if parseErr != nil {
			return parseErr
		}

		source, parseErr := parseID(line, fields[3])
		if parseErr != nil {
			return parseErr
		}

		dest, parseErr := parseID(line, fields[4])
		if parseErr != nil {
			return parseErr
		}

		time, parseErr := parseFloat(line, fields[5])
		if parseErr != nil {
			return parseErr
		}

		return t.AddRow(left, right, tables.NodeID(node),
			tables.PopulationID(source), tables.PopulationID(dest), time)
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// DumpNodes writes the loader format for a node table.
func DumpNodes(w io.Writer, t *tables.NodeTable) error {
	offset := 0

	for j := range t.NumRows() {
		name := string(t.NameRow(j, offset))
		offset += int(t.NameLength[j])

		var err error
		if name == "" {
			_, err = fmt.Fprintf(w, "%d %v %d\n", t.Flags[j], t.Time[j], t.Population[j])
		} else {
			_, err = fmt.Fprintf(w, "%d %v %d %s\n", t.Flags[j], t.Time[j], t.Population[j], name)
		}

		if err != nil {
			return fmt.Errorf("dump nodes: %w", err)
		}
	}

	return nil
}

// DumpEdgesets writes the loader format for an edgeset table.
func DumpEdgesets(w io.Writer, t *tables.EdgesetTable) error {
	offset := 0

	for j := range t.NumRows() {
		children := t.ChildrenRow(j, offset)
		offset += len(children)

		ids := make([]string, len(children))
		for k, c := range children {
			ids[k] = strconv.Itoa(int(c))
		}

		_, err := fmt.Fprintf(w, "%v %v %d %s\n", t.Left[j], t.Right[j], t.Parent[j], strings.Join(ids, ","))
		if err != nil {
			return fmt.Errorf("dump edgesets: %w", err)
		}
	}

	return nil
}

// DumpSites writes the loader format for a site table.
func DumpSites(w io.Writer, t *tables.SiteTable) error {
	offset := 0

	for j := range t.NumRows() {
		state := t.AncestralState[offset : offset+int(t.AncestralStateLength[j])]
		offset += int(t.AncestralStateLength[j])

		_, err := fmt.Fprintf(w, "%v %s\n", t.Position[j], string(state))
		if err != nil {
			return fmt.Errorf("dump sites: %w", err)
		}
	}

	return nil
}

// DumpMutations writes the loader format for a mutation table.
func DumpMutations(w io.Writer, t *tables.MutationTable) error {
	offset := 0

	for j := range t.NumRows() {
		state := t.DerivedState[offset : offset+int(t.DerivedStateLength[j])]
		offset += int(t.DerivedStateLength[j])

		_, err := fmt.Fprintf(w, "%d %d %s\n", t.Site[j], t.Node[j], string(state))
		if err != nil {
			return fmt.Errorf("dump mutations: %w", err)
		}
	}

	return nil
}

// DumpMigrations writes the loader format for a migration table.
func DumpMigrations(w io.Writer, t *tables.MigrationTable) error {
	for j := range t.NumRows() {
		_, err := fmt.Fprintf(w, "%v %v %d %d %d %v\n", t.Left[j], t.Right[j],
			t.Node[j], t.Source[j], t.Dest[j], t.Time[j])
		if err != nil {
			return fmt.Errorf("dump migrations: %w", err)
		}
	}

	return nil
}
