// Command treeseq sorts, simplifies and inspects tree-sequence tables stored
// in the plain-text table format.
package main

import "github.com/Sumatoshi-tech/treeseq/cmd/treeseq/commands"

func main() {
	commands.Execute()
}
