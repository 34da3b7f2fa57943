// Command boogaloo drives the symbolic execution engine from the command
// line: run one procedure to a verdict, or step through its reachable
// executions interactively.
package main

import (
	"os"

	"github.com/halsten/boogaloo/cmd/boogaloo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
