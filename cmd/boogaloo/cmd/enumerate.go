package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/cmd/boogaloo/fixtures"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/solver"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/pkg/boogaloo"
)

var (
	enumerateEntry          string
	enumerateAmount         int64
	enumerateBound          int
	enumerateAltCount       int
	enumerateNonInteractive bool
)

var enumerateCmd = &cobra.Command{
	Use:   "enumerate",
	Short: "Step through a procedure's reachable executions one path at a time",
	Long: `enumerate drives the Exhaustive generator's depth-first choice
enumeration: each path through the fixture program's goto
branches is executed in turn, with the next sibling path chosen by
advancing the deepest still-open decision. Press enter to advance, or
pass --non-interactive to print every path up to --bound without waiting.`,
	RunE: runEnumerate,
}

func init() {
	rootCmd.AddCommand(enumerateCmd)

	enumerateCmd.Flags().StringVar(&enumerateEntry, "entry", "transfer", "procedure to enumerate")
	enumerateCmd.Flags().Int64Var(&enumerateAmount, "amount", 10, "integer argument bound to the entry procedure's sole formal")
	enumerateCmd.Flags().IntVar(&enumerateBound, "bound", 8, "maximum number of paths to explore")
	enumerateCmd.Flags().IntVar(&enumerateAltCount, "alt-count", 2, "alternatives assumed available at each decision point")
	enumerateCmd.Flags().BoolVar(&enumerateNonInteractive, "non-interactive", false, "print every path without prompting")
}

func runEnumerate(cmd *cobra.Command, _ []string) error {
	configureLogging(cmd)

	prog, tc := fixtures.Transfer()
	args := []*value.Thunk{value.Literal(ast.Position{}, value.Int(enumerateAmount))}
	altCounts := make([]int, 32)
	for i := range altCounts {
		altCounts[i] = enumerateAltCount
	}

	var line *liner.State
	if !enumerateNonInteractive {
		line = liner.NewLiner()
		defer line.Close()
	}

	var choices []int
	for path := 0; path < enumerateBound; path++ {
		g := gen.Resume(choices)
		backend := solver.NewTrivial(gen.NewRandom(1), big.NewInt(100))

		engine := boogaloo.New()
		result, err := engine.ExecuteProgram(context.Background(), prog, tc, backend, g, enumerateEntry, args)
		if err != nil {
			return fmt.Errorf("execute_program: %w", err)
		}

		fmt.Printf("path %d %s: ", path, formatChoices(g.Choices()))
		printVerdict(result)

		next, ok := gen.NextPath(g.Choices(), altCounts)
		if !ok {
			fmt.Println(color.CyanString("enumeration exhausted"))
			return nil
		}
		choices = next

		if line != nil {
			if _, err := line.Prompt("-- press enter for next path, Ctrl-D to stop -- "); err != nil {
				return nil
			}
		}
	}
	fmt.Println(color.CyanString("reached --bound paths"))
	return nil
}

func formatChoices(choices []int) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
