package exec

import (
	"context"
	"sort"

	"github.com/halsten/boogaloo/ast"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/maruel/natural"
)

// execGoto picks one of Targets to run next: it orders the labels not yet
// tried at this branch point least-visited first, so repeated exploration
// doesn't starve rarely-taken edges, breaking ties with a natural-order
// sort of the label names, and asks the Generator for an index into that
// order, so the choice is deterministic given a fixed Generator and leans
// toward less-visited labels without always taking one. If the chosen successor turns out Unreachable, its logical
// additions are rolled back and another untried target is picked; if every
// target is Unreachable, that is propagated to the caller.
func (ex *Executor) execGoto(ctx context.Context, pc *procCtx, stmt *ast.GotoStmt) (ast.Position, error) {
	targets := append([]string(nil), stmt.Targets...)
	sort.Sort(natural.StringSlice(targets))

	tried := make(map[string]bool, len(targets))
	var lastErr error
	for len(tried) < len(targets) {
		remaining := make([]string, 0, len(targets)-len(tried))
		for _, l := range targets {
			if !tried[l] {
				remaining = append(remaining, l)
			}
		}
		sort.SliceStable(remaining, func(i, j int) bool {
			return ex.jumpCount(pc.proc.Name, remaining[i]) < ex.jumpCount(pc.proc.Name, remaining[j])
		})

		label := remaining[ex.Gen.Index(len(remaining))]
		tried[label] = true
		ex.bumpJumpCount(pc.proc.Name, label)

		mark := ex.Eval.Store.Mark()
		pos, err := ex.execBlock(ctx, pc, label)
		if err == nil {
			return pos, nil
		}
		if isUnreachable(err) {
			ex.Eval.Store.Rollback(mark)
			lastErr = err
			continue
		}
		return ast.Position{}, err
	}
	return ast.Position{}, lastErr
}

func isUnreachable(err error) bool {
	f, ok := err.(*bgerrors.Failure)
	return ok && f.Kind == bgerrors.Unreachable
}

func (ex *Executor) jumpCount(proc, label string) int {
	return ex.jumpCounts[proc+"\x1f"+label]
}

func (ex *Executor) bumpJumpCount(proc, label string) {
	ex.jumpCounts[proc+"\x1f"+label]++
}
