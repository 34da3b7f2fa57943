package constrmgr

import (
	"context"
	"testing"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/eval"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/solver"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
	"github.com/stretchr/testify/require"
)

// stubTypes is a minimal types.TypeContext for tests that never need to
// resolve a procedure or a custom type.
type stubTypes struct {
	vars   map[string]types.Type
	locals map[string]bool
}

func (s *stubTypes) ResolveType(string) (types.Type, bool)            { return types.Type{}, false }
func (s *stubTypes) ProcedureSignature(string) (types.Signature, bool) { return types.Signature{}, false }
func (s *stubTypes) InScope(scope types.Scope, name string) bool {
	if scope == types.Locals {
		return s.locals[name]
	}
	_, ok := s.vars[name]
	return ok
}
func (s *stubTypes) TypeOf(name string) (types.Type, bool) {
	t, ok := s.vars[name]
	return t, ok
}

func newTestEvaluator(vars map[string]types.Type) *eval.Evaluator {
	mem := value.NewMemory()
	store := constraint.NewStore()
	tc := &stubTypes{vars: vars}
	return eval.New(mem, store, tc, gen.NewRandom(1))
}

// countingUnsatAfter is a fake Solver.Solver whose Check goes UNSAT once
// the logical path condition exceeds a threshold, letting these tests
// exercise the Manager's UNSAT wiring without a real SMT backend.
type countingUnsatAfter struct {
	threshold int
}

func (c *countingUnsatAfter) Check(_ context.Context, constraints []*value.Thunk, scopes int) (solver.Status, int, error) {
	if len(constraints) > c.threshold {
		return solver.UNSAT, scopes, nil
	}
	return solver.SAT, scopes, nil
}

func (c *countingUnsatAfter) Pick(_ context.Context, constraints []*value.Thunk, scopes int, bound *int, minimal bool) (solver.SolutionSeq, error) {
	return nil, nil
}

func TestCheckSatNoopWhenClean(t *testing.T) {
	ev := newTestEvaluator(nil)
	mgr := New(ev, &countingUnsatAfter{threshold: 0})
	require.NoError(t, mgr.CheckSat(context.Background(), ast.Position{}))
}

func TestCheckSatRaisesUnreachableOnUNSAT(t *testing.T) {
	ev := newTestEvaluator(map[string]types.Type{"x": types.IntType})
	mgr := New(ev, &countingUnsatAfter{threshold: 0})

	eqThunk, err := ev.Eval(&ast.BinaryExpr{Op: ast.BinEq, Left: &ast.VarExpr{Name: "x"}, Right: litExpr(1)})
	require.NoError(t, err)
	require.NoError(t, ev.Store.ExtendLogical(eqThunk))

	err = mgr.CheckSat(context.Background(), ast.Position{Line: 7})
	require.Error(t, err)
	failure, ok := err.(*bgerrors.Failure)
	require.True(t, ok)
	require.Equal(t, bgerrors.Unreachable, failure.Kind)
}

func TestSolveAndConcretizeMergesModelAndRewritesStores(t *testing.T) {
	ev := newTestEvaluator(map[string]types.Type{"x": types.IntType})
	mgr := New(ev, &fakeSatSolver{value: value.Int(9)})

	_, err := ev.Eval(&ast.VarExpr{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, mgr.SolveAndConcretize(context.Background(), ast.Position{}))

	xt, ok := ev.Mem.GetVar(value.RegionGlobals, "x")
	if !ok {
		xt, ok = ev.Mem.GetVar(value.RegionConstants, "x")
	}
	require.True(t, ok)
	require.True(t, xt.IsLiteral())
	i, ok := xt.AsInt()
	require.True(t, ok)
	require.Equal(t, "9", i.V.String())
}

// fakeSatSolver is always SAT and always picks the same fixed value for
// every collected ref.
type fakeSatSolver struct {
	value *value.IntegerValue
}

func (f *fakeSatSolver) Check(_ context.Context, _ []*value.Thunk, scopes int) (solver.Status, int, error) {
	return solver.SAT, scopes, nil
}

func (f *fakeSatSolver) Pick(_ context.Context, constraints []*value.Thunk, _ int, _ *int, _ bool) (solver.SolutionSeq, error) {
	refs := solver.CollectRefs(constraints)
	sol := make(solver.Solution, len(refs))
	for r := range refs {
		sol[r] = f.value
	}
	return &onceSeq{sol: sol}, nil
}

type onceSeq struct {
	sol  solver.Solution
	done bool
}

func (o *onceSeq) Next(_ context.Context) (solver.Solution, bool, error) {
	if o.done {
		return nil, false, nil
	}
	o.done = true
	return o.sol, true, nil
}

func litExpr(n int64) ast.Expression {
	return &ast.Literal{Kind: ast.LiteralInt, Int: value.Int(n).String()}
}
