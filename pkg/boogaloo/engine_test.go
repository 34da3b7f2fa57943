package boogaloo

import (
	"context"
	"math/big"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/halsten/boogaloo/ast"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/solver"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// stubTypes is the minimal types.TypeContext an engine-level test needs: a
// single procedure's formal/local vars, no custom types or globals.
type stubTypes struct {
	locals map[string]bool
	vars   map[string]types.Type
	sigs   map[string]types.Signature
}

func (s *stubTypes) ResolveType(string) (types.Type, bool) { return types.Type{}, false }

func (s *stubTypes) ProcedureSignature(name string) (types.Signature, bool) {
	sig, ok := s.sigs[name]
	return sig, ok
}

func (s *stubTypes) InScope(scope types.Scope, name string) bool {
	if scope == types.Locals {
		return s.locals[name]
	}
	return false
}

func (s *stubTypes) TypeOf(name string) (types.Type, bool) {
	t, ok := s.vars[name]
	return t, ok
}

// doubleProgram builds `procedure f(x: int) returns (y: int) requires x > 0;
// ensures y > x; { y := x * 2; return; }`.
func doubleProgram() *ast.Program {
	proc := &ast.ProcedureDecl{
		Name:    "f",
		Formals: []ast.Formal{{Name: "x", Type: types.IntType}},
		Rets:    []ast.Formal{{Name: "y", Type: types.IntType}},
		Requires: []ast.Clause{{
			Kind: ast.Precondition,
			Test: &ast.BinaryExpr{Op: ast.BinGt, Left: &ast.VarExpr{Name: "x"}, Right: &ast.Literal{Kind: ast.LiteralInt, Int: "0"}},
		}},
		Ensures: []ast.Clause{{
			Kind: ast.Postcondition,
			Test: &ast.BinaryExpr{Op: ast.BinGt, Left: &ast.VarExpr{Name: "y"}, Right: &ast.VarExpr{Name: "x"}},
		}},
		EntryLabel: "entry",
		Blocks: map[string]*ast.BasicBlock{
			"entry": {
				Label: "entry",
				Stmts: []ast.Statement{
					&ast.AssignStmt{
						Lhss: []ast.Lhs{{Name: "y"}},
						Rhss: []ast.Expression{&ast.BinaryExpr{Op: ast.BinMul, Left: &ast.VarExpr{Name: "x"}, Right: &ast.Literal{Kind: ast.LiteralInt, Int: "2"}}},
					},
					&ast.ReturnStmt{},
				},
			},
		},
	}
	return &ast.Program{Procedures: []*ast.ProcedureDecl{proc}}
}

func newStubTypes() *stubTypes {
	return &stubTypes{
		locals: map[string]bool{"x": true, "y": true},
		vars:   map[string]types.Type{"x": types.IntType, "y": types.IntType},
	}
}

func TestExecuteProgramPass(t *testing.T) {
	e := New()
	backend := solver.NewTrivial(gen.NewRandom(1), big.NewInt(5))
	tc, err := e.ExecuteProgram(context.Background(), doubleProgram(), newStubTypes(), backend, gen.NewRandom(1), "f",
		[]*value.Thunk{value.Literal(ast.Position{}, value.Int(3))})
	require.NoError(t, err)
	require.Equal(t, Pass, tc.Verdict())
	require.Len(t, tc.Returns, 1)
	i, ok := tc.Returns[0].AsInt()
	require.True(t, ok)
	require.Equal(t, "6", i.V.String())
}

func TestExecuteProgramPreconditionFailureIsFail(t *testing.T) {
	e := New()
	backend := solver.NewTrivial(gen.NewRandom(1), big.NewInt(5))
	tc, err := e.ExecuteProgram(context.Background(), doubleProgram(), newStubTypes(), backend, gen.NewRandom(1), "f",
		[]*value.Thunk{value.Literal(ast.Position{}, value.Int(-1))})
	require.NoError(t, err)
	require.Equal(t, Fail, tc.Verdict())
	require.Equal(t, bgerrors.AssertionViolated, tc.Failure.Kind)
	require.Equal(t, ast.Precondition, tc.Failure.ClauseKind)
}

func TestExecuteProgramUndefinedEntryReturnsError(t *testing.T) {
	e := New()
	backend := solver.NewTrivial(gen.NewRandom(1), big.NewInt(5))
	_, err := e.ExecuteProgram(context.Background(), doubleProgram(), newStubTypes(), backend, gen.NewRandom(1), "nope", nil)
	require.Error(t, err)
}

// havocSquareProgram builds `procedure p() { var x: int; havoc x;
// assert x*x >= 0; }`.
func havocSquareProgram() *ast.Program {
	proc := &ast.ProcedureDecl{
		Name:       "p",
		EntryLabel: "entry",
		Blocks: map[string]*ast.BasicBlock{
			"entry": {
				Label: "entry",
				Stmts: []ast.Statement{
					&ast.HavocStmt{Names: []string{"x"}},
					&ast.PredicateStmt{
						Assert: true,
						Clause: ast.Clause{
							Kind: ast.Inline,
							Test: &ast.BinaryExpr{
								Op:    ast.BinGe,
								Left:  &ast.BinaryExpr{Op: ast.BinMul, Left: &ast.VarExpr{Name: "x"}, Right: &ast.VarExpr{Name: "x"}},
								Right: &ast.Literal{Kind: ast.LiteralInt, Int: "0"},
							},
						},
					},
					&ast.ReturnStmt{},
				},
			},
		},
	}
	return &ast.Program{Procedures: []*ast.ProcedureDecl{proc}}
}

// TestExecuteProgramHavocAndAssertPasses drives the havoc-then-assert
// scenario down the assert's passing branch: the symbolic x*x >= 0 is
// assumed and the run concretizes to a pass.
func TestExecuteProgramHavocAndAssertPasses(t *testing.T) {
	e := New()
	tctx := &stubTypes{locals: map[string]bool{"x": true}, vars: map[string]types.Type{"x": types.IntType}}
	backend := solver.NewTrivial(gen.NewRandom(1), big.NewInt(100))

	// The first choice picks among the (single) implementation; the second
	// forces the assert's Bool to True.
	tc, err := e.ExecuteProgram(context.Background(), havocSquareProgram(), tctx, backend, gen.Resume([]int{0, 1}), "p", nil)
	require.NoError(t, err)
	require.Equal(t, Pass, tc.Verdict())
}

// divProgram builds `procedure d() returns (r: int) { var a, b: int;
// havoc a; havoc b; r := a div b; }`.
func divProgram() *ast.Program {
	proc := &ast.ProcedureDecl{
		Name:       "d",
		Rets:       []ast.Formal{{Name: "r", Type: types.IntType}},
		EntryLabel: "entry",
		Blocks: map[string]*ast.BasicBlock{
			"entry": {
				Label: "entry",
				Stmts: []ast.Statement{
					&ast.HavocStmt{Names: []string{"a", "b"}},
					&ast.AssignStmt{
						Lhss: []ast.Lhs{{Name: "r"}},
						Rhss: []ast.Expression{&ast.BinaryExpr{Op: ast.BinDiv, Left: &ast.VarExpr{Name: "a"}, Right: &ast.VarExpr{Name: "b"}}},
					},
					&ast.ReturnStmt{},
				},
			},
		},
	}
	return &ast.Program{Procedures: []*ast.ProcedureDecl{proc}}
}

// TestExecuteProgramDivByHavocedValuesPasses: division by a havoc'd (and so
// possibly zero) divisor is underconstrained, never a failure.
func TestExecuteProgramDivByHavocedValuesPasses(t *testing.T) {
	e := New()
	tctx := &stubTypes{
		locals: map[string]bool{"a": true, "b": true, "r": true},
		vars:   map[string]types.Type{"a": types.IntType, "b": types.IntType, "r": types.IntType},
	}
	backend := solver.NewTrivial(gen.NewRandom(3), big.NewInt(100))

	tc, err := e.ExecuteProgram(context.Background(), divProgram(), tctx, backend, gen.NewRandom(3), "d", nil)
	require.NoError(t, err)
	require.Equal(t, Pass, tc.Verdict())
	require.Nil(t, tc.Failure)
	require.Len(t, tc.Returns, 1)
}

// TestExecuteProgramSolvePassingOffKeepsSymbolicState: with the
// solve_passing flag off, a passing run is reported without a model, so
// its return value still carries symbolic structure.
func TestExecuteProgramSolvePassingOffKeepsSymbolicState(t *testing.T) {
	e := New()
	e.SolvePassing = false
	tctx := &stubTypes{
		locals: map[string]bool{"a": true, "b": true, "r": true},
		vars:   map[string]types.Type{"a": types.IntType, "b": types.IntType, "r": types.IntType},
	}
	backend := solver.NewTrivial(gen.NewRandom(3), big.NewInt(100))

	tc, err := e.ExecuteProgram(context.Background(), divProgram(), tctx, backend, gen.NewRandom(3), "d", nil)
	require.NoError(t, err)
	require.Equal(t, Pass, tc.Verdict())
	require.Len(t, tc.Returns, 1)
	require.False(t, tc.Returns[0].IsLiteral(), "without solve_passing the division result stays symbolic")
}

// unsatWithConstraints is a fake backend that reports UNSAT the moment the
// path condition is non-empty, standing in for a real solver detecting a
// contradiction the Trivial fallback cannot see.
type unsatWithConstraints struct{}

func (unsatWithConstraints) Check(_ context.Context, constraints []*value.Thunk, scopes int) (solver.Status, int, error) {
	if len(constraints) > 0 {
		return solver.UNSAT, scopes, nil
	}
	return solver.SAT, scopes, nil
}

func (unsatWithConstraints) Pick(_ context.Context, _ []*value.Thunk, _ int, _ *int, _ bool) (solver.SolutionSeq, error) {
	return nil, nil
}

// TestExecuteProgramContradictoryUniqueAxiomIsInvalid: two unique constants
// of the same opaque type plus an axiom equating them is unsatisfiable, so
// a solver that can see the contradiction classifies the run as invalid.
func TestExecuteProgramContradictoryUniqueAxiomIsInvalid(t *testing.T) {
	colorType := types.CustomType("T")
	prog := &ast.Program{
		Consts: []*ast.ConstDecl{
			{Name: "a", Type: colorType, Unique: true},
			{Name: "b", Type: colorType, Unique: true},
		},
		Axioms: []*ast.AxiomDecl{{
			Body: &ast.BinaryExpr{Op: ast.BinEq, Left: &ast.VarExpr{Name: "a"}, Right: &ast.VarExpr{Name: "b"}},
		}},
		Procedures: []*ast.ProcedureDecl{{
			Name:       "p",
			EntryLabel: "entry",
			Blocks: map[string]*ast.BasicBlock{
				"entry": {Label: "entry", Stmts: []ast.Statement{&ast.ReturnStmt{}}},
			},
		}},
	}
	tctx := &stubTypes{vars: map[string]types.Type{"a": colorType, "b": colorType}}

	e := New()
	tc, err := e.ExecuteProgram(context.Background(), prog, tctx, unsatWithConstraints{}, gen.NewRandom(1), "p", nil)
	require.NoError(t, err)
	require.Equal(t, Invalid, tc.Verdict())
	require.Equal(t, bgerrors.Unreachable, tc.Failure.Kind)
}

// TestToJSONSnapshot pins the JSON report shape for a simple, fully
// deterministic TestCase (no generated run id, no failure).
func TestToJSONSnapshot(t *testing.T) {
	tc := &TestCase{
		RunID:          "fixed-run-id",
		EntrySignature: "f(x: int)",
		Returns:        []*value.Thunk{value.Literal(ast.Position{}, value.Int(6))},
	}
	doc, err := tc.ToJSON()
	require.NoError(t, err)
	snaps.MatchJSON(t, doc)
}
