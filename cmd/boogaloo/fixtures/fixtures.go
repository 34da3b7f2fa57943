// Package fixtures provides a small, hand-built *ast.Program plus its
// matching types.TypeContext for the CLI to exercise end to end. Parsing an
// external surface syntax into ast.Program, and type-checking the result
// into a types.TypeContext, are both out of scope for this module (the ast
// and types packages document themselves as consuming already-built,
// already-checked input from an external front end); the CLI fills that gap
// with a fixture the same way an integration test would, rather than
// inventing a parser this module was never asked to own.
package fixtures

import (
	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/types"
)

// StaticTypes is a types.TypeContext backed by a fixed table, standing in
// for a real type checker's output.
type StaticTypes struct {
	Types   map[string]types.Type
	Locals  map[string]bool
	Sigs    map[string]types.Signature
	Aliases map[string]types.Type
}

func (s *StaticTypes) ResolveType(name string) (types.Type, bool) {
	t, ok := s.Aliases[name]
	return t, ok
}

func (s *StaticTypes) ProcedureSignature(name string) (types.Signature, bool) {
	sig, ok := s.Sigs[name]
	return sig, ok
}

func (s *StaticTypes) InScope(scope types.Scope, name string) bool {
	if scope == types.Locals {
		return s.Locals[name]
	}
	_, ok := s.Types[name]
	return ok && !s.Locals[name]
}

func (s *StaticTypes) TypeOf(name string) (types.Type, bool) {
	t, ok := s.Types[name]
	return t, ok
}

// Transfer builds the demo program the run and enumerate subcommands drive:
//
//	var balance: int;
//
//	procedure transfer(amount: int) returns (ok: bool)
//	    requires amount >= 0;
//	    modifies balance;
//	{
//	    entry:
//	        goto check, reject;
//	    check:
//	        assume amount <= balance;
//	        balance := balance - amount;
//	        ok := true;
//	        return;
//	    reject:
//	        ok := false;
//	        return;
//	}
//
// It is small enough to read in full but exercises goto branching, havoc-
// free modifies tracking, a precondition, and a logical (non-literal)
// assume, the same shape as the worked scenarios in the spec's examples.
func Transfer() (*ast.Program, *StaticTypes) {
	proc := &ast.ProcedureDecl{
		Name:    "transfer",
		Formals: []ast.Formal{{Name: "amount", Type: types.IntType}},
		Rets:    []ast.Formal{{Name: "ok", Type: types.BoolType}},
		Requires: []ast.Clause{{
			Kind: ast.Precondition,
			Test: &ast.BinaryExpr{Op: ast.BinGe, Left: &ast.VarExpr{Name: "amount"}, Right: &ast.Literal{Kind: ast.LiteralInt, Int: "0"}},
		}},
		Modifies:   []string{"balance"},
		EntryLabel: "entry",
		Blocks: map[string]*ast.BasicBlock{
			"entry": {
				Label: "entry",
				Stmts: []ast.Statement{
					&ast.GotoStmt{Targets: []string{"check", "reject"}},
				},
			},
			"check": {
				Label: "check",
				Stmts: []ast.Statement{
					&ast.PredicateStmt{
						Free: true,
						Clause: ast.Clause{
							Test: &ast.BinaryExpr{Op: ast.BinLe, Left: &ast.VarExpr{Name: "amount"}, Right: &ast.VarExpr{Name: "balance"}},
						},
					},
					&ast.AssignStmt{
						Lhss: []ast.Lhs{{Name: "balance"}},
						Rhss: []ast.Expression{&ast.BinaryExpr{Op: ast.BinSub, Left: &ast.VarExpr{Name: "balance"}, Right: &ast.VarExpr{Name: "amount"}}},
					},
					&ast.AssignStmt{
						Lhss: []ast.Lhs{{Name: "ok"}},
						Rhss: []ast.Expression{&ast.Literal{Kind: ast.LiteralBool, Bool: true}},
					},
					&ast.ReturnStmt{},
				},
			},
			"reject": {
				Label: "reject",
				Stmts: []ast.Statement{
					&ast.AssignStmt{
						Lhss: []ast.Lhs{{Name: "ok"}},
						Rhss: []ast.Expression{&ast.Literal{Kind: ast.LiteralBool, Bool: false}},
					},
					&ast.ReturnStmt{},
				},
			},
		},
	}

	prog := &ast.Program{
		Procedures: []*ast.ProcedureDecl{proc},
		Globals:    []*ast.VarDecl{{Name: "balance", Type: types.IntType}},
	}

	tc := &StaticTypes{
		Types: map[string]types.Type{
			"amount":  types.IntType,
			"ok":      types.BoolType,
			"balance": types.IntType,
		},
		Locals: map[string]bool{"amount": true, "ok": true},
		Sigs: map[string]types.Signature{
			"transfer": {
				Formals:  []types.Param{{Name: "amount", Type: types.IntType}},
				Returns:  []types.Param{{Name: "ok", Type: types.BoolType}},
				Modifies: []string{"balance"},
			},
		},
	}
	return prog, tc
}
