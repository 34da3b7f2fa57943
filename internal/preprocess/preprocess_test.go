package preprocess

import (
	"testing"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	"github.com/halsten/boogaloo/internal/eval"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
	"github.com/stretchr/testify/require"
)

type stubTypes struct {
	vars map[string]types.Type
}

func (s *stubTypes) ResolveType(string) (types.Type, bool)            { return types.Type{}, false }
func (s *stubTypes) ProcedureSignature(string) (types.Signature, bool) { return types.Signature{}, false }
func (s *stubTypes) InScope(scope types.Scope, name string) bool       { return false }
func (s *stubTypes) TypeOf(name string) (types.Type, bool) {
	t, ok := s.vars[name]
	return t, ok
}

func newTestEvaluator(vars map[string]types.Type) *eval.Evaluator {
	return eval.New(value.NewMemory(), constraint.NewStore(), &stubTypes{vars: vars}, gen.NewRandom(1))
}

// TestRegisterFunctionStoresBodiedMacroAndAxiom checks that a bodied
// function becomes both an inlineable macro and a global name constraint
// equating a call to its body.
func TestRegisterFunctionStoresBodiedMacroAndAxiom(t *testing.T) {
	ev := newTestEvaluator(nil)
	pp := New(ev)

	// body references a free global "g" (not just the bound formal "n") so
	// the emitted axiom carries a nonzero free-name set to key on: a macro
	// whose body only ever mentions its own formals closes under
	// quantification and would register under no name at all.
	fn := &ast.FunctionDecl{
		Name:    "addG",
		Formals: []ast.Formal{{Name: "n", Type: types.IntType}},
		Result:  types.IntType,
		Body: &ast.BinaryExpr{
			Op:    ast.BinAdd,
			Left:  &ast.VarExpr{Name: "n"},
			Right: &ast.VarExpr{Name: "g"},
		},
	}
	_, err := pp.Run(&ast.Program{Functions: []*ast.FunctionDecl{fn}})
	require.NoError(t, err)

	require.Contains(t, ev.Macros, "addG")
	require.Len(t, ev.Store.NameConstraints(types.Globals, "g"), 1)
}

// TestRegisterFunctionAllocatesUninterpretedRef checks that a bodyless
// function gets a persistent map reference instead of a macro entry.
func TestRegisterFunctionAllocatesUninterpretedRef(t *testing.T) {
	ev := newTestEvaluator(nil)
	pp := New(ev)

	fn := &ast.FunctionDecl{
		Name:    "hash",
		Formals: []ast.Formal{{Name: "n", Type: types.IntType}},
		Result:  types.IntType,
	}
	_, err := pp.Run(&ast.Program{Functions: []*ast.FunctionDecl{fn}})
	require.NoError(t, err)

	require.NotContains(t, ev.Macros, "hash")
	ref, ok := ev.UninterpretedRefs["hash"]
	require.True(t, ok)
	_, ok = ev.Mem.GetMapInstance(ref)
	require.True(t, ok)
}

// TestRegisterUniqueConstantsAddsPairwiseDisequality checks that three
// unique constants of the same type yield three pairwise != constraints
// over the logical path condition.
func TestRegisterUniqueConstantsAddsPairwiseDisequality(t *testing.T) {
	colorType := types.CustomType("Color")
	ev := newTestEvaluator(map[string]types.Type{
		"Red": colorType, "Green": colorType, "Blue": colorType,
	})
	pp := New(ev)

	consts := []*ast.ConstDecl{
		{Name: "Red", Type: colorType, Unique: true},
		{Name: "Green", Type: colorType, Unique: true},
		{Name: "Blue", Type: colorType, Unique: true},
	}
	_, err := pp.Run(&ast.Program{Consts: consts})
	require.NoError(t, err)
	require.Len(t, ev.Store.LogicalConstraints(), 3)
}

// TestRunReturnsProceduresByName exercises the pass-through to
// ast.Program.ProceduresByName, including two implementations of one name.
func TestRunReturnsProceduresByName(t *testing.T) {
	ev := newTestEvaluator(nil)
	pp := New(ev)

	p1 := &ast.ProcedureDecl{Name: "f"}
	p2 := &ast.ProcedureDecl{Name: "f"}
	procs, err := pp.Run(&ast.Program{Procedures: []*ast.ProcedureDecl{p1, p2}})
	require.NoError(t, err)
	require.Len(t, procs["f"], 2)
}
