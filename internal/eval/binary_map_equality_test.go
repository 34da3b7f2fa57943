package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

func mapEqExpr(op ast.BinaryOp, left, right string) *ast.BinaryExpr {
	return &ast.BinaryExpr{Op: op, Left: &ast.VarExpr{Name: left}, Right: &ast.VarExpr{Name: right}}
}

// TestReduceMapEqualityIdenticalRefShortCircuits exercises the
// identical-ref fast path: no quantifier machinery should be touched.
func TestReduceMapEqualityIdenticalRefShortCircuits(t *testing.T) {
	mt := intMapType()
	ev := New(value.NewMemory(), constraint.NewStore(), &stubTypes{vars: map[string]types.Type{"ml": mt, "mr": mt}}, gen.Resume(nil))
	ref := ev.Mem.FreshMapRef(mt, nil)
	ev.Mem.DefineGlobal("ml", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref, MapType: mt}))
	ev.Mem.DefineGlobal("mr", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref, MapType: mt}))

	result, err := ev.Eval(mapEqExpr(ast.BinEq, "ml", "mr"))
	require.NoError(t, err)
	b, ok := result.AsBool()
	require.True(t, ok)
	require.True(t, b)
	require.Empty(t, ev.Store.MapConstraints(ref), "identical refs must not invoke the quantifier unfolding")
}

// TestReduceMapEqualityDifferingTypesShortCircuits confirms maps of
// differing type compare literally false/true without solver involvement.
func TestReduceMapEqualityDifferingTypesShortCircuits(t *testing.T) {
	mt1 := intMapType()
	mt2 := types.MapType([]types.Type{types.BoolType}, types.IntType)
	ev := New(value.NewMemory(), constraint.NewStore(), &stubTypes{vars: map[string]types.Type{"ml": mt1, "mr": mt2}}, gen.Resume(nil))
	ref1 := ev.Mem.FreshMapRef(mt1, nil)
	ref2 := ev.Mem.FreshMapRef(mt2, nil)
	ev.Mem.DefineGlobal("ml", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref1, MapType: mt1}))
	ev.Mem.DefineGlobal("mr", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref2, MapType: mt2}))

	result, err := ev.Eval(mapEqExpr(ast.BinEq, "ml", "mr"))
	require.NoError(t, err)
	b, ok := result.AsBool()
	require.True(t, ok)
	require.False(t, b)

	result, err = ev.Eval(mapEqExpr(ast.BinNeq, "ml", "mr"))
	require.NoError(t, err)
	b, ok = result.AsBool()
	require.True(t, ok)
	require.True(t, b)
}

// TestReduceMapEqualityDistinctRefsUnfoldsToForall exercises the general
// case: two distinct, same-typed map refs must have their equality
// routed through the forall machinery (∀ bv. r1[bv] = r2[bv]) rather than
// being decided by ref identity alone.
func TestReduceMapEqualityDistinctRefsUnfoldsToForall(t *testing.T) {
	mt := intMapType()
	ev := New(value.NewMemory(), constraint.NewStore(), &stubTypes{vars: map[string]types.Type{"ml": mt, "mr": mt}}, gen.Resume([]int{1}))
	ref1 := ev.Mem.FreshMapRef(mt, nil)
	ref2 := ev.Mem.FreshMapRef(mt, nil)
	ev.Mem.DefineGlobal("ml", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref1, MapType: mt}))
	ev.Mem.DefineGlobal("mr", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref2, MapType: mt}))

	result, err := ev.Eval(mapEqExpr(ast.BinEq, "ml", "mr"))
	require.NoError(t, err)
	b, ok := result.AsBool()
	require.True(t, ok)
	require.True(t, b, "the attach branch of the unfolded forall optimistically reports true")

	require.Len(t, ev.Store.MapConstraints(ref1), 1, "the unfolded quantifier must attach a parametric constraint tying ref1's points to ref2's")
	require.Len(t, ev.Store.MapConstraints(ref2), 1, "...and symmetrically for ref2's own points")
}

// TestReduceMapEqualityInstantiatesAtMaterializedPoint confirms selecting a
// point on one side of the equated maps actually asserts the cross-map
// constraint, not just records an inert parametric constraint.
func TestReduceMapEqualityInstantiatesAtMaterializedPoint(t *testing.T) {
	mt := intMapType()
	ev := New(value.NewMemory(), constraint.NewStore(), &stubTypes{vars: map[string]types.Type{"ml": mt, "mr": mt}}, gen.Resume([]int{1}))
	ref1 := ev.Mem.FreshMapRef(mt, nil)
	ref2 := ev.Mem.FreshMapRef(mt, nil)
	ev.Mem.DefineGlobal("ml", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref1, MapType: mt}))
	ev.Mem.DefineGlobal("mr", value.Literal(ast.Position{}, &value.MapRefValue{Ref: ref2, MapType: mt}))

	_, err := ev.Eval(mapEqExpr(ast.BinEq, "ml", "mr"))
	require.NoError(t, err)

	_, err = ev.Eval(&ast.MapSelectExpr{Map: &ast.VarExpr{Name: "ml", Type: mt}, Args: []ast.Expression{intLit(5)}})
	require.NoError(t, err)
	drainPoints(t, ev)
	require.NotEmpty(t, ev.Store.LogicalConstraints(), "draining the ml[5] point should instantiate the attached cross-map equality there")
}
