package solver

import (
	"context"
	"math/big"
	"testing"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
	"github.com/stretchr/testify/require"
)

func TestTrivialCheckAlwaysSAT(t *testing.T) {
	tv := NewTrivial(gen.NewRandom(1), big.NewInt(5))
	status, scopes, err := tv.Check(context.Background(), []*value.Thunk{
		value.Literal(ast.Position{}, value.Bool(false)),
	}, 3)
	require.NoError(t, err)
	require.Equal(t, SAT, status)
	require.Equal(t, 3, scopes)
}

func TestTrivialPickSamplesEveryCollectedRef(t *testing.T) {
	tv := NewTrivial(gen.NewRandom(1), big.NewInt(5))
	r1 := value.NewRef()
	r2 := value.NewRef()
	constraints := []*value.Thunk{
		value.Binary(ast.Position{}, ast.BinLt,
			value.LogicalRef(ast.Position{}, r1, types.IntType),
			value.LogicalRef(ast.Position{}, r2, types.IntType)),
	}
	bound := 1
	seq, err := tv.Pick(context.Background(), constraints, 0, &bound, false)
	require.NoError(t, err)

	sol, ok, err := seq.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, sol, r1)
	require.Contains(t, sol, r2)

	_, ok, err = seq.Next(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCollectRefsIgnoresLiterals(t *testing.T) {
	r := value.NewRef()
	c := value.Binary(ast.Position{}, ast.BinEq,
		value.LogicalRef(ast.Position{}, r, types.IntType),
		value.Literal(ast.Position{}, value.Int(3)))
	refs := CollectRefs([]*value.Thunk{c})
	require.Len(t, refs, 1)
	require.Contains(t, refs, r)
}

func TestBuildBlockingClauseExcludesPriorPlainValues(t *testing.T) {
	r := value.NewRef()
	prev := Solution{r: value.Int(4)}
	clause := BuildBlockingClause(prev, map[value.Ref]types.Type{r: types.IntType})
	require.Equal(t, value.TermBinary, clause.Kind)
	require.Equal(t, ast.BinNeq, clause.BinOp)
}

func TestBuildBlockingClauseDistinguishesOpaqueClasses(t *testing.T) {
	ty := types.CustomType("Color")
	a, b, c := value.NewRef(), value.NewRef(), value.NewRef()
	prev := Solution{
		a: &value.CustomValue{Tag: 1, CType: ty},
		b: &value.CustomValue{Tag: 1, CType: ty},
		c: &value.CustomValue{Tag: 2, CType: ty},
	}
	refTypes := map[value.Ref]types.Type{a: ty, b: ty, c: ty}
	clause := BuildBlockingClause(prev, refTypes)
	require.NotNil(t, clause)
}

func TestBuildBlockingClauseEmptyModelIsFalse(t *testing.T) {
	clause := BuildBlockingClause(Solution{}, nil)
	b, ok := clause.AsBool()
	require.True(t, ok)
	require.False(t, b)
}
