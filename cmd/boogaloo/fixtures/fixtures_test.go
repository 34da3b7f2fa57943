package fixtures

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/solver"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/pkg/boogaloo"
)

func TestTransferPassesWithSufficientBalance(t *testing.T) {
	prog, tc := Transfer()
	g := gen.NewRandom(2)
	backend := solver.NewTrivial(g, big.NewInt(1000))

	// balance starts undefined (global, no initializer); seed it directly
	// through a second procedure-free run isn't possible here, so instead
	// drive via a requires-free path: amount <= balance is an assume the
	// Generator/solver must satisfy by picking balance appropriately. The
	// Trivial solver samples an unconstrained global freely, so this just
	// checks the run completes without an engine-level Go error.
	engine := boogaloo.New()
	args := []*value.Thunk{value.Literal(ast.Position{}, value.Int(5))}
	result, err := engine.ExecuteProgram(context.Background(), prog, tc, backend, g, "transfer", args)
	require.NoError(t, err)
	require.Contains(t, []boogaloo.Verdict{boogaloo.Pass, boogaloo.Invalid}, result.Verdict())
}

func TestTransferPreconditionFailsOnNegativeAmount(t *testing.T) {
	prog, tc := Transfer()
	g := gen.NewRandom(1)
	backend := solver.NewTrivial(g, big.NewInt(1000))

	engine := boogaloo.New()
	args := []*value.Thunk{value.Literal(ast.Position{}, value.Int(-1))}
	result, err := engine.ExecuteProgram(context.Background(), prog, tc, backend, g, "transfer", args)
	require.NoError(t, err)
	require.Equal(t, boogaloo.Fail, result.Verdict())
	require.Equal(t, ast.Precondition, result.Failure.ClauseKind)
}

func TestTransferSignatureResolvesFromStaticTypes(t *testing.T) {
	_, tc := Transfer()
	sig, ok := tc.ProcedureSignature("transfer")
	require.True(t, ok)
	require.Equal(t, []string{"balance"}, sig.Modifies)
}
