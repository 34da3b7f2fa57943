package exec

import (
	"context"

	"github.com/halsten/boogaloo/ast"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
)

// execAssert checks clause against the current path condition. It is
// applied uniformly to inline asserts, requires, and ensures, so a
// violated precondition reports a concrete failure rather than silently
// narrowing the path. A literal result either passes through or
// raises immediately; a symbolic result is explored both ways: the
// Generator's coin decides whether this execution takes the passing branch
// (extending the path condition with clause) or the failing one (extending
// it with the negation and reporting the violation).
func (ex *Executor) execAssert(ctx context.Context, clause ast.Clause, failedAt ast.Position) error {
	t, err := ex.Eval.Eval(clause.Test)
	if err != nil {
		return err
	}
	if b, ok := t.AsBool(); ok {
		if b {
			return nil
		}
		return ex.raiseAssertion(ctx, clause, failedAt)
	}

	if ex.Gen.Bool() {
		if err := ex.Eval.Store.ExtendLogical(t); err != nil {
			return convertUnreachable(err)
		}
		return nil
	}
	if err := ex.Eval.Store.ExtendLogical(negate(t)); err != nil {
		return convertUnreachable(err)
	}
	return ex.raiseAssertion(ctx, clause, failedAt)
}

// raiseAssertion concretizes a witness for the current (now
// clause-violating) path condition before reporting the failure, so the
// reported memory holds concrete values rather than logical placeholders.
// If concretization itself finds the
// path infeasible, that Unreachable takes precedence over the assertion —
// this branch was never reachable to begin with.
func (ex *Executor) raiseAssertion(ctx context.Context, clause ast.Clause, failedAt ast.Position) error {
	msg := ""
	if clause.Message != nil {
		mt, err := ex.Eval.Eval(clause.Message)
		if err != nil {
			return err
		}
		msg = mt.String()
	}
	if err := ex.Mgr.SolveAndConcretize(ctx, failedAt); err != nil {
		return err
	}
	return bgerrors.NewAssertionViolated(&clause, msg, clause.Position, failedAt, ex.stack)
}
