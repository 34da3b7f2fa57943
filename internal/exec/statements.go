package exec

import (
	"context"
	"fmt"

	"github.com/halsten/boogaloo/ast"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// execBlock runs label's statements until a Goto or Return, invoking
// check_sat after every other statement. It returns the
// position of the Return statement it eventually lands on, threaded back
// through any intervening Goto so a caller can attribute a postcondition
// failure to the right exit point.
func (ex *Executor) execBlock(ctx context.Context, pc *procCtx, label string) (ast.Position, error) {
	block, ok := pc.blocks[label]
	if !ok {
		return ast.Position{}, bgerrors.NewUnsupported(ast.Position{}, "undefined block label: "+label)
	}
	for _, stmt := range block.Stmts {
		switch s := stmt.(type) {
		case *ast.GotoStmt:
			return ex.execGoto(ctx, pc, s)
		case *ast.ReturnStmt:
			return s.Position, nil
		default:
			if err := ex.execStmt(ctx, s); err != nil {
				return ast.Position{}, err
			}
			if err := ex.Mgr.CheckSat(ctx, stmt.Pos()); err != nil {
				return ast.Position{}, err
			}
		}
	}
	return ast.Position{}, nil
}

// execStmt dispatches a single non-terminal statement.
func (ex *Executor) execStmt(ctx context.Context, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.PredicateStmt:
		return ex.execPredicate(ctx, s)
	case *ast.HavocStmt:
		return ex.execHavoc(s)
	case *ast.AssignStmt:
		return ex.execAssign(s)
	case *ast.CallStmt:
		return ex.execCall(ctx, s)
	case *ast.CallForallStmt:
		return ex.execCallForall(s)
	default:
		return bgerrors.NewUnsupported(stmt.Pos(), fmt.Sprintf("statement kind %T", stmt))
	}
}

// execPredicate implements assert/assume. A free
// predicate (or a plain `assume`) is extended unconditionally; a checked
// `assert` goes through execAssert, which may nondeterministically explore
// both truth values.
func (ex *Executor) execPredicate(ctx context.Context, stmt *ast.PredicateStmt) error {
	if stmt.Free || !stmt.Assert {
		t, err := ex.Eval.Eval(stmt.Clause.Test)
		if err != nil {
			return err
		}
		if err := ex.Eval.Store.ExtendLogical(t); err != nil {
			return convertUnreachable(err)
		}
		return nil
	}
	return ex.execAssert(ctx, stmt.Clause, stmt.Position)
}

// execHavoc forgets every named variable's binding so its next reference
// allocates a fresh logical placeholder.
func (ex *Executor) execHavoc(stmt *ast.HavocStmt) error {
	for _, name := range stmt.Names {
		ex.Eval.Mem.ForgetVar(ex.regionFor(name), name)
	}
	return nil
}

// execAssign desugars any map-indexed Lhs into a MapUpdateExpr on its
// right-hand side, evaluates every right-hand side against the
// pre-assignment state, then binds all targets at once.
func (ex *Executor) execAssign(stmt *ast.AssignStmt) error {
	exprs := make([]ast.Expression, len(stmt.Lhss))
	for i, lhs := range stmt.Lhss {
		if lhs.Args == nil {
			exprs[i] = stmt.Rhss[i]
			continue
		}
		exprs[i] = &ast.MapUpdateExpr{
			Map:  &ast.VarExpr{Name: lhs.Name},
			Args: lhs.Args,
			New:  stmt.Rhss[i],
		}
	}

	thunks := make([]*value.Thunk, len(exprs))
	for i, e := range exprs {
		t, err := ex.Eval.Eval(e)
		if err != nil {
			return err
		}
		thunks[i] = t
	}
	for i, lhs := range stmt.Lhss {
		ex.Eval.Mem.SetVar(ex.regionFor(lhs.Name), lhs.Name, thunks[i])
	}
	return nil
}

// execCall evaluates actuals, executes the callee via ExecProcedure, and
// binds its returns to Rets.
func (ex *Executor) execCall(ctx context.Context, stmt *ast.CallStmt) error {
	args, err := ex.evalArgs(stmt.Args)
	if err != nil {
		return err
	}
	rets, err := ex.ExecProcedure(ctx, stmt.Position, stmt.Proc, args)
	if err != nil {
		return err
	}
	for i, name := range stmt.Rets {
		if i >= len(rets) {
			break
		}
		ex.Eval.Mem.SetVar(ex.regionFor(name), name, rets[i])
	}
	return nil
}

// execCallForall havocs the callee's modifies set without running a body,
// the abstraction used when no implementation is available.
func (ex *Executor) execCallForall(stmt *ast.CallForallStmt) error {
	sig, ok := ex.Eval.Types.ProcedureSignature(stmt.Proc)
	if !ok {
		return bgerrors.NewUnsupported(stmt.Position, fmt.Sprintf(bgerrors.ErrMsgUndefinedProc, stmt.Proc))
	}
	for _, name := range sig.Modifies {
		ex.Eval.Mem.ForgetVar(value.RegionGlobals, name)
	}
	return nil
}

func (ex *Executor) evalArgs(exprs []ast.Expression) ([]*value.Thunk, error) {
	out := make([]*value.Thunk, len(exprs))
	for i, e := range exprs {
		t, err := ex.Eval.Eval(e)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// regionFor resolves name to the Memory region it lives in, mirroring the
// evaluator's own local/global/constant resolution.
func (ex *Executor) regionFor(name string) value.Region {
	if ex.Eval.Types.InScope(types.Locals, name) {
		return value.RegionLocals
	}
	if ex.Eval.Types.InScope(types.Globals, name) {
		return value.RegionGlobals
	}
	return value.RegionConstants
}
