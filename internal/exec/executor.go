// Package exec implements the Statement Executor and the
// Procedure Engine: it drives a procedure's basic-block
// graph to completion, handling nondeterministic goto selection, and
// manages procedure entry/exit (old-value snapshots, requires/ensures
// enforcement, return-value extraction).
package exec

import (
	"context"
	"fmt"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	"github.com/halsten/boogaloo/internal/constrmgr"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/eval"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
	"github.com/sirupsen/logrus"
)

// Executor drives statement and procedure execution over a shared
// Evaluator/Manager/Generator.
type Executor struct {
	Eval *eval.Evaluator
	Mgr  *constrmgr.Manager
	Gen  gen.Generator

	// Procs groups every ProcedureDecl by name; multiple implementations
	// of the same name are selected from nondeterministically on Call.
	Procs map[string][]*ast.ProcedureDecl

	stack      bgerrors.StackTrace
	jumpCounts map[string]int

	log *logrus.Entry
}

// New creates an Executor over procs, driving ev through mgr for sat
// checks and using g for every nondeterministic choice.
func New(ev *eval.Evaluator, mgr *constrmgr.Manager, g gen.Generator, procs map[string][]*ast.ProcedureDecl) *Executor {
	return &Executor{
		Eval:       ev,
		Mgr:        mgr,
		Gen:        g,
		Procs:      procs,
		jumpCounts: make(map[string]int),
		log:        logrus.WithField("component", "exec"),
	}
}

// procCtx is the per-activation context execBlock/execStmt need: the
// chosen implementation and its basic blocks, keyed by label.
type procCtx struct {
	proc   *ast.ProcedureDecl
	blocks map[string]*ast.BasicBlock
}

// ExecProcedure enters proc name with args bound to its formals, executes
// its basic-block graph to a Return, enforces requires/ensures, and
// returns the evaluated return formals. Both the program's entry point and every CallStmt go through
// this single routine — the engine always inlines a callee's real body
// rather than reasoning about it as an abstract summary.
func (ex *Executor) ExecProcedure(ctx context.Context, callPos ast.Position, name string, args []*value.Thunk) ([]*value.Thunk, error) {
	impls, ok := ex.Procs[name]
	if !ok || len(impls) == 0 {
		return nil, bgerrors.NewUnsupported(callPos, fmt.Sprintf(bgerrors.ErrMsgUndefinedProc, name))
	}
	proc := impls[ex.Gen.Index(len(impls))]

	savedStack := ex.stack
	ex.stack = ex.stack.Push(bgerrors.StackFrame{Position: callPos, ProcedureName: name})
	defer func() { ex.stack = savedStack }()

	mem := ex.Eval.Mem
	mem.EnterProcedure()
	defer mem.ExitProcedure()

	for i, f := range proc.Formals {
		if i >= len(args) || args[i] == nil {
			// No actual supplied: leave the formal unbound so its first
			// reference lazily allocates a fresh logical placeholder.
			continue
		}
		mem.SetVar(value.RegionLocals, f.Name, args[i])
	}
	for _, f := range proc.Formals {
		if f.Where != nil {
			ex.Eval.Store.ExtendName(types.Locals, f.Where)
		}
	}
	for _, r := range proc.Rets {
		if r.Where != nil {
			ex.Eval.Store.ExtendName(types.Locals, r.Where)
		}
	}

	// Requires are enforced the same way an inline `assert` is: a
	// literal-false precondition against the caller's actual arguments
	// reports AssertionViolated, not merely Unreachable, so a bad call
	// site stays distinguishable from an infeasible path.
	for _, req := range proc.Requires {
		if err := ex.execAssert(ctx, req, callPos); err != nil {
			return nil, err
		}
	}

	pc := &procCtx{proc: proc, blocks: proc.Blocks}
	exitPos, err := ex.execBlock(ctx, pc, proc.EntryLabel)
	if err != nil {
		return nil, err
	}

	for _, ens := range proc.Ensures {
		if err := ex.execAssert(ctx, ens, exitPos); err != nil {
			return nil, err
		}
	}

	rets := make([]*value.Thunk, len(proc.Rets))
	for i, r := range proc.Rets {
		if t, ok := mem.GetVar(value.RegionLocals, r.Name); ok {
			rets[i] = t
			continue
		}
		t, err := ex.Eval.Eval(&ast.VarExpr{Name: r.Name, Type: r.Type})
		if err != nil {
			return nil, err
		}
		rets[i] = t
	}
	return rets, nil
}

// convertUnreachable turns a constraint.UnreachableError (raised by
// Store.ExtendLogical on a literal-false assumption) into the engine-level
// errors.Failure the rest of the system propagates.
func convertUnreachable(err error) error {
	if ue, ok := err.(*constraint.UnreachableError); ok {
		return bgerrors.NewUnreachable(ue.Position)
	}
	return err
}

func negate(t *value.Thunk) *value.Thunk {
	if b, ok := t.AsBool(); ok {
		return value.Literal(t.Position, value.Bool(!b))
	}
	return value.Unary(t.Position, ast.UnaryNot, t)
}
