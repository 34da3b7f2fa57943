package eval

import "github.com/halsten/boogaloo/internal/value"

// Concretize re-evaluates every visible store entry (locals, globals, old,
// constants) and every cached map-selection thunk by substituting each
// logical Ref for the solver's assigned concrete Value, folding compound
// terms that become fully literal along the way. It must run after the Constraint
// Manager has merged a solver model into Memory's logical-solution map.
func (ev *Evaluator) Concretize() {
	rewrite := func(_ string, t *value.Thunk) *value.Thunk { return ev.concretizeThunk(t) }
	ev.Mem.RewriteGlobals(rewrite)
	ev.Mem.RewriteConstants(rewrite)
	ev.Mem.RewriteLocals(rewrite)
	ev.Mem.RewriteOld(rewrite)
	ev.Mem.RewriteMapPoints(func(_ value.Ref, _ []*value.Thunk, t *value.Thunk) *value.Thunk {
		return ev.concretizeThunk(t)
	})
}

// concretizeThunk recursively substitutes logical refs for their solver
// assignment and folds any term that becomes fully literal as a result.
func (ev *Evaluator) concretizeThunk(t *value.Thunk) *value.Thunk {
	if t == nil {
		return t
	}
	switch t.Kind {
	case value.TermLit:
		return t
	case value.TermRef:
		if v, ok := ev.Mem.LogicalSolution(t.Ref); ok {
			return value.Literal(t.Position, v)
		}
		return t
	case value.TermIf:
		cond := ev.concretizeThunk(t.Cond)
		then := ev.concretizeThunk(t.Then)
		els := ev.concretizeThunk(t.Else)
		if b, ok := cond.AsBool(); ok {
			if b {
				return then
			}
			return els
		}
		return value.If(t.Position, cond, then, els)
	case value.TermUnary:
		operand := ev.concretizeThunk(t.Operand)
		return reduceUnary(t.Position, t.UnOp, operand)
	case value.TermBinary:
		left := ev.concretizeThunk(t.Left)
		right := ev.concretizeThunk(t.Right)
		reduced, _ := ev.reduceBinary(t.Position, t.BinOp, left, right)
		return reduced
	default:
		return t
	}
}
