package eval

import (
	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	"github.com/halsten/boogaloo/internal/value"
)

// ApplyGuardedConstraints exports applyGuardedConstraints for the
// Constraint Manager, which drives application when draining the
// dirty-point queue.
func (ev *Evaluator) ApplyGuardedConstraints(ref value.Ref, args []*value.Thunk) error {
	return ev.applyGuardedConstraints(ref, args)
}

// applyGuardedConstraints instantiates every parametric constraint attached
// to ref at a dequeued point.
// Unguarded constraints are assumed outright. Each guarded constraint is
// nondeterministically enabled: disabled assumes the guard's negation at
// args, enabled assumes the guard and the body. A guard that instantiates
// to a literal forces the corresponding choice without consuming a
// Generator bit. Guarded cases are processed least-enabled-first per the
// Store's case counters, ties broken by the Generator.
func (ev *Evaluator) applyGuardedConstraints(ref value.Ref, args []*value.Thunk) error {
	pcs := ev.Store.MapConstraints(ref)
	var guarded []int
	for idx, pc := range pcs {
		if pc.Guard != nil {
			guarded = append(guarded, idx)
			continue
		}
		body, err := ev.instantiate(pc.Formals, args, pc.Body)
		if err != nil {
			return err
		}
		if err := ev.Store.ExtendLogical(body); err != nil {
			return unreachable(err)
		}
	}

	for len(guarded) > 0 {
		pick := ev.pickLeastUsed(ref, guarded)
		idx := guarded[pick]
		guarded = append(guarded[:pick], guarded[pick+1:]...)

		pc := pcs[idx]
		guardThunk, err := ev.instantiate(pc.Formals, args, pc.Guard)
		if err != nil {
			return err
		}

		var enabled bool
		if b, ok := guardThunk.AsBool(); ok {
			enabled = b
		} else {
			enabled = ev.Gen.Bool()
		}

		if !enabled {
			if err := ev.Store.ExtendLogical(notThunk(guardThunk)); err != nil {
				return unreachable(err)
			}
			continue
		}

		ev.Store.IncrementCaseCount(ref, idx)
		if err := ev.Store.ExtendLogical(guardThunk); err != nil {
			return unreachable(err)
		}
		body, err := ev.instantiate(pc.Formals, args, pc.Body)
		if err != nil {
			return err
		}
		if err := ev.Store.ExtendLogical(body); err != nil {
			return unreachable(err)
		}
	}
	return nil
}

// pickLeastUsed returns the position within candidates of a constraint
// with the lowest enablement count, asking the Generator to break ties.
func (ev *Evaluator) pickLeastUsed(ref value.Ref, candidates []int) int {
	min := ev.Store.CaseCount(ref, candidates[0])
	for _, idx := range candidates[1:] {
		if c := ev.Store.CaseCount(ref, idx); c < min {
			min = c
		}
	}
	var tied []int
	for i, idx := range candidates {
		if ev.Store.CaseCount(ref, idx) == min {
			tied = append(tied, i)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}
	return tied[ev.Gen.Index(len(tied))]
}

func bindingsFor(formals []constraint.Formal, args []*value.Thunk) map[string]*value.Thunk {
	out := make(map[string]*value.Thunk, len(formals))
	for i, f := range formals {
		if i < len(args) {
			out[f.Name] = args[i]
		}
	}
	return out
}

// instantiate binds formals to args and evaluates expr in that scope — the
// substitution helper shared by map-constraint instantiation and function
// macro inlining.
func (ev *Evaluator) instantiate(formals []constraint.Formal, args []*value.Thunk, expr ast.Expression) (*value.Thunk, error) {
	var result *value.Thunk
	err := ev.Mem.WithLocals(bindingsFor(formals, args), func() error {
		var e error
		result, e = ev.Eval(expr)
		return e
	})
	return result, err
}
