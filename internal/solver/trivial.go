package solver

import (
	"context"
	"math/big"

	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// Trivial is the non-SMT fallback Solver: Check is
// unconditionally SAT for any constraint set, and Pick independently samples each
// collected logical Ref via a Generator, ignoring the constraints' content
// entirely. IntBound caps sampled integers to [-IntBound, +IntBound]; nil
// means unbounded.
type Trivial struct {
	Gen      gen.Generator
	IntBound *big.Int
}

// NewTrivial creates a Trivial solver sampling from g, bounding integers to
// intBound (nil for unbounded).
func NewTrivial(g gen.Generator, intBound *big.Int) *Trivial {
	return &Trivial{Gen: g, IntBound: intBound}
}

// Check always reports SAT. Pick's independently-sampled assignment is not
// checked against the constraints afterwards either, so an inconsistent
// constraint set goes undetected with this backend and the reported
// values need not satisfy the path's constraints.
func (t *Trivial) Check(_ context.Context, _ []*value.Thunk, scopes int) (Status, int, error) {
	return SAT, scopes, nil
}

// Pick returns a sequence that independently samples every logical Ref
// mentioned in constraints, bound times (or once, if bound is nil).
func (t *Trivial) Pick(_ context.Context, constraints []*value.Thunk, _ int, bound *int, _ bool) (SolutionSeq, error) {
	refs := CollectRefs(constraints)
	n := 1
	if bound != nil {
		n = *bound
	}
	return &trivialSeq{trivial: t, refs: refs, remaining: n}, nil
}

type trivialSeq struct {
	trivial   *Trivial
	refs      map[value.Ref]types.Type
	remaining int
}

func (s *trivialSeq) Next(_ context.Context) (Solution, bool, error) {
	if s.remaining <= 0 {
		return nil, false, nil
	}
	s.remaining--
	sol := make(Solution, len(s.refs))
	for ref, t := range s.refs {
		sol[ref] = s.trivial.sample(t)
	}
	return sol, true, nil
}

// sample draws one independent value of t.
func (t *Trivial) sample(ty types.Type) value.Value {
	switch ty.Kind {
	case types.Bool:
		return value.Bool(t.Gen.Bool())
	case types.Custom:
		n := t.Gen.Int(t.IntBound)
		return &value.CustomValue{Tag: n.Int64(), CType: ty}
	default:
		n := t.Gen.Int(t.IntBound)
		return &value.IntegerValue{V: n}
	}
}
