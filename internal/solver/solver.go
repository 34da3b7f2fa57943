// Package solver defines the Solver Facade: the abstract
// interface through which the Constraint Manager asks whether the current
// constraints are satisfiable and, when concretizing, asks for a model.
// Package solver also holds the Trivial Solver, the non-SMT fallback
// used when no real backend is configured.
package solver

import (
	"context"

	"github.com/halsten/boogaloo/internal/value"
)

// Status is the two-valued (plus Unknown, for a timed-out check) result of
// a satisfiability query.
type Status int

const (
	// SAT means the constraint set has at least one satisfying assignment.
	SAT Status = iota
	// UNSAT means no assignment satisfies the constraint set.
	UNSAT
	// Unknown means the backend could not decide within its budget. The
	// engine treats Unknown the same as UNSAT: the conservative action is
	// to mark the path infeasible rather than risk reporting a false pass.
	Unknown
)

// Solution is one concrete assignment of logical references to values,
// the shape `pick` returns.
type Solution map[value.Ref]value.Value

// Solver is the facade the Constraint Manager drives. A real SMT backend implements this; this module
// only ships the Trivial fallback; a real SMT backend is an external
// collaborator.
type Solver interface {
	// Check asks whether constraints is satisfiable. scopes is the
	// incremental-solver scope depth the caller currently holds;
	// implementations that do not maintain an incremental stack may ignore
	// it and echo it back unchanged.
	Check(ctx context.Context, constraints []*value.Thunk, scopes int) (Status, int, error)

	// Pick requests a lazy sequence of satisfying models. bound limits how
	// many models the sequence will produce (nil = unbounded, bounded by
	// the driver's solution cap instead); minimal asks the backend to
	// prefer small/simple witnesses when it supports that.
	Pick(ctx context.Context, constraints []*value.Thunk, scopes int, bound *int, minimal bool) (SolutionSeq, error)
}

// SolutionSeq is the lazy sequence of solutions Pick returns. Each call
// to Next should, for a real backend, add a blocking clause excluding
// every previously returned solution (see BuildBlockingClause) before
// solving again.
type SolutionSeq interface {
	// Next returns the next solution, or ok=false once the sequence is
	// exhausted (UNSAT once the prior models are blocked, or the bound
	// was reached).
	Next(ctx context.Context) (sol Solution, ok bool, err error)
}
