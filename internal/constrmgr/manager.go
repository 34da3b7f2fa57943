// Package constrmgr implements the Constraint Manager: it
// drives a satisfiability check after every statement, flushes the
// dirty-point queue between checks, and materializes a solver's model
// back into Memory when an execution needs concrete witness values.
package constrmgr

import (
	"context"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/eval"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/solver"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/sirupsen/logrus"
)

// Manager is the Constraint Manager.
type Manager struct {
	Eval   *eval.Evaluator
	Solver solver.Solver
	Scopes int

	log *logrus.Entry
}

// New creates a Manager driving sat-checks and concretization for ev
// through backend.
func New(ev *eval.Evaluator, backend solver.Solver) *Manager {
	return &Manager{
		Eval:   ev,
		Solver: backend,
		log:    logrus.WithField("component", "constrmgr"),
	}
}

// CheckSat drives the per-statement satisfiability check: if neither a logical
// constraint was added nor any map point awaits propagation, it is a
// no-op. Otherwise it asks the Solver whether the current constraint set
// is satisfiable, raising Unreachable on UNSAT/Unknown; on SAT it clears
// the changed flag and, while points remain queued, dequeues one and
// reapplies its map's constraints at that point's arguments — which may
// add fresh logical constraints and require another round of checking.
func (m *Manager) CheckSat(ctx context.Context, pos ast.Position) error {
	store := m.Eval.Store
	for {
		if !store.Changed() && !store.HasQueued() {
			return nil
		}

		status, newScopes, err := m.Solver.Check(ctx, store.LogicalConstraints(), m.Scopes)
		if err != nil {
			return err
		}
		m.Scopes = newScopes

		m.log.WithFields(logrus.Fields{
			"position": pos.String(),
			"status":   status,
			"queued":   store.QueueLen(),
		}).Debug("check_sat")

		if status != solver.SAT {
			return bgerrors.NewUnreachable(pos)
		}
		store.ClearChanged()

		if !store.HasQueued() {
			return nil
		}
		point, ok := store.Dequeue()
		if !ok {
			return nil
		}
		if err := m.Eval.ApplyGuardedConstraints(point.MapRef, point.Args); err != nil {
			return err
		}
	}
}

// SolveAndConcretize materializes a model into visible state: it
// first calls CheckSat, then requests one model from the Solver and
// merges it into Memory's logical-solution map, then re-evaluates every
// visible store and map point so logical Refs are replaced by concrete
// values.
func (m *Manager) SolveAndConcretize(ctx context.Context, pos ast.Position) error {
	if err := m.CheckSat(ctx, pos); err != nil {
		return err
	}

	store := m.Eval.Store
	constraints := append([]*value.Thunk(nil), store.LogicalConstraints()...)
	for ref, t := range m.Eval.Mem.PendingLogicalRefs() {
		constraints = append(constraints, value.LogicalRef(ast.Position{}, ref, t))
	}
	seq, err := m.Solver.Pick(ctx, constraints, m.Scopes, nil, false)
	if err != nil {
		return err
	}
	sol, ok, err := seq.Next(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return bgerrors.NewUnreachable(pos)
	}

	for ref, v := range sol {
		m.Eval.Mem.SetLogicalSolution(ref, v)
	}
	m.Eval.Concretize()
	return nil
}
