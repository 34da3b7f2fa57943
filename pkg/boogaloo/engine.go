// Package boogaloo is the public Engine API:
// it wires the Preprocessor, Evaluator, Constraint Manager, and Procedure
// Engine together for one symbolic execution of a procedure, and reports
// the outcome as a TestCase a driver can classify and act on.
package boogaloo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	"github.com/halsten/boogaloo/internal/constrmgr"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/eval"
	"github.com/halsten/boogaloo/internal/exec"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/preprocess"
	"github.com/halsten/boogaloo/internal/solver"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// Verdict classifies a TestCase.
type Verdict string

const (
	Pass          Verdict = "pass"
	Invalid       Verdict = "invalid"
	NonExecutable Verdict = "nonexecutable"
	Fail          Verdict = "fail"
)

// TestCase is the outcome of one execute_program call.
type TestCase struct {
	RunID                 string
	EntrySignature        string
	Returns               []*value.Thunk
	FinalMemory           *value.Memory
	FinalConstraintMemory []*value.Thunk
	Failure               *bgerrors.Failure
}

// Verdict classifies tc: pass (no failure), invalid (Unreachable),
// nonexecutable (Unsupported), or fail (AssertionViolated).
func (tc *TestCase) Verdict() Verdict {
	if tc.Failure == nil {
		return Pass
	}
	switch tc.Failure.Kind {
	case bgerrors.Unreachable:
		return Invalid
	case bgerrors.Unsupported:
		return NonExecutable
	default:
		return Fail
	}
}

// Engine drives one or more execute_program calls, sharing a run id used
// for log correlation the way a request id would; every TestCase it
// reports carries the same id.
type Engine struct {
	RunID string

	// SolvePassing controls whether a cleanly passing run is still
	// concretized before it is reported.
	// When false, a passing TestCase may carry logical placeholders in its
	// memory; failures always concretize regardless, since a
	// counterexample without witness values is useless. Concretization
	// rewrites the stores of FinalMemory only: Returns holds the thunks the
	// entry procedure returned, which may be symbolic either way.
	SolvePassing bool

	log *logrus.Entry
}

// New creates an Engine with a freshly minted run id, concretizing passing
// runs by default.
func New() *Engine {
	id := uuid.NewString()
	return &Engine{
		RunID:        id,
		SolvePassing: true,
		log:          logrus.WithField("run_id", id),
	}
}

// ExecuteProgram runs one symbolic execution of entryPoint: it preprocesses
// prog, enters entryPoint bound to args, and reports a TestCase. A Failure
// the executor raised is captured into the TestCase rather than returned as
// a Go error; a Go error return instead means the engine itself could not
// be driven (entryPoint undefined, an error from the solver backend, or a
// failure while preprocessing prog's declarations).
func (e *Engine) ExecuteProgram(ctx context.Context, prog *ast.Program, tc types.TypeContext, backend solver.Solver, g gen.Generator, entryPoint string, args []*value.Thunk) (*TestCase, error) {
	mem := value.NewMemory()
	store := constraint.NewStore()
	ev := eval.New(mem, store, tc, g)

	procs, err := preprocess.New(ev).Run(prog)
	if err != nil {
		return nil, err
	}
	if len(procs[entryPoint]) == 0 {
		return nil, fmt.Errorf(bgerrors.ErrMsgUndefinedProc, entryPoint)
	}

	mgr := constrmgr.New(ev, backend)
	runner := exec.New(ev, mgr, g, procs)

	e.log.WithFields(logrus.Fields{"entry": entryPoint}).Debug("execute_program")

	rets, execErr := runner.ExecProcedure(ctx, ast.Position{}, entryPoint, args)

	result := &TestCase{
		RunID:          e.RunID,
		EntrySignature: signatureString(entryPoint, tc),
		FinalMemory:    mem,
	}

	if execErr != nil {
		failure, ok := execErr.(*bgerrors.Failure)
		if !ok {
			return nil, execErr
		}
		result.Failure = failure
		result.FinalConstraintMemory = store.LogicalConstraints()
		return result, nil
	}

	// A clean exit from the entry point still deserves concrete witness
	// values in the report, unless the caller asked for the raw symbolic
	// state; nested calls concretize only on their own ensures failure, so
	// a passing run's deepest frames may still show logical refs.
	if e.SolvePassing {
		if err := mgr.SolveAndConcretize(ctx, ast.Position{}); err != nil {
			if failure, ok := err.(*bgerrors.Failure); ok {
				result.Failure = failure
				result.FinalConstraintMemory = store.LogicalConstraints()
				return result, nil
			}
			return nil, err
		}
	}

	result.Returns = rets
	result.FinalConstraintMemory = store.LogicalConstraints()
	return result, nil
}

func signatureString(name string, tc types.TypeContext) string {
	sig, ok := tc.ProcedureSignature(name)
	if !ok {
		return name
	}
	formals := make([]string, len(sig.Formals))
	for i, f := range sig.Formals {
		formals[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(formals, ", "))
}
