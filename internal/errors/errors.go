// Package errors defines the outcome a symbolic execution ends on: one of
// AssertionViolated, Unreachable, or Unsupported. A
// *Failure implements error: the evaluator and executor return it up the
// call stack like any Go error, and pkg/boogaloo's ExecuteProgram captures
// it into the TestCase it reports.
package errors

import (
	"fmt"

	"github.com/halsten/boogaloo/ast"
)

// Kind tags which branch of the Failure union a value is.
type Kind int

const (
	// AssertionViolated means an assert or ensures/requires/invariant
	// clause evaluated to false under the current path condition.
	AssertionViolated Kind = iota
	// Unreachable means the path condition became unconditionally false
	// (an assume of False, or an UNSAT check).
	Unreachable
	// Unsupported means execution hit a construct the engine declines to
	// model.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case AssertionViolated:
		return "assertion violated"
	case Unreachable:
		return "unreachable"
	case Unsupported:
		return "unsupported"
	default:
		return "?"
	}
}

// Failure is the tagged union a failed execution reports.
// Exactly the fields relevant to Kind are meaningful; the rest are zero.
type Failure struct {
	Kind Kind

	// AssertionViolated fields.
	ClauseKind ast.ClauseKind
	Message    string
	DeclaredAt ast.Position // where the clause was written
	FailedAt   ast.Position // where it was checked (call site for a precondition)
	Stack      StackTrace

	// Unreachable fields.
	UnreachableAt ast.Position

	// Unsupported fields.
	Detail string
	At     ast.Position
}

// Error implements the error interface so a Failure can be returned from
// Go functions that need to abort evaluation (map-select argument errors,
// etc.) and be recovered into a TestCase by the caller.
func (f *Failure) Error() string {
	switch f.Kind {
	case AssertionViolated:
		msg := f.Message
		if msg == "" {
			msg = fmt.Sprintf(ErrMsgClauseFailed, f.ClauseKind)
		}
		return fmt.Sprintf("%s: %s", f.FailedAt, msg)
	case Unreachable:
		return fmt.Sprintf("%s: %s", f.UnreachableAt, ErrMsgUnreachable)
	case Unsupported:
		return fmt.Sprintf("%s: %s: %s", f.At, ErrMsgUnsupported, f.Detail)
	default:
		return "unknown failure"
	}
}

// NewAssertionViolated builds an AssertionViolated failure with the given
// call stack attached. message is the
// already-evaluated text of the clause's optional Message expression (the
// caller evaluates it before constructing the Failure, since this package
// does not depend on the evaluator); an empty string falls back to the
// generic "<kind> failed" text in Error().
func NewAssertionViolated(clause *ast.Clause, message string, declaredAt, failedAt ast.Position, stack StackTrace) *Failure {
	return &Failure{
		Kind:       AssertionViolated,
		ClauseKind: clause.Kind,
		Message:    message,
		DeclaredAt: declaredAt,
		FailedAt:   failedAt,
		Stack:      stack,
	}
}

// NewUnreachable builds an Unreachable failure at pos.
func NewUnreachable(pos ast.Position) *Failure {
	return &Failure{Kind: Unreachable, UnreachableAt: pos}
}

// NewUnsupported builds an Unsupported failure describing detail at pos.
func NewUnsupported(pos ast.Position, detail string) *Failure {
	return &Failure{Kind: Unsupported, At: pos, Detail: detail}
}
