// Package eval implements the Expression Evaluator and the Quantifier &
// Constraint Extractor: Eval reduces an ast.Expression
// to a value.Thunk, allocating logical references, materializing map
// points, and extending the Constraint Store as a side effect.
package eval

import (
	"fmt"
	"math/big"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	boogerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/gen"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// Evaluator is the engine's single Eval entry point, closing over the
// mutable state every reduction step may touch.
type Evaluator struct {
	Mem   *value.Memory
	Store *constraint.Store
	Types types.TypeContext
	Gen   gen.Generator

	// Macros holds every FunctionDecl with a body, inlined at each call
	// site.
	Macros map[string]*ast.FunctionDecl

	// UninterpretedRefs maps an uninterpreted function's name to the
	// persistent map Ref the Preprocessor allocated for it.
	UninterpretedRefs map[string]value.Ref
}

// New creates an Evaluator over the given state.
func New(mem *value.Memory, store *constraint.Store, tc types.TypeContext, g gen.Generator) *Evaluator {
	return &Evaluator{
		Mem:               mem,
		Store:             store,
		Types:             tc,
		Gen:               g,
		Macros:            make(map[string]*ast.FunctionDecl),
		UninterpretedRefs: make(map[string]value.Ref),
	}
}

// Eval reduces expr to a Thunk.
func (ev *Evaluator) Eval(expr ast.Expression) (*value.Thunk, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return ev.evalLiteral(n)
	case *ast.VarExpr:
		return ev.lookupVar(n.Position, n.Name)
	case *ast.OldExpr:
		return ev.lookupOld(n.Position, n.Name)
	case *ast.IfExpr:
		return ev.evalIf(n)
	case *ast.UnaryExpr:
		return ev.evalUnary(n)
	case *ast.BinaryExpr:
		return ev.evalBinary(n)
	case *ast.MapSelectExpr:
		return ev.evalMapSelect(n)
	case *ast.MapUpdateExpr:
		return ev.evalMapUpdate(n)
	case *ast.QuantifierExpr:
		return ev.evalQuantifier(n)
	case *ast.LambdaExpr:
		return ev.evalLambda(n)
	case *ast.CallExpr:
		return ev.evalCall(n)
	default:
		return nil, boogerrors.NewUnsupported(expr.Pos(), fmt.Sprintf("expression kind %T", expr))
	}
}

func (ev *Evaluator) evalLiteral(n *ast.Literal) (*value.Thunk, error) {
	switch n.Kind {
	case ast.LiteralInt:
		i := new(big.Int)
		if _, ok := i.SetString(n.Int, 10); !ok {
			return nil, boogerrors.NewUnsupported(n.Position, "malformed integer literal "+n.Int)
		}
		return value.Literal(n.Position, &value.IntegerValue{V: i}), nil
	case ast.LiteralBool:
		return value.Literal(n.Position, value.Bool(n.Bool)), nil
	case ast.LiteralCustom:
		return value.Literal(n.Position, &value.CustomValue{Tag: n.Tag, CType: n.TType}), nil
	default:
		return nil, boogerrors.NewUnsupported(n.Position, "literal kind")
	}
}

// lookupVar resolves name to its bound Thunk, lazily allocating a fresh
// logical reference (and assuming its where-clause, if any) on first
// reference.
func (ev *Evaluator) lookupVar(pos ast.Position, name string) (*value.Thunk, error) {
	if t, ok := ev.Mem.GetVar(value.RegionLocals, name); ok {
		return t, nil
	}
	if t, ok := ev.Mem.GetVar(value.RegionGlobals, name); ok {
		return t, nil
	}
	if t, ok := ev.Mem.GetVar(value.RegionConstants, name); ok {
		return t, nil
	}

	t, ok := ev.Types.TypeOf(name)
	if !ok {
		return nil, boogerrors.NewUnsupported(pos, fmt.Sprintf(boogerrors.ErrMsgUndefinedVar, name))
	}

	ref := ev.Mem.FreshLogical(t)
	thunk := value.LogicalRef(pos, ref, t)

	_, isLocal := ev.resolveScope(name)
	switch {
	case isLocal:
		ev.Mem.SetVar(value.RegionLocals, name, thunk)
	case ev.Types.InScope(types.Globals, name):
		ev.Mem.DefineGlobal(name, thunk)
	default:
		ev.Mem.SetVar(value.RegionConstants, name, thunk)
	}

	for _, whereExpr := range ev.Store.NameConstraints(scopeOf(isLocal), name) {
		wt, err := ev.Eval(whereExpr)
		if err != nil {
			return nil, err
		}
		if err := ev.Store.ExtendLogical(wt); err != nil {
			return nil, unreachable(err)
		}
	}

	return thunk, nil
}

func scopeOf(isLocal bool) types.Scope {
	if isLocal {
		return types.Locals
	}
	return types.Globals
}

// resolveScope reports whether name is a local (formal/local var) and, if
// not, which declared scope it belongs to for name-constraint lookups.
func (ev *Evaluator) resolveScope(name string) (types.Scope, bool) {
	if ev.Types.InScope(types.Locals, name) {
		return types.Locals, true
	}
	return types.Globals, false
}

// lookupOld resolves an old(name) reference against the current frame's
// pre-call global snapshot, lazily seeding it via a global lookup if the
// name was never referenced before this call.
func (ev *Evaluator) lookupOld(pos ast.Position, name string) (*value.Thunk, error) {
	if t, ok := ev.Mem.GetVar(value.RegionOld, name); ok {
		return t, nil
	}
	if _, err := ev.lookupVar(pos, name); err != nil {
		return nil, err
	}
	if t, ok := ev.Mem.GetVar(value.RegionOld, name); ok {
		return t, nil
	}
	return nil, boogerrors.NewUnsupported(pos, fmt.Sprintf(boogerrors.ErrMsgUndefinedVar, name))
}

func (ev *Evaluator) evalIf(n *ast.IfExpr) (*value.Thunk, error) {
	cond, err := ev.Eval(n.Cond)
	if err != nil {
		return nil, err
	}
	if b, ok := cond.AsBool(); ok {
		if b {
			return ev.Eval(n.Then)
		}
		return ev.Eval(n.Else)
	}
	then, err := ev.Eval(n.Then)
	if err != nil {
		return nil, err
	}
	els, err := ev.Eval(n.Else)
	if err != nil {
		return nil, err
	}
	return value.If(n.Position, cond, then, els), nil
}

func (ev *Evaluator) evalUnary(n *ast.UnaryExpr) (*value.Thunk, error) {
	operand, err := ev.Eval(n.Operand)
	if err != nil {
		return nil, err
	}
	return reduceUnary(n.Position, n.Op, operand), nil
}

// reduceUnary folds a unary operator over an already-reduced operand,
// computing a concrete result when it is literal and otherwise preserving
// a symbolic Unary thunk.
func reduceUnary(pos ast.Position, op ast.UnaryOp, operand *value.Thunk) *value.Thunk {
	switch op {
	case ast.UnaryNot:
		if b, ok := operand.AsBool(); ok {
			return value.Literal(pos, value.Bool(!b))
		}
	case ast.UnaryNeg:
		if i, ok := operand.AsInt(); ok {
			return value.Literal(pos, &value.IntegerValue{V: new(big.Int).Neg(i.V)})
		}
	}
	return value.Unary(pos, op, operand)
}

func unreachable(err error) error {
	if ue, ok := err.(*constraint.UnreachableError); ok {
		return boogerrors.NewUnreachable(ue.Position)
	}
	return err
}
