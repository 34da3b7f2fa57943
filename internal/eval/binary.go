package eval

import (
	"fmt"
	"math/big"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

func (ev *Evaluator) evalBinary(n *ast.BinaryExpr) (*value.Thunk, error) {
	switch n.Op {
	case ast.BinAnd:
		return ev.evalAnd(n)
	case ast.BinOr:
		return ev.evalOr(n)
	case ast.BinImplies:
		return ev.evalImplies(n)
	case ast.BinExplies:
		return ev.evalExplies(n)
	default:
		left, err := ev.Eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return ev.reduceBinary(n.Position, n.Op, left, right)
	}
}

func (ev *Evaluator) evalAnd(n *ast.BinaryExpr) (*value.Thunk, error) {
	left, err := ev.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	if b, ok := left.AsBool(); ok {
		if !b {
			return value.Literal(n.Position, value.Bool(false)), nil
		}
		return ev.Eval(n.Right)
	}
	right, err := ev.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	if b, ok := right.AsBool(); ok && !b {
		return value.Literal(n.Position, value.Bool(false)), nil
	}
	return value.Binary(n.Position, ast.BinAnd, left, right), nil
}

func (ev *Evaluator) evalOr(n *ast.BinaryExpr) (*value.Thunk, error) {
	left, err := ev.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	if b, ok := left.AsBool(); ok {
		if b {
			return value.Literal(n.Position, value.Bool(true)), nil
		}
		return ev.Eval(n.Right)
	}
	right, err := ev.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	if b, ok := right.AsBool(); ok && b {
		return value.Literal(n.Position, value.Bool(true)), nil
	}
	return value.Binary(n.Position, ast.BinOr, left, right), nil
}

func (ev *Evaluator) evalImplies(n *ast.BinaryExpr) (*value.Thunk, error) {
	left, err := ev.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	if b, ok := left.AsBool(); ok {
		if !b {
			return value.Literal(n.Position, value.Bool(true)), nil
		}
		return ev.Eval(n.Right)
	}
	right, err := ev.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	if b, ok := right.AsBool(); ok && b {
		return value.Literal(n.Position, value.Bool(true)), nil
	}
	return value.Binary(n.Position, ast.BinImplies, left, right), nil
}

func (ev *Evaluator) evalExplies(n *ast.BinaryExpr) (*value.Thunk, error) {
	left, err := ev.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	if b, ok := left.AsBool(); ok && b {
		return value.Literal(n.Position, value.Bool(true)), nil
	}
	right, err := ev.Eval(n.Right)
	if err != nil {
		return nil, err
	}
	if b, ok := left.AsBool(); ok && !b {
		if rb, ok := right.AsBool(); ok {
			return value.Literal(n.Position, value.Bool(!rb)), nil
		}
		return value.Unary(n.Position, ast.UnaryNot, right), nil
	}
	return value.Binary(n.Position, ast.BinExplies, left, right), nil
}

// reduceBinary combines two already-evaluated operands, computing a
// concrete result when both are literal and otherwise preserving a
// symbolic Binary thunk. Division and modulo use Euclidean semantics
// (math/big.Int.DivMod); dividing or taking the remainder by a literal
// zero yields a fresh, wholly unconstrained logical integer rather than an
// engine error, matching the verification language's convention of
// leaving that case's value unspecified.
func (ev *Evaluator) reduceBinary(pos ast.Position, op ast.BinaryOp, left, right *value.Thunk) (*value.Thunk, error) {
	li, lIsInt := left.AsInt()
	ri, rIsInt := right.AsInt()

	if lIsInt && rIsInt {
		switch op {
		case ast.BinAdd:
			return value.Literal(pos, &value.IntegerValue{V: new(big.Int).Add(li.V, ri.V)}), nil
		case ast.BinSub:
			return value.Literal(pos, &value.IntegerValue{V: new(big.Int).Sub(li.V, ri.V)}), nil
		case ast.BinMul:
			return value.Literal(pos, &value.IntegerValue{V: new(big.Int).Mul(li.V, ri.V)}), nil
		case ast.BinDiv:
			if ri.V.Sign() == 0 {
				ref := ev.Mem.FreshLogical(types.IntType)
				return value.LogicalRef(pos, ref, types.IntType), nil
			}
			q, r := new(big.Int), new(big.Int)
			q.DivMod(li.V, ri.V, r)
			return value.Literal(pos, &value.IntegerValue{V: q}), nil
		case ast.BinMod:
			if ri.V.Sign() == 0 {
				ref := ev.Mem.FreshLogical(types.IntType)
				return value.LogicalRef(pos, ref, types.IntType), nil
			}
			q, r := new(big.Int), new(big.Int)
			q.DivMod(li.V, ri.V, r)
			return value.Literal(pos, &value.IntegerValue{V: r}), nil
		case ast.BinLt:
			return value.Literal(pos, value.Bool(li.V.Cmp(ri.V) < 0)), nil
		case ast.BinLe:
			return value.Literal(pos, value.Bool(li.V.Cmp(ri.V) <= 0)), nil
		case ast.BinGt:
			return value.Literal(pos, value.Bool(li.V.Cmp(ri.V) > 0)), nil
		case ast.BinGe:
			return value.Literal(pos, value.Bool(li.V.Cmp(ri.V) >= 0)), nil
		case ast.BinEq:
			return value.Literal(pos, value.Bool(li.V.Cmp(ri.V) == 0)), nil
		case ast.BinNeq:
			return value.Literal(pos, value.Bool(li.V.Cmp(ri.V) != 0)), nil
		}
	}

	if op == ast.BinEq || op == ast.BinNeq {
		if lm, ok := left.AsMapRef(); ok {
			if rm, ok := right.AsMapRef(); ok {
				return ev.reduceMapEquality(pos, op, lm, rm)
			}
		}
		if left.IsLiteral() && right.IsLiteral() {
			eq := value.Equal(left.Lit, right.Lit)
			if op == ast.BinNeq {
				eq = !eq
			}
			return value.Literal(pos, value.Bool(eq)), nil
		}
	}

	return value.Binary(pos, op, left, right), nil
}

// reduceMapEquality decides `==`/`!=` between two map references:
// identical refs are literally true/false without consulting the solver;
// refs of differing map types are literally false/true; otherwise equality
// unfolds to `∀ bv. r1[bv] = r2[bv]`, routed through the same
// nondeterministic forall machinery any other quantifier uses, so two
// distinct refs whose contents happen to coincide at every point can still
// be proven equal rather than being hard-coded unequal by ref identity.
func (ev *Evaluator) reduceMapEquality(pos ast.Position, op ast.BinaryOp, left, right *value.MapRefValue) (*value.Thunk, error) {
	if left.Ref == right.Ref {
		return value.Literal(pos, value.Bool(op == ast.BinEq)), nil
	}
	if !left.MapType.Equal(right.MapType) {
		return value.Literal(pos, value.Bool(op == ast.BinNeq)), nil
	}

	mapType := left.MapType
	vars := make([]ast.BoundVar, len(mapType.Args))
	args := make([]ast.Expression, len(mapType.Args))
	for i, at := range mapType.Args {
		name := fmt.Sprintf("$eqbv%d", i)
		vars[i] = ast.BoundVar{Name: name, Type: at}
		args[i] = &ast.VarExpr{Name: name, Type: at}
	}

	// The synthesized body outlives this call: if the attach branch of the
	// quantifier is taken, it is stored as a parametric constraint and
	// re-evaluated at every later materialized point. The two map operands
	// are therefore bound under ref-keyed names in the Constants region,
	// which persists for the rest of the execution, rather than in a
	// temporary local scope that would be gone by instantiation time. A ref
	// never changes its map identity, so rebinding the same name on a
	// later equality over the same ref is idempotent.
	lhsName := fmt.Sprintf("$map%d", left.Ref)
	rhsName := fmt.Sprintf("$map%d", right.Ref)
	ev.Mem.SetVar(value.RegionConstants, lhsName, value.Literal(pos, left))
	ev.Mem.SetVar(value.RegionConstants, rhsName, value.Literal(pos, right))

	body := &ast.BinaryExpr{
		Op:   ast.BinEq,
		Left: &ast.MapSelectExpr{Map: &ast.VarExpr{Name: lhsName, Type: mapType}, Args: args},
		Right: &ast.MapSelectExpr{
			Map:  &ast.VarExpr{Name: rhsName, Type: mapType},
			Args: args,
		},
	}
	forall := &ast.QuantifierExpr{Kind: ast.Forall, Vars: vars, Body: body}

	result, err := ev.evalQuantifier(forall)
	if err != nil {
		return nil, err
	}
	if op == ast.BinNeq {
		return notThunk(result), nil
	}
	return result, nil
}
