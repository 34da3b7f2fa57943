package eval

import (
	"fmt"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	boogerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// evalQuantifier resolves forall/exists via the Generator's nondeterministic
// bit. For forall, the True branch attaches the body as a parametric
// constraint to every map it selects through the bound variables (enforced
// universally from then on), and the False branch produces a concrete
// witness and asserts that the body fails there. For exists the roles are
// swapped: the True branch asserts a witness where the body holds, and the
// False branch attaches the negated body as a universal constraint.
func (ev *Evaluator) evalQuantifier(n *ast.QuantifierExpr) (*value.Thunk, error) {
	guard, clause := splitImplication(n.Body)

	switch n.Kind {
	case ast.Forall:
		if ev.Gen.Bool() {
			if err := ev.attachUniversal(n.Vars, guard, clause); err != nil {
				return nil, err
			}
			return value.Literal(n.Position, value.Bool(true)), nil
		}
		if err := ev.assertWitness(n.Vars, guard, clause, false); err != nil {
			return nil, err
		}
		return value.Literal(n.Position, value.Bool(false)), nil

	case ast.Exists:
		if ev.Gen.Bool() {
			if err := ev.assertWitness(n.Vars, guard, clause, true); err != nil {
				return nil, err
			}
			return value.Literal(n.Position, value.Bool(true)), nil
		}
		negated := &ast.UnaryExpr{Op: ast.UnaryNot, Operand: clause}
		if err := ev.attachUniversal(n.Vars, guard, negated); err != nil {
			return nil, err
		}
		return value.Literal(n.Position, value.Bool(false)), nil

	default:
		return nil, boogerrors.NewUnsupported(n.Position, "quantifier kind")
	}
}

// splitImplication recognizes the common `guard ==> clause` axiom shape at
// the top level; anything else is treated as an unguarded clause. Only the
// top-level implication is split here; attachUniversal recombines guard and
// clause and does the full conjunction/disjunction split itself, so this
// split only shapes the witness assertion.
func splitImplication(body ast.Expression) (guard, clause ast.Expression) {
	if be, ok := body.(*ast.BinaryExpr); ok && be.Op == ast.BinImplies {
		return be.Left, be.Right
	}
	return nil, body
}

// attachUniversal extracts and attaches parametric map constraints from
// `guard ==> clause` quantified over vars: normalize to negation normal
// form, recurse through conjunctions and disjunctions accumulating a
// guard, and at each leaf derive one constraint per map-select whose own
// arguments can be simplicized against the bound variables.
func (ev *Evaluator) attachUniversal(vars []ast.BoundVar, guard, clause ast.Expression) error {
	body := clause
	if guard != nil {
		body = &ast.BinaryExpr{Op: ast.BinImplies, Left: guard, Right: clause}
	}
	bound := boundNames(vars)
	return ev.extractConstraints(bound, nil, toNNF(body, false))
}

// extractConstraints descends through the negation-prenex formula's ∧/∨
// spine, accumulating the guard under which each
// leaf must hold, and attaches a constraint per qualifying map-select at
// every leaf it reaches.
func (ev *Evaluator) extractConstraints(bound map[string]bool, guard, expr ast.Expression) error {
	if be, ok := expr.(*ast.BinaryExpr); ok {
		switch be.Op {
		case ast.BinAnd:
			if err := ev.extractConstraints(bound, guard, be.Left); err != nil {
				return err
			}
			return ev.extractConstraints(bound, guard, be.Right)
		case ast.BinOr:
			leftGuard := andExpr(guard, notExpr(be.Right))
			rightGuard := andExpr(guard, notExpr(be.Left))
			if err := ev.extractConstraints(bound, leftGuard, be.Left); err != nil {
				return err
			}
			return ev.extractConstraints(bound, rightGuard, be.Right)
		}
	}
	return ev.attachLeaf(bound, guard, expr)
}

// attachLeaf handles one extraction leaf: for each map-select occurring
// in it, simplicize its arguments against bound and attach the resulting
// parametric constraint to the selected map's Ref.
func (ev *Evaluator) attachLeaf(bound map[string]bool, guard, leaf ast.Expression) error {
	for _, sel := range collectMapSelects(leaf) {
		ref, err := ev.resolveMapRef(sel.Map)
		if err != nil {
			return err
		}
		pc, ok := ev.simplicize(ref, sel, bound, guard, leaf)
		if !ok {
			// This select's own args, guard, or body still depend on a
			// bound variable no formal of this select captures, so there
			// is no faithful point-local constraint to attach.
			continue
		}
		ev.Store.ExtendMap(ref, pc)
	}
	return nil
}

// simplicize derives one ParametricConstraint from sel's own arguments
//: an argument that is itself one of
// the quantifier's bound variables becomes that formal directly; any
// other argument, provided it contains none of the quantifier's own bound
// variables, is replaced by a fresh formal with an equality side-guard
// `fresh == arg` conjoined onto guard, so the constraint still only fires
// at the point the original expression actually selects. An argument that
// mixes a bound variable into a larger expression (`m[i+1]`), or a guard
// or body that mentions a bound variable no formal of this select
// captures (in `forall i, v :: m[i] == v ==> v >= 0`, `v` is not one of
// `m[i]`'s arguments), yields no constraint: there is no value to bind it
// to when this constraint is later instantiated at a single concrete
// point.
func (ev *Evaluator) simplicize(ref value.Ref, sel *ast.MapSelectExpr, bound map[string]bool, guard, leaf ast.Expression) (*constraint.ParametricConstraint, bool) {
	mapType, _ := ev.Mem.RefType(ref)
	formals := make([]constraint.Formal, len(sel.Args))
	fullGuard := guard
	covered := make(map[string]bool, len(sel.Args))
	for i, arg := range sel.Args {
		argType := types.Type{}
		if i < len(mapType.Args) {
			argType = mapType.Args[i]
		}
		if v, ok := arg.(*ast.VarExpr); ok && bound[v.Name] {
			formals[i] = constraint.Formal{Name: v.Name, Type: argType}
			covered[v.Name] = true
			continue
		}
		for _, fv := range constraint.FreeVars(arg) {
			if bound[fv] {
				return nil, false
			}
		}
		fresh := fmt.Sprintf("$sel%d", i)
		formals[i] = constraint.Formal{Name: fresh, Type: argType}
		fullGuard = andExpr(fullGuard, &ast.BinaryExpr{Op: ast.BinEq, Left: &ast.VarExpr{Name: fresh, Type: argType}, Right: arg})
	}
	for _, fv := range constraint.FreeVars(leaf) {
		if bound[fv] && !covered[fv] {
			return nil, false
		}
	}
	if guard != nil {
		for _, fv := range constraint.FreeVars(guard) {
			if bound[fv] && !covered[fv] {
				return nil, false
			}
		}
	}
	return &constraint.ParametricConstraint{Formals: formals, Guard: fullGuard, Body: leaf}, true
}

// toNNF pushes negation to the formula's leaves and eliminates ==>/<==
//, yielding a
// tree of ∧/∨ over (possibly negated) leaves for extractConstraints to
// walk.
func toNNF(expr ast.Expression, neg bool) ast.Expression {
	switch n := expr.(type) {
	case *ast.UnaryExpr:
		if n.Op == ast.UnaryNot {
			return toNNF(n.Operand, !neg)
		}
	case *ast.BinaryExpr:
		switch n.Op {
		case ast.BinAnd:
			if neg {
				return &ast.BinaryExpr{Op: ast.BinOr, Left: toNNF(n.Left, true), Right: toNNF(n.Right, true)}
			}
			return &ast.BinaryExpr{Op: ast.BinAnd, Left: toNNF(n.Left, false), Right: toNNF(n.Right, false)}
		case ast.BinOr:
			if neg {
				return &ast.BinaryExpr{Op: ast.BinAnd, Left: toNNF(n.Left, true), Right: toNNF(n.Right, true)}
			}
			return &ast.BinaryExpr{Op: ast.BinOr, Left: toNNF(n.Left, false), Right: toNNF(n.Right, false)}
		case ast.BinImplies:
			if neg {
				return &ast.BinaryExpr{Op: ast.BinAnd, Left: toNNF(n.Left, false), Right: toNNF(n.Right, true)}
			}
			return &ast.BinaryExpr{Op: ast.BinOr, Left: toNNF(n.Left, true), Right: toNNF(n.Right, false)}
		case ast.BinExplies:
			// `a <== b` means b ==> a, i.e. ¬b ∨ a.
			if neg {
				return &ast.BinaryExpr{Op: ast.BinAnd, Left: toNNF(n.Right, false), Right: toNNF(n.Left, true)}
			}
			return &ast.BinaryExpr{Op: ast.BinOr, Left: toNNF(n.Right, true), Right: toNNF(n.Left, false)}
		}
	}
	if neg {
		return notExpr(expr)
	}
	return expr
}

// andExpr conjoins a and b, treating a nil operand as the identity (no
// constraint yet).
func andExpr(a, b ast.Expression) ast.Expression {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &ast.BinaryExpr{Op: ast.BinAnd, Left: a, Right: b}
}

// notExpr negates e at the AST level (not evaluated).
func notExpr(e ast.Expression) ast.Expression {
	return &ast.UnaryExpr{Op: ast.UnaryNot, Operand: e}
}

// assertWitness picks a concrete binding for vars via the Generator and
// asserts guard(witness) && clause(witness) (wantPositive true), or
// guard(witness) && !clause(witness) (wantPositive false, the "forall
// fails here" case).
func (ev *Evaluator) assertWitness(vars []ast.BoundVar, guard, clause ast.Expression, wantPositive bool) error {
	witness := ev.generateWitness(vars)
	var assertion *value.Thunk
	err := ev.Mem.WithLocals(witness, func() error {
		g, e := evalOptional(ev, guard)
		if e != nil {
			return e
		}
		c, e := ev.Eval(clause)
		if e != nil {
			return e
		}
		if !wantPositive {
			c = notThunk(c)
		}
		assertion = conjoinThunks(g, c)
		return nil
	})
	if err != nil {
		return err
	}
	return unreachable(ev.Store.ExtendLogical(assertion))
}

func evalOptional(ev *Evaluator, expr ast.Expression) (*value.Thunk, error) {
	if expr == nil {
		return value.Literal(ast.Position{}, value.Bool(true)), nil
	}
	return ev.Eval(expr)
}

func conjoinThunks(a, b *value.Thunk) *value.Thunk {
	if ab, ok := a.AsBool(); ok {
		if !ab {
			return value.Literal(a.Position, value.Bool(false))
		}
		return b
	}
	if bb, ok := b.AsBool(); ok {
		if !bb {
			return value.Literal(b.Position, value.Bool(false))
		}
		return a
	}
	return value.Binary(a.Position, ast.BinAnd, a, b)
}

func notThunk(a *value.Thunk) *value.Thunk {
	if ab, ok := a.AsBool(); ok {
		return value.Literal(a.Position, value.Bool(!ab))
	}
	return value.Unary(a.Position, ast.UnaryNot, a)
}

func boundNames(vars []ast.BoundVar) map[string]bool {
	out := make(map[string]bool, len(vars))
	for _, v := range vars {
		out[v.Name] = true
	}
	return out
}

// generateWitness produces one concrete (or fresh-logical, for opaque
// types) binding per bound variable using the Generator.
func (ev *Evaluator) generateWitness(vars []ast.BoundVar) map[string]*value.Thunk {
	out := make(map[string]*value.Thunk, len(vars))
	for _, v := range vars {
		switch v.Type.Kind {
		case types.Bool:
			out[v.Name] = value.Literal(ast.Position{}, value.Bool(ev.Gen.Bool()))
		case types.Int:
			n := ev.Gen.Int(nil)
			out[v.Name] = value.Literal(ast.Position{}, &value.IntegerValue{V: n})
		default:
			ref := ev.Mem.FreshLogical(v.Type)
			out[v.Name] = value.LogicalRef(ast.Position{}, ref, v.Type)
		}
	}
	return out
}

// collectMapSelects walks leaf collecting every MapSelectExpr occurring in
// it, for attachLeaf to simplicize individually. It
// does not descend into a nested QuantifierExpr's or LambdaExpr's own Body:
// that inner scope binds its own variables, shadowing this extraction's
// bound set, so a select inside it is not simplicizable against these
// vars.
func collectMapSelects(expr ast.Expression) []*ast.MapSelectExpr {
	var out []*ast.MapSelectExpr
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.MapSelectExpr:
			out = append(out, n)
			walk(n.Map)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.MapUpdateExpr:
			walk(n.Map)
			for _, a := range n.Args {
				walk(a)
			}
			walk(n.New)
		case *ast.IfExpr:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.UnaryExpr:
			walk(n.Operand)
		case *ast.BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.CallExpr:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(expr)
	return out
}

// resolveMapRef evaluates a map-valued expression (typically a bare
// variable reference) to its concrete Ref.
func (ev *Evaluator) resolveMapRef(mapExpr ast.Expression) (value.Ref, error) {
	t, err := ev.Eval(mapExpr)
	if err != nil {
		return 0, err
	}
	mref, ok := t.AsMapRef()
	if !ok {
		return 0, boogerrors.NewUnsupported(mapExpr.Pos(), "expected map-valued expression")
	}
	return mref.Ref, nil
}
