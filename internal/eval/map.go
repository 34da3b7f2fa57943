package eval

import (
	"fmt"

	"github.com/halsten/boogaloo/ast"
	boogerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

func (ev *Evaluator) evalMapSelect(n *ast.MapSelectExpr) (*value.Thunk, error) {
	mapThunk, err := ev.Eval(n.Map)
	if err != nil {
		return nil, err
	}
	mref, ok := mapThunk.AsMapRef()
	if !ok {
		return nil, boogerrors.NewUnsupported(n.Position, fmt.Sprintf(boogerrors.ErrMsgNotAMap, mapThunk.String()))
	}
	args, err := ev.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	return ev.selectMap(n.Position, mref.Ref, args)
}

func (ev *Evaluator) evalArgs(exprs []ast.Expression) ([]*value.Thunk, error) {
	out := make([]*value.Thunk, len(exprs))
	for i, e := range exprs {
		t, err := ev.Eval(e)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// selectMap resolves ref[args], consulting the memoized point cache first,
// then any update-link chain, and finally allocating a fresh logical
// placeholder. Every cache miss enqueues the point; the Constraint Manager
// applies the map's parametric constraints there when it drains the queue.
func (ev *Evaluator) selectMap(pos ast.Position, ref value.Ref, args []*value.Thunk) (*value.Thunk, error) {
	mi, ok := ev.Mem.GetMapInstance(ref)
	if ok {
		if cached, found := mi.Get(args); found {
			return cached, nil
		}
	}

	var result *value.Thunk
	switch {
	case hasUpdate(ev, ref):
		r, err := ev.selectUpdated(pos, ref, args)
		if err != nil {
			return nil, err
		}
		result = r
	case hasLambda(ev, ref):
		link, _ := ev.Mem.GetLambdaLink(ref)
		names := make([]string, len(link.Formals))
		for i, f := range link.Formals {
			names[i] = f.Name
		}
		r, err := ev.evalWithBindings(names, args, link.Body)
		if err != nil {
			return nil, err
		}
		result = r
	default:
		resultType := ev.mapResultType(ref)
		result = value.LogicalRef(pos, ev.Mem.FreshLogical(resultType), resultType)
	}

	ev.Mem.SetMapValue(ref, args, result)
	ev.Store.NoteMaterialized(ref, args)
	ev.Store.Enqueue(ref, args)

	return result, nil
}

// selectUpdated resolves a selection against a map produced by a
// map-update expression. A selection whose arguments are structurally the
// updated point reads the new value; one that is provably distinct reads
// through to the base map; anything else stays conditional on the
// arguments' symbolic equality, so a later model in which they coincide
// still observes the update rather than the base.
func (ev *Evaluator) selectUpdated(pos ast.Position, ref value.Ref, args []*value.Thunk) (*value.Thunk, error) {
	link, _ := ev.Mem.MapUpdateLink(ref)
	if value.ArgsKey(args) == value.ArgsKey(link.Args) {
		return link.New, nil
	}
	eq, err := ev.argsEqual(pos, args, link.Args)
	if err != nil {
		return nil, err
	}
	if b, ok := eq.AsBool(); ok {
		if b {
			return link.New, nil
		}
		return ev.selectMap(pos, link.Base, args)
	}
	base, err := ev.selectMap(pos, link.Base, args)
	if err != nil {
		return nil, err
	}
	return value.If(pos, eq, link.New, base), nil
}

// argsEqual folds pointwise equality over two argument tuples.
func (ev *Evaluator) argsEqual(pos ast.Position, a, b []*value.Thunk) (*value.Thunk, error) {
	if len(a) != len(b) {
		return value.Literal(pos, value.Bool(false)), nil
	}
	eq := value.Literal(pos, value.Bool(true))
	for i := range a {
		c, err := ev.reduceBinary(pos, ast.BinEq, a[i], b[i])
		if err != nil {
			return nil, err
		}
		eq = conjoinThunks(eq, c)
	}
	return eq, nil
}

func hasUpdate(ev *Evaluator, ref value.Ref) bool {
	_, ok := ev.Mem.MapUpdateLink(ref)
	return ok
}

func hasLambda(ev *Evaluator, ref value.Ref) bool {
	_, ok := ev.Mem.GetLambdaLink(ref)
	return ok
}

// evalWithBindings evaluates expr with names bound positionally to args in
// a temporary local scope.
func (ev *Evaluator) evalWithBindings(names []string, args []*value.Thunk, expr ast.Expression) (*value.Thunk, error) {
	bindings := make(map[string]*value.Thunk, len(names))
	for i, name := range names {
		if i < len(args) {
			bindings[name] = args[i]
		}
	}
	var result *value.Thunk
	err := ev.Mem.WithLocals(bindings, func() error {
		var e error
		result, e = ev.Eval(expr)
		return e
	})
	return result, err
}

// mapResultType returns the declared result type of the map at ref. A
// well-typed program always has this registered; an unregistered ref
// yields the zero Type.
func (ev *Evaluator) mapResultType(ref value.Ref) types.Type {
	t, _ := ev.Mem.RefType(ref)
	if t.Result != nil {
		return *t.Result
	}
	return types.Type{}
}

func (ev *Evaluator) evalMapUpdate(n *ast.MapUpdateExpr) (*value.Thunk, error) {
	mapThunk, err := ev.Eval(n.Map)
	if err != nil {
		return nil, err
	}
	mref, ok := mapThunk.AsMapRef()
	if !ok {
		return nil, boogerrors.NewUnsupported(n.Position, fmt.Sprintf(boogerrors.ErrMsgNotAMap, mapThunk.String()))
	}
	args, err := ev.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	newVal, err := ev.Eval(n.New)
	if err != nil {
		return nil, err
	}

	mapType, _ := ev.Mem.RefType(mref.Ref)
	newRef := ev.Mem.FreshMapRef(mapType, nil)
	ev.Mem.LinkMapUpdate(newRef, mref.Ref, args, newVal)

	return value.Literal(n.Position, &value.MapRefValue{Ref: newRef, MapType: mapType}), nil
}
