package eval

import (
	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/value"
)

// evalLambda allocates a fresh map ref denoting the lambda and links it so
// selectMap computes each selection by instantiating Body at the selection
// args.
func (ev *Evaluator) evalLambda(n *ast.LambdaExpr) (*value.Thunk, error) {
	ref := ev.Mem.FreshMapRef(n.Type, nil)

	formals := make([]value.LambdaFormal, len(n.Vars))
	for i, v := range n.Vars {
		formals[i] = value.LambdaFormal{Name: v.Name, Type: v.Type}
	}
	ev.Mem.SetLambdaLink(ref, &value.LambdaLink{Formals: formals, Body: n.Body})

	return value.Literal(n.Position, &value.MapRefValue{Ref: ref, MapType: n.Type}), nil
}
