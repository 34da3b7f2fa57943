package eval

import (
	"fmt"

	"github.com/halsten/boogaloo/ast"
	boogerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/value"
)

// evalCall inlines a function macro's body at the call site, or treats the
// call as a selection into the persistent map backing an uninterpreted
// function.
func (ev *Evaluator) evalCall(n *ast.CallExpr) (*value.Thunk, error) {
	args, err := ev.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}

	if macro, ok := ev.Macros[n.Name]; ok {
		names := make([]string, len(macro.Formals))
		for i, f := range macro.Formals {
			names[i] = f.Name
		}
		return ev.evalWithBindings(names, args, macro.Body)
	}

	if ref, ok := ev.UninterpretedRefs[n.Name]; ok {
		return ev.selectMap(n.Position, ref, args)
	}

	return nil, boogerrors.NewUnsupported(n.Position, fmt.Sprintf(boogerrors.ErrMsgUndefinedFunc, n.Name))
}
