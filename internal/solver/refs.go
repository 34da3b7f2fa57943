package solver

import (
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// CollectRefs walks a set of constraint thunks and returns every logical
// Ref (TermRef) they mention, keyed by its declared type — the set a
// backend (or the Trivial solver) must assign a value to for the
// constraints to denote a complete model.
func CollectRefs(constraints []*value.Thunk) map[value.Ref]types.Type {
	out := make(map[value.Ref]types.Type)
	var walk func(t *value.Thunk)
	walk = func(t *value.Thunk) {
		if t == nil {
			return
		}
		switch t.Kind {
		case value.TermRef:
			out[t.Ref] = t.RefType
		case value.TermIf:
			walk(t.Cond)
			walk(t.Then)
			walk(t.Else)
		case value.TermUnary:
			walk(t.Operand)
		case value.TermBinary:
			walk(t.Left)
			walk(t.Right)
		}
	}
	for _, c := range constraints {
		walk(c)
	}
	return out
}
