package solver

import (
	"sort"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// BuildBlockingClause builds the clause a real SMT-backed SolutionSeq must
// conjoin with the original constraints before its next Check/Pick call to
// exclude prev, so successive Next calls enumerate distinct models.
// refTypes supplies each Ref's declared type, distinguishing
// opaque (Custom) refs — blocked via equality/disequality classes between
// distinct tags — from plain int/bool refs, which are blocked by direct
// value disequality.
//
// The Trivial solver does not call this: its Check is unconditionally SAT
// and its Pick never excludes a prior answer, so it cannot honor a
// blocking clause meaningfully. This function exists for a real backend
// plugged in as Solver; it is exercised directly by this package's tests
// as part of the facade contract.
func BuildBlockingClause(prev Solution, refTypes map[value.Ref]types.Type) *value.Thunk {
	var clause *value.Thunk

	classes := make(map[string][]value.Ref) // opaque type name -> refs sharing a tag class, keyed by "type#tag"
	ordered := make([]value.Ref, 0, len(refTypes))
	for ref := range refTypes {
		ordered = append(ordered, ref)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, ref := range ordered {
		t := refTypes[ref]
		v, ok := prev[ref]
		if !ok {
			continue
		}
		if t.IsOpaque() {
			cv, ok := v.(*value.CustomValue)
			if !ok {
				continue
			}
			key := classKey(t, cv.Tag)
			classes[key] = append(classes[key], ref)
			continue
		}
		neq := value.Binary(ast.Position{}, ast.BinNeq, value.LogicalRef(ast.Position{}, ref, t), value.Literal(ast.Position{}, v))
		clause = disjoin(clause, neq)
	}

	// Opaque refs: the prior model's facts are "refs within a class are all
	// equal" (chained eq between successive refs) and "distinct classes are
	// pairwise disequal" (neq between every pair of representatives).
	// Negating that conjunction disjoins the negation of each fact: a neq
	// per chained pair within a class, an eq per representative pair across
	// classes. Keys are sorted so the emitted clause is deterministic.
	keys := make([]string, 0, len(classes))
	for k := range classes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		refs := classes[k]
		for i := 1; i < len(refs); i++ {
			neq := value.Binary(ast.Position{}, ast.BinNeq,
				value.LogicalRef(ast.Position{}, refs[i-1], refTypes[refs[i-1]]),
				value.LogicalRef(ast.Position{}, refs[i], refTypes[refs[i]]))
			clause = disjoin(clause, neq)
		}
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			a := classes[keys[i]][0]
			b := classes[keys[j]][0]
			eq := value.Binary(ast.Position{}, ast.BinEq,
				value.LogicalRef(ast.Position{}, a, refTypes[a]),
				value.LogicalRef(ast.Position{}, b, refTypes[b]))
			clause = disjoin(clause, eq)
		}
	}

	if clause == nil {
		return value.Literal(ast.Position{}, value.Bool(false))
	}
	return clause
}

func classKey(t types.Type, tag int64) string {
	return t.Name + "#" + value.Int(tag).String()
}

func disjoin(acc, t *value.Thunk) *value.Thunk {
	if acc == nil {
		return t
	}
	return value.Binary(ast.Position{}, ast.BinOr, acc, t)
}
