// Package constraint implements the Constraint Store: logical
// constraints, per-name constraints, per-map parametric constraints, and
// the dirty-point queue that drives propagation.
package constraint

import (
	"fmt"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// Formal is one parameter of a parametric map constraint.
type Formal struct {
	Name string
	Type types.Type
}

// ParametricConstraint is `lambda formals :: guard ==> body`, attached to
// a map Ref. Guard is nil for an unconditional constraint. Both are raw
// expressions, instantiated by substituting Formals with concrete argument
// thunks at each queued point.
type ParametricConstraint struct {
	Formals []Formal
	Guard   ast.Expression // nil => unguarded
	Body    ast.Expression
}

// Point is one (map_ref, arg_tuple) pair awaiting propagation of its map
// constraints. Args are the Thunks the selection
// expression's arguments reduced to, which may themselves be unresolved
// logical references.
type Point struct {
	MapRef value.Ref
	Args   []*value.Thunk
}

func pointKey(p Point) string {
	return fmt.Sprintf("%s:%s", p.MapRef, value.ArgsKey(p.Args))
}

// UnreachableError is raised by ExtendLogical when a literal-False thunk is
// asserted unconditionally.
type UnreachableError struct {
	Position ast.Position
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("%s: assumption violated (unreachable)", e.Position)
}

// Store is the Constraint Store.
type Store struct {
	logical []*value.Thunk

	nameConstraints [2]map[string][]ast.Expression // indexed by types.Scope

	mapConstraints map[value.Ref][]*ParametricConstraint

	queue        []Point
	queued       map[string]bool
	materialized map[value.Ref]map[string][]*value.Thunk // ref -> argsKey -> args, for re-enqueue on ExtendMap

	changed bool

	caseCounts map[string]int // "ref:constraintIndex" -> enablement count
}

// NewStore creates an empty Constraint Store.
func NewStore() *Store {
	s := &Store{
		mapConstraints: make(map[value.Ref][]*ParametricConstraint),
		queued:         make(map[string]bool),
		materialized:   make(map[value.Ref]map[string][]*value.Thunk),
		caseCounts:     make(map[string]int),
	}
	s.nameConstraints[types.Globals] = make(map[string][]ast.Expression)
	s.nameConstraints[types.Locals] = make(map[string][]ast.Expression)
	return s
}

// ExtendLogical appends a Boolean thunk to the path condition. Literal
// True is a no-op; literal False raises UnreachableError at
// its position instead of being appended.
func (s *Store) ExtendLogical(t *value.Thunk) error {
	if b, ok := t.AsBool(); ok {
		if b {
			return nil
		}
		return &UnreachableError{Position: t.Position}
	}
	s.logical = append(s.logical, t)
	s.changed = true
	return nil
}

// LogicalConstraints returns the current path condition.
func (s *Store) LogicalConstraints() []*value.Thunk {
	return s.logical
}

// Changed reports whether a logical constraint was added since the last
// SAT check.
func (s *Store) Changed() bool {
	return s.changed
}

// ClearChanged resets the changed flag (called by the Constraint Manager
// after a successful SAT check).
func (s *Store) ClearChanged() {
	s.changed = false
}

// Mark returns the current length of the logical path condition, a
// savepoint a caller can later pass to Rollback.
func (s *Store) Mark() int {
	return len(s.logical)
}

// Rollback truncates the logical path condition back to a savepoint
// returned by Mark. Used by the Statement Executor's goto retry: the
// Store is append-only in-process rather than backed by an incremental
// solver's scope stack, so popping a scope here means discarding the
// constraints a failed branch attempt appended.
func (s *Store) Rollback(mark int) {
	if mark < len(s.logical) {
		s.logical = s.logical[:mark]
		s.changed = true
	}
}

// ExtendName registers expr under every free variable it mentions within
// the given scope.
func (s *Store) ExtendName(scope types.Scope, expr ast.Expression) {
	for _, name := range FreeVars(expr) {
		s.nameConstraints[scope][name] = append(s.nameConstraints[scope][name], expr)
	}
}

// NameConstraints returns every constraint registered for name in scope.
func (s *Store) NameConstraints(scope types.Scope, name string) []ast.Expression {
	return s.nameConstraints[scope][name]
}

// ExtendMap appends a parametric constraint to ref and re-enqueues every
// already-materialized point of ref not currently queued.
func (s *Store) ExtendMap(ref value.Ref, pc *ParametricConstraint) {
	s.mapConstraints[ref] = append(s.mapConstraints[ref], pc)
	for _, args := range s.materialized[ref] {
		p := Point{MapRef: ref, Args: args}
		s.enqueueIfAbsent(p)
	}
}

// MapConstraints returns every parametric constraint attached to ref.
func (s *Store) MapConstraints(ref value.Ref) []*ParametricConstraint {
	return s.mapConstraints[ref]
}

// NoteMaterialized records that (ref, args) now has a cached selection, so
// future ExtendMap calls know to re-enqueue it if it becomes dirty.
func (s *Store) NoteMaterialized(ref value.Ref, args []*value.Thunk) {
	byKey, ok := s.materialized[ref]
	if !ok {
		byKey = make(map[string][]*value.Thunk)
		s.materialized[ref] = byKey
	}
	byKey[value.ArgsKey(args)] = args
}

// Enqueue adds (ref, args) to the point queue if it is not already present.
func (s *Store) Enqueue(ref value.Ref, args []*value.Thunk) {
	s.enqueueIfAbsent(Point{MapRef: ref, Args: args})
}

func (s *Store) enqueueIfAbsent(p Point) {
	k := pointKey(p)
	if s.queued[k] {
		return
	}
	s.queued[k] = true
	s.queue = append(s.queue, p)
}

// HasQueued reports whether any point awaits propagation.
func (s *Store) HasQueued() bool {
	return len(s.queue) > 0
}

// Dequeue removes and returns the oldest queued point.
func (s *Store) Dequeue() (Point, bool) {
	if len(s.queue) == 0 {
		return Point{}, false
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	delete(s.queued, pointKey(p))
	return p, true
}

// QueueLen returns the number of points currently awaiting propagation.
func (s *Store) QueueLen() int {
	return len(s.queue)
}

// CaseCount returns the current enablement count for (ref, constraintIndex),
// used as a tie-breaker when choosing guarded cases least-used-first.
func (s *Store) CaseCount(ref value.Ref, idx int) int {
	return s.caseCounts[caseKey(ref, idx)]
}

// IncrementCaseCount bumps the enablement count for (ref, constraintIndex).
func (s *Store) IncrementCaseCount(ref value.Ref, idx int) {
	s.caseCounts[caseKey(ref, idx)]++
}

func caseKey(ref value.Ref, idx int) string {
	return fmt.Sprintf("%s#%d", ref, idx)
}
