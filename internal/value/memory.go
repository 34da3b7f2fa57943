package value

import (
	"strings"

	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/types"
)

// Region is one of Memory's four name stores.
type Region int

const (
	RegionLocals Region = iota
	RegionGlobals
	RegionOld
	RegionConstants
)

func (r Region) String() string {
	switch r {
	case RegionLocals:
		return "locals"
	case RegionGlobals:
		return "globals"
	case RegionOld:
		return "old"
	case RegionConstants:
		return "constants"
	default:
		return "?"
	}
}

// MapInstance is a finite mapping from argument tuples to Thunks.
// Freshly generated maps start empty. Keys are Thunks,
// not concrete Values: a selection argument may itself be an unresolved
// logical reference, so dedup is structural.
type MapInstance struct {
	MapType types.Type
	points  map[string]*mapEntry
}

type mapEntry struct {
	Args  []*Thunk
	Thunk *Thunk
}

func newMapInstance(t types.Type) *MapInstance {
	return &MapInstance{MapType: t, points: make(map[string]*mapEntry)}
}

// ArgsKey builds a canonical key for an argument-thunk tuple so structurally
// identical symbolic arguments collide and distinct ones never do. Exported
// so the constraint store uses the same key space for its dirty-point
// queue.
func ArgsKey(args []*Thunk) string {
	return argsKey(args)
}

func argsKey(args []*Thunk) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		if a == nil {
			sb.WriteString("?")
			continue
		}
		switch a.Kind {
		case TermLit:
			sb.WriteString("l:")
			sb.WriteString(a.Lit.Type().String())
			sb.WriteByte(':')
			sb.WriteString(a.Lit.String())
		case TermRef:
			sb.WriteString("r:")
			sb.WriteString(a.Ref.String())
		default:
			sb.WriteString("s:")
			sb.WriteString(a.String())
		}
	}
	return sb.String()
}

// Get looks up the cached selection for args.
func (mi *MapInstance) Get(args []*Thunk) (*Thunk, bool) {
	e, ok := mi.points[argsKey(args)]
	if !ok {
		return nil, false
	}
	return e.Thunk, true
}

// Set caches the selection for args.
func (mi *MapInstance) Set(args []*Thunk, t *Thunk) {
	mi.points[argsKey(args)] = &mapEntry{Args: append([]*Thunk(nil), args...), Thunk: t}
}

// Points returns every currently materialized (args, thunk) pair. Order is
// unspecified; callers that need determinism should sort by key.
func (mi *MapInstance) Points() [][2]any {
	out := make([][2]any, 0, len(mi.points))
	for _, e := range mi.points {
		out = append(out, [2]any{e.Args, e.Thunk})
	}
	return out
}

// frame holds the per-activation state of a single procedure call: its
// local bindings, the old-globals snapshot visible to its postconditions,
// and the set of globals it has modified.
type frame struct {
	Locals   map[string]*Thunk
	Old      map[string]*Thunk
	Modified map[string]bool
}

func newFrame() *frame {
	return &frame{
		Locals:   make(map[string]*Thunk),
		Old:      make(map[string]*Thunk),
		Modified: make(map[string]bool),
	}
}

// LambdaFormal is one bound variable of a LambdaLink.
type LambdaFormal struct {
	Name string
	Type types.Type
}

// LambdaLink records that ref was produced by a lambda expression: ref's
// value at any args equals Body with Formals bound to args.
type LambdaLink struct {
	Formals []LambdaFormal
	Body    ast.Expression
}

// UpdateLink records that ref was produced by a map-update expression:
// ref[Args] = New, and ref[x] = Base[x] for every x != Args.
type UpdateLink struct {
	Base Ref
	Args []*Thunk
	New  *Thunk
}

// Memory is the engine's entire mutable value state.
type Memory struct {
	globals   map[string]*Thunk
	constants map[string]*Thunk
	heap      map[Ref]*MapInstance
	refTypes  map[Ref]types.Type
	logical   map[Ref]Value
	updates   map[Ref]*UpdateLink
	lambdas   map[Ref]*LambdaLink

	cur   *frame
	stack []*frame
}

// NewMemory creates the empty Memory an execution starts from.
func NewMemory() *Memory {
	return &Memory{
		globals:   make(map[string]*Thunk),
		constants: make(map[string]*Thunk),
		heap:      make(map[Ref]*MapInstance),
		refTypes:  make(map[Ref]types.Type),
		logical:   make(map[Ref]Value),
		updates:   make(map[Ref]*UpdateLink),
		lambdas:   make(map[Ref]*LambdaLink),
		cur:       newFrame(),
	}
}

// EnterProcedure snapshots old-globals into Old, empties Locals, and
// clears the modified-set; the outer caller's frame is pushed so it can be
// restored by ExitProcedure.
func (m *Memory) EnterProcedure() {
	next := newFrame()
	for name, t := range m.globals {
		next.Old[name] = t
	}
	m.stack = append(m.stack, m.cur)
	m.cur = next
}

// ExitProcedure restores the caller's frame, propagating "clean" old
// values: global names the callee's Old snapshot captured (typically via
// lazy first-reference, see SetVar) that the restored caller frame does
// not yet know about and has not itself modified.
func (m *Memory) ExitProcedure() {
	if len(m.stack) == 0 {
		return
	}
	callee := m.cur
	caller := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	for name, t := range callee.Old {
		if _, present := caller.Old[name]; present {
			continue
		}
		if caller.Modified[name] {
			continue
		}
		caller.Old[name] = t
	}
	m.cur = caller
}

// ClearModified empties the current frame's modified-set.
func (m *Memory) ClearModified() {
	m.cur.Modified = make(map[string]bool)
}

// IsModified reports whether name is in the current frame's modified-set.
func (m *Memory) IsModified(name string) bool {
	return m.cur.Modified[name]
}

// ModifiedNames returns the current frame's modified global names.
func (m *Memory) ModifiedNames() []string {
	out := make([]string, 0, len(m.cur.Modified))
	for n := range m.cur.Modified {
		out = append(out, n)
	}
	return out
}

// GetVar reads a name from the given region.
func (m *Memory) GetVar(region Region, name string) (*Thunk, bool) {
	switch region {
	case RegionLocals:
		t, ok := m.cur.Locals[name]
		return t, ok
	case RegionGlobals:
		t, ok := m.globals[name]
		return t, ok
	case RegionOld:
		t, ok := m.cur.Old[name]
		return t, ok
	case RegionConstants:
		t, ok := m.constants[name]
		return t, ok
	default:
		return nil, false
	}
}

// SetVar writes a name into the given region.
// Writing a global for the first time anywhere in the execution also
// seeds its Old snapshot, so an old() reference still resolves for a
// global first touched inside the current call.
func (m *Memory) SetVar(region Region, name string, t *Thunk) {
	switch region {
	case RegionLocals:
		m.cur.Locals[name] = t
	case RegionGlobals:
		_, hadValue := m.globals[name]
		m.globals[name] = t
		if !hadValue {
			if _, hasOld := m.cur.Old[name]; !hasOld {
				m.cur.Old[name] = t
			}
		}
		m.cur.Modified[name] = true
	case RegionOld:
		m.cur.Old[name] = t
	case RegionConstants:
		m.constants[name] = t
	}
}

// DefineGlobal installs a global's initial thunk without marking it
// modified — used by lazy first-reference allocation, which is an initialization, not a write by program logic.
func (m *Memory) DefineGlobal(name string, t *Thunk) {
	m.globals[name] = t
	if _, hasOld := m.cur.Old[name]; !hasOld {
		m.cur.Old[name] = t
	}
}

// ForgetVar forgets a name's binding, used by
// Havoc. Forgetting a global also marks it modified in the current frame.
func (m *Memory) ForgetVar(region Region, name string) {
	switch region {
	case RegionLocals:
		delete(m.cur.Locals, name)
	case RegionGlobals:
		delete(m.globals, name)
		m.cur.Modified[name] = true
	case RegionOld:
		delete(m.cur.Old, name)
	case RegionConstants:
		delete(m.constants, name)
	}
}

// ResolveRegion picks the store a write lands in: Locals if in local
// scope, else Globals if in global scope, else Constants.
func ResolveRegion(scope types.Scope, inLocalScope, inGlobalScope bool) Region {
	if inLocalScope {
		return RegionLocals
	}
	if inGlobalScope {
		return RegionGlobals
	}
	return RegionConstants
}

// FreshLogical allocates a fresh logical Ref of the given type.
func (m *Memory) FreshLogical(t types.Type) Ref {
	r := NewRef()
	m.refTypes[r] = t
	return r
}

// RefType returns the declared type of a logical Ref.
func (m *Memory) RefType(r Ref) (types.Type, bool) {
	t, ok := m.refTypes[r]
	return t, ok
}

// FreshMapRef allocates a fresh map heap entry seeded with initial (or an
// empty instance of mapType if initial is nil) and returns its Ref.
func (m *Memory) FreshMapRef(mapType types.Type, initial *MapInstance) Ref {
	r := NewRef()
	m.refTypes[r] = mapType
	if initial == nil {
		initial = newMapInstance(mapType)
	}
	m.heap[r] = initial
	return r
}

// GetMapInstance returns the map instance stored at ref.
func (m *Memory) GetMapInstance(ref Ref) (*MapInstance, bool) {
	mi, ok := m.heap[ref]
	return mi, ok
}

// SetMapValue caches a selection result for (ref, args). The invariant "if (r, args) is in the point queue then
// map_heap[r][args] exists" is maintained by callers enqueuing only after
// calling this.
func (m *Memory) SetMapValue(ref Ref, args []*Thunk, t *Thunk) {
	mi, ok := m.heap[ref]
	if !ok {
		mi = newMapInstance(types.Type{})
		m.heap[ref] = mi
	}
	mi.Set(args, t)
}

// LinkMapUpdate records that ref was produced by updating base at args to
// newVal, for selectMap to forward non-matching selections to base.
func (m *Memory) LinkMapUpdate(ref, base Ref, args []*Thunk, newVal *Thunk) {
	m.updates[ref] = &UpdateLink{Base: base, Args: append([]*Thunk(nil), args...), New: newVal}
}

// MapUpdateLink returns the update link recorded for ref, if any.
func (m *Memory) MapUpdateLink(ref Ref) (*UpdateLink, bool) {
	l, ok := m.updates[ref]
	return l, ok
}

// SetLambdaLink records that ref denotes a lambda-defined map.
func (m *Memory) SetLambdaLink(ref Ref, link *LambdaLink) {
	m.lambdas[ref] = link
}

// GetLambdaLink returns the lambda link recorded for ref, if any.
func (m *Memory) GetLambdaLink(ref Ref) (*LambdaLink, bool) {
	l, ok := m.lambdas[ref]
	return l, ok
}

// WithLocals runs fn with the current frame's Locals temporarily extended
// (shadowed) by bindings, restoring the prior Locals map on return — used
// to bind formals during function-macro inlining and parametric-constraint
// instantiation.
func (m *Memory) WithLocals(bindings map[string]*Thunk, fn func() error) error {
	old := m.cur.Locals
	next := make(map[string]*Thunk, len(old)+len(bindings))
	for k, v := range old {
		next[k] = v
	}
	for k, v := range bindings {
		next[k] = v
	}
	m.cur.Locals = next
	err := fn()
	m.cur.Locals = old
	return err
}

// SetLogicalSolution records the solver's assignment for ref.
func (m *Memory) SetLogicalSolution(ref Ref, v Value) {
	m.logical[ref] = v
}

// LogicalSolution returns the solver's assignment for ref, if any.
func (m *Memory) LogicalSolution(ref Ref) (Value, bool) {
	v, ok := m.logical[ref]
	return v, ok
}

// PendingLogicalRefs returns every scalar (non-map) logical Ref allocated
// so far that the solver has not yet assigned a value to, keyed by its
// declared type — the full universe a solve_and_concretize call must hand
// the Solver so every havoc'd-but-unconstrained variable still gets a
// witness value, not just the ones mentioned in a logical constraint.
func (m *Memory) PendingLogicalRefs() map[Ref]types.Type {
	out := make(map[Ref]types.Type)
	for r, t := range m.refTypes {
		if t.Kind == types.Map {
			continue
		}
		if _, solved := m.logical[r]; solved {
			continue
		}
		out[r] = t
	}
	return out
}

// AllLogicalSolutions returns a snapshot of every Ref the solver has
// concretized so far.
func (m *Memory) AllLogicalSolutions() map[Ref]Value {
	out := make(map[Ref]Value, len(m.logical))
	for r, v := range m.logical {
		out[r] = v
	}
	return out
}

// Snapshot captures every visible store (locals/globals/old/constants)
// for a failure report or a `pass` TestCase.
type Snapshot struct {
	Locals    map[string]*Thunk
	Globals   map[string]*Thunk
	Old       map[string]*Thunk
	Constants map[string]*Thunk
}

// Snapshot copies the current visible stores.
func (m *Memory) Snapshot() Snapshot {
	cp := func(src map[string]*Thunk) map[string]*Thunk {
		dst := make(map[string]*Thunk, len(src))
		for k, v := range src {
			dst[k] = v
		}
		return dst
	}
	return Snapshot{
		Locals:    cp(m.cur.Locals),
		Globals:   cp(m.globals),
		Old:       cp(m.cur.Old),
		Constants: cp(m.constants),
	}
}

// AllMapRefs returns every Ref currently present in the map heap, in no
// particular order.
func (m *Memory) AllMapRefs() []Ref {
	out := make([]Ref, 0, len(m.heap))
	for r := range m.heap {
		out = append(out, r)
	}
	return out
}
