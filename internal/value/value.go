// Package value implements the symbolic engine's value system and the
// four-region Memory store: concrete values, map references,
// logical placeholders, and the thunk algebra the evaluator reduces
// expressions to.
package value

import (
	"fmt"
	"math/big"

	"github.com/halsten/boogaloo/types"
)

// Ref is a process-wide monotonically allocated logical placeholder id.
// Once a Ref appears in Memory or any constraint it must never be reused
// or removed until the enclosing test case ends.
type Ref int64

func (r Ref) String() string { return fmt.Sprintf("$%d", int64(r)) }

var nextRef int64

// NewRef allocates the next logical reference id. Allocation is
// process-wide: refs are never recycled within a running engine instance.
func NewRef() Ref {
	nextRef++
	return Ref(nextRef)
}

// Value is a concrete runtime value. Values are immutable; every operation
// that "changes" a value produces a new one.
type Value interface {
	Type() types.Type
	String() string
}

// IntegerValue is an arbitrary-precision integer.
type IntegerValue struct {
	V *big.Int
}

// Int constructs an IntegerValue from an int64.
func Int(n int64) *IntegerValue { return &IntegerValue{V: big.NewInt(n)} }

func (i *IntegerValue) Type() types.Type { return types.IntType }
func (i *IntegerValue) String() string   { return i.V.String() }

// BooleanValue is a two-valued boolean.
type BooleanValue struct {
	V bool
}

// Bool constructs a BooleanValue.
func Bool(b bool) *BooleanValue { return &BooleanValue{V: b} }

func (b *BooleanValue) Type() types.Type { return types.BoolType }
func (b *BooleanValue) String() string   { return fmt.Sprintf("%t", b.V) }

// MapRefValue is a type-tagged id into the map heap.
type MapRefValue struct {
	Ref     Ref
	MapType types.Type
}

func (m *MapRefValue) Type() types.Type { return m.MapType }
func (m *MapRefValue) String() string   { return m.Ref.String() }

// CustomValue is an opaque value of a user-defined type. Two customs are
// equal iff their Tag integers match.
type CustomValue struct {
	Tag   int64
	CType types.Type
}

func (c *CustomValue) Type() types.Type { return c.CType }
func (c *CustomValue) String() string   { return fmt.Sprintf("%s!%d", c.CType.Name, c.Tag) }

// Equal reports identity-level value equality: two MapRefValues compare by
// Ref only, never by heap content. This is a low-level building block, not
// the engine's equality semantics for `==`/`!=` on map-typed expressions —
// those unfold to a quantified content comparison in the evaluator (the
// map-equality special case in internal/eval's reduceBinary, which compares
// two map refs itself) before this function is ever consulted, so there the
// MapRefValue branch below is reached only when the other operand is not a
// map reference.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *IntegerValue:
		bv, ok := b.(*IntegerValue)
		return ok && av.V.Cmp(bv.V) == 0
	case *BooleanValue:
		bv, ok := b.(*BooleanValue)
		return ok && av.V == bv.V
	case *MapRefValue:
		bv, ok := b.(*MapRefValue)
		return ok && av.Ref == bv.Ref
	case *CustomValue:
		bv, ok := b.(*CustomValue)
		return ok && av.Tag == bv.Tag
	default:
		return false
	}
}
