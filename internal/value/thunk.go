package value

import (
	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/types"
)

// TermKind tags the closed union a Thunk reduces to. The evaluator only
// ever produces one of these five shapes; every other expression kind
// (quantifiers, lambdas, map selection/update, calls, old) always reduces
// further until it lands on one of them.
type TermKind int

const (
	// TermLit is a fully concrete value; the thunk is "literal".
	TermLit TermKind = iota
	// TermRef is an unresolved logical placeholder (an integer/bool/custom
	// symbolic value awaiting solver concretization).
	TermRef
	// TermIf preserves a symbolic if-then-else whose condition did not
	// reduce to a literal boolean.
	TermIf
	// TermUnary preserves a unary operation over a non-literal operand.
	TermUnary
	// TermBinary preserves a binary operation over non-literal operands.
	TermBinary
)

// Thunk is an expression carrying a source position. It is
// the evaluator's sole result type: Eval always returns a Thunk, whether
// or not reduction bottomed out at a literal.
type Thunk struct {
	Kind     TermKind
	Position ast.Position

	Lit Value // TermLit

	Ref     Ref        // TermRef
	RefType types.Type // TermRef: declared type of the placeholder

	Cond, Then, Else *Thunk // TermIf

	UnOp    ast.UnaryOp // TermUnary
	Operand *Thunk      // TermUnary

	BinOp       ast.BinaryOp // TermBinary
	Left, Right *Thunk       // TermBinary
}

// Literal wraps a concrete value at the given position.
func Literal(pos ast.Position, v Value) *Thunk {
	return &Thunk{Kind: TermLit, Position: pos, Lit: v}
}

// LogicalRef wraps an unresolved placeholder reference at the given
// position.
func LogicalRef(pos ast.Position, ref Ref, t types.Type) *Thunk {
	return &Thunk{Kind: TermRef, Position: pos, Ref: ref, RefType: t}
}

// If preserves a symbolic if-then-else.
func If(pos ast.Position, cond, then, els *Thunk) *Thunk {
	return &Thunk{Kind: TermIf, Position: pos, Cond: cond, Then: then, Else: els}
}

// Unary preserves a symbolic unary operation.
func Unary(pos ast.Position, op ast.UnaryOp, operand *Thunk) *Thunk {
	return &Thunk{Kind: TermUnary, Position: pos, UnOp: op, Operand: operand}
}

// Binary preserves a symbolic binary operation.
func Binary(pos ast.Position, op ast.BinaryOp, left, right *Thunk) *Thunk {
	return &Thunk{Kind: TermBinary, Position: pos, BinOp: op, Left: left, Right: right}
}

// IsLiteral reports whether the thunk's root is a Literal wrapping a
// concrete Value.
func (t *Thunk) IsLiteral() bool {
	return t != nil && t.Kind == TermLit
}

// AsBool reports the thunk's boolean literal value, if it is one.
func (t *Thunk) AsBool() (bool, bool) {
	if !t.IsLiteral() {
		return false, false
	}
	b, ok := t.Lit.(*BooleanValue)
	if !ok {
		return false, false
	}
	return b.V, true
}

// AsInt reports the thunk's integer literal value, if it is one.
func (t *Thunk) AsInt() (*IntegerValue, bool) {
	if !t.IsLiteral() {
		return nil, false
	}
	i, ok := t.Lit.(*IntegerValue)
	return i, ok
}

// AsMapRef reports the thunk's map-reference literal value, if it is one.
func (t *Thunk) AsMapRef() (*MapRefValue, bool) {
	if !t.IsLiteral() {
		return nil, false
	}
	m, ok := t.Lit.(*MapRefValue)
	return m, ok
}

// DeclaredType best-efforts the type of this thunk without consulting a
// TypeContext: literals and refs carry it directly; compound terms fall
// back to the zero Type (callers that need a compound term's type should
// track it alongside evaluation instead).
func (t *Thunk) DeclaredType() types.Type {
	switch t.Kind {
	case TermLit:
		return t.Lit.Type()
	case TermRef:
		return t.RefType
	default:
		return types.Type{}
	}
}

// String renders the thunk for diagnostics.
func (t *Thunk) String() string {
	switch t.Kind {
	case TermLit:
		return t.Lit.String()
	case TermRef:
		return t.Ref.String()
	case TermIf:
		return "(if " + t.Cond.String() + " then " + t.Then.String() + " else " + t.Else.String() + ")"
	case TermUnary:
		return "(" + t.UnOp.String() + t.Operand.String() + ")"
	case TermBinary:
		return "(" + t.Left.String() + " " + t.BinOp.String() + " " + t.Right.String() + ")"
	default:
		return "<thunk>"
	}
}
