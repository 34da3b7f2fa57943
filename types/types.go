// Package types defines the type contract produced by an external type
// checker. The engine consumes types as an opaque, already-resolved service:
// it never infers or checks types itself, only asks the TypeContext
// questions about names already known to be well-typed.
package types

import "fmt"

// Kind distinguishes the closed set of type shapes the engine understands.
type Kind int

const (
	// Int is the arbitrary-precision integer type.
	Int Kind = iota
	// Bool is the two-valued boolean type.
	Bool
	// Map is a typed finite mapping from argument tuples to a result type.
	Map
	// Custom is an opaque user-defined type (enums, references, records as
	// uninterpreted sorts), distinguished only by Name.
	Custom
)

// Type is a closed tagged union: Int, Bool, Map{Args, Result}, Custom{Name}.
type Type struct {
	Kind   Kind
	Name   string // Custom only
	Args   []Type // Map only
	Result *Type  // Map only
}

// IntType is the singleton integer type value.
var IntType = Type{Kind: Int}

// BoolType is the singleton boolean type value.
var BoolType = Type{Kind: Bool}

// MapType constructs a map type with the given argument and result types.
func MapType(args []Type, result Type) Type {
	return Type{Kind: Map, Args: args, Result: &result}
}

// CustomType constructs an opaque user-defined type identified by name.
func CustomType(name string) Type {
	return Type{Kind: Custom, Name: name}
}

// String renders the type the way diagnostics and stack traces quote it.
func (t Type) String() string {
	switch t.Kind {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Map:
		args := ""
		for i, a := range t.Args {
			if i > 0 {
				args += ", "
			}
			args += a.String()
		}
		result := ""
		if t.Result != nil {
			result = t.Result.String()
		}
		return fmt.Sprintf("[%s]%s", args, result)
	case Custom:
		return t.Name
	default:
		return "?"
	}
}

// Equal reports structural equality between two types.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Custom:
		return t.Name == other.Name
	case Map:
		if len(t.Args) != len(other.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(other.Args[i]) {
				return false
			}
		}
		if (t.Result == nil) != (other.Result == nil) {
			return false
		}
		if t.Result != nil && !t.Result.Equal(*other.Result) {
			return false
		}
		return true
	default:
		return true
	}
}

// IsOpaque reports whether the type is a Custom (uninterpreted) sort, the
// kind of type the Solver Facade must project to integers for SAT queries.
func (t Type) IsOpaque() bool {
	return t.Kind == Custom
}

// Scope distinguishes the two memory regions that hold name declarations
// for the purposes of TypeContext.InScope and name-constraint bookkeeping.
type Scope int

const (
	// Globals is the scope of global variables, constants, and map-typed
	// globals declared at program top level.
	Globals Scope = iota
	// Locals is the scope of a procedure's formals and local declarations.
	Locals
)

// Signature is a procedure's resolved type signature: ordered formal and
// return-parameter types, keyed by name for where-clause lookups.
type Signature struct {
	Formals  []Param
	Returns  []Param
	Modifies []string
}

// Param is one formal or return parameter of a procedure signature.
type Param struct {
	Name string
	Type Type
}

// TypeContext is the external service the engine consumes to resolve names
// to types. It is produced by a type checker out of this module's scope;
// the engine only asks it questions about a program already known to be
// well-typed.
type TypeContext interface {
	// ResolveType returns the type registered under name (a type alias or
	// custom type declaration), or false if no such type exists.
	ResolveType(name string) (Type, bool)
	// ProcedureSignature returns the resolved signature of procedure name.
	ProcedureSignature(name string) (Signature, bool)
	// InScope reports whether name is declared in the given scope.
	InScope(scope Scope, name string) bool
	// TypeOf returns the declared type of a variable or constant name,
	// searching Locals before Globals.
	TypeOf(name string) (Type, bool)
}
