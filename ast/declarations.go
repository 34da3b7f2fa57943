package ast

import "github.com/halsten/boogaloo/types"

// Formal is one procedure formal or return parameter.
type Formal struct {
	Name  string
	Type  types.Type
	Where Expression // optional `where` clause; nil if absent
}

// ProcedureDecl is one implementation of a named procedure. Multiple
// implementations of the same name are allowed; the Procedure Engine picks
// one nondeterministically via the Generator.
type ProcedureDecl struct {
	Position   Position
	Name       string
	Formals    []Formal
	Rets       []Formal
	Requires   []Clause
	Ensures    []Clause
	Modifies   []string
	Blocks     map[string]*BasicBlock
	EntryLabel string
}

// FunctionDecl is a function declaration. A nil Body means the function is
// uninterpreted (no macro unfolding is possible for it); a non-nil Body is
// registered by the Preprocessor as both a macro and a defining axiom.
type FunctionDecl struct {
	Position Position
	Name     string
	Formals  []Formal
	Result   types.Type
	Body     Expression
}

// AxiomDecl is a top-level axiom, registered as a global name constraint
// under every free name it mentions.
type AxiomDecl struct {
	Position Position
	Body     Expression
}

// VarDecl is a global or local variable declaration.
type VarDecl struct {
	Position Position
	Name     string
	Type     types.Type
	Where    Expression // optional
}

// ConstDecl is a constant declaration. Unique marks it as a member of a
// per-type uniqueness registry: distinct unique constants
// of the same type are pairwise disequal.
type ConstDecl struct {
	Position Position
	Name     string
	Type     types.Type
	Unique   bool
}

// Program is the whole translation unit the engine executes.
type Program struct {
	Procedures []*ProcedureDecl
	Functions  []*FunctionDecl
	Axioms     []*AxiomDecl
	Globals    []*VarDecl
	Consts     []*ConstDecl
}

// ProceduresByName groups a program's procedures by name, preserving the
// declared order of multiple implementations for deterministic Generator
// indexing at Call sites.
func (p *Program) ProceduresByName() map[string][]*ProcedureDecl {
	out := make(map[string][]*ProcedureDecl)
	for _, proc := range p.Procedures {
		out[proc.Name] = append(out[proc.Name], proc)
	}
	return out
}
