// Package preprocess implements the Preprocessor: the single
// pass over a Program's top-level declarations that happens once, before
// the Procedure Engine ever touches the entry point. It seeds function
// macros and their defining axioms, registers uninterpreted functions as
// persistent map references, folds every axiom and global where-clause
// into the Constraint Store's name constraints, and records pairwise
// disequality for unique constants.
package preprocess

import (
	"github.com/halsten/boogaloo/ast"
	"github.com/halsten/boogaloo/internal/constraint"
	bgerrors "github.com/halsten/boogaloo/internal/errors"
	"github.com/halsten/boogaloo/internal/eval"
	"github.com/halsten/boogaloo/internal/value"
	"github.com/halsten/boogaloo/types"
)

// Preprocessor drives the single declaration pass over an
// Evaluator's shared Memory/Store/Macros/UninterpretedRefs state.
type Preprocessor struct {
	Eval *eval.Evaluator
}

// New creates a Preprocessor writing into ev's state.
func New(ev *eval.Evaluator) *Preprocessor {
	return &Preprocessor{Eval: ev}
}

// Run processes prog and returns its procedures grouped by name, ready for
// the Procedure Engine to select an implementation from at each Call.
func (p *Preprocessor) Run(prog *ast.Program) (map[string][]*ast.ProcedureDecl, error) {
	for _, fn := range prog.Functions {
		p.registerFunction(fn)
	}
	for _, ax := range prog.Axioms {
		p.Eval.Store.ExtendName(types.Globals, ax.Body)
	}
	for _, g := range prog.Globals {
		if g.Where != nil {
			p.Eval.Store.ExtendName(types.Globals, g.Where)
		}
	}
	if err := p.registerUniqueConstants(prog.Consts); err != nil {
		return nil, err
	}
	return prog.ProceduresByName(), nil
}

// registerFunction stores a bodied function as a macro plus its defining
// axiom `forall formals :: name(formals) = body`, or allocates a
// persistent uninterpreted map reference for a bodyless one.
func (p *Preprocessor) registerFunction(fn *ast.FunctionDecl) {
	if fn.Body != nil {
		if p.Eval.Macros == nil {
			p.Eval.Macros = make(map[string]*ast.FunctionDecl)
		}
		p.Eval.Macros[fn.Name] = fn

		args := make([]ast.Expression, len(fn.Formals))
		vars := make([]ast.BoundVar, len(fn.Formals))
		for i, f := range fn.Formals {
			args[i] = &ast.VarExpr{Name: f.Name, Type: f.Type}
			vars[i] = ast.BoundVar{Name: f.Name, Type: f.Type}
		}
		axiom := &ast.QuantifierExpr{
			Kind: ast.Forall,
			Vars: vars,
			Body: &ast.BinaryExpr{
				Op:    ast.BinEq,
				Left:  &ast.CallExpr{Name: fn.Name, Args: args},
				Right: fn.Body,
			},
		}
		p.Eval.Store.ExtendName(types.Globals, axiom)
		return
	}

	if p.Eval.UninterpretedRefs == nil {
		p.Eval.UninterpretedRefs = make(map[string]value.Ref)
	}
	argTypes := make([]types.Type, len(fn.Formals))
	for i, f := range fn.Formals {
		argTypes[i] = f.Type
	}
	mt := types.MapType(argTypes, fn.Result)
	p.Eval.UninterpretedRefs[fn.Name] = p.Eval.Mem.FreshMapRef(mt, nil)
}

// registerUniqueConstants eagerly materializes every `unique` constant
// (forcing its lazy-allocation logical reference into existence now rather
// than on first use) and adds a pairwise disequality constraint between
// every two unique constants of the same type.
func (p *Preprocessor) registerUniqueConstants(consts []*ast.ConstDecl) error {
	byType := make(map[string][]*value.Thunk)
	for _, c := range consts {
		if !c.Unique {
			continue
		}
		t, err := p.Eval.Eval(&ast.VarExpr{Name: c.Name, Type: c.Type})
		if err != nil {
			return err
		}
		byType[c.Type.String()] = append(byType[c.Type.String()], t)
	}
	for _, group := range byType {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				neq := value.Binary(ast.Position{}, ast.BinNeq, group[i], group[j])
				if err := p.Eval.Store.ExtendLogical(neq); err != nil {
					return convertUnreachable(err)
				}
			}
		}
	}
	return nil
}

func convertUnreachable(err error) error {
	if ue, ok := err.(*constraint.UnreachableError); ok {
		return bgerrors.NewUnreachable(ue.Position)
	}
	return err
}
