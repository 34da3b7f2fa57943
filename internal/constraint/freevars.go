package constraint

import "github.com/halsten/boogaloo/ast"

// FreeVars returns the set of variable names expr reads, in first-seen
// order, for use by ExtendName's per-name registration.
// Quantifier- and lambda-bound variables are excluded from their own body.
func FreeVars(expr ast.Expression) []string {
	seen := make(map[string]bool)
	var order []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	var walk func(ast.Expression, map[string]bool)
	walk = func(e ast.Expression, bound map[string]bool) {
		switch n := e.(type) {
		case *ast.Literal:
		case *ast.VarExpr:
			if !bound[n.Name] {
				add(n.Name)
			}
		case *ast.OldExpr:
			if !bound[n.Name] {
				add(n.Name)
			}
		case *ast.IfExpr:
			walk(n.Cond, bound)
			walk(n.Then, bound)
			walk(n.Else, bound)
		case *ast.UnaryExpr:
			walk(n.Operand, bound)
		case *ast.BinaryExpr:
			walk(n.Left, bound)
			walk(n.Right, bound)
		case *ast.MapSelectExpr:
			walk(n.Map, bound)
			for _, a := range n.Args {
				walk(a, bound)
			}
		case *ast.MapUpdateExpr:
			walk(n.Map, bound)
			for _, a := range n.Args {
				walk(a, bound)
			}
			walk(n.New, bound)
		case *ast.QuantifierExpr:
			inner := cloneSet(bound)
			for _, v := range n.Vars {
				inner[v.Name] = true
			}
			walk(n.Body, inner)
		case *ast.LambdaExpr:
			inner := cloneSet(bound)
			for _, v := range n.Vars {
				inner[v.Name] = true
			}
			walk(n.Body, inner)
		case *ast.CallExpr:
			for _, a := range n.Args {
				walk(a, bound)
			}
		}
	}
	walk(expr, map[string]bool{})
	return order
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	return out
}
