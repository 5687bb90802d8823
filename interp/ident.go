package interp

import (
	"maps"
	"slices"
	"unicode"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/builtin"
)

// identVisitor collects the names an expression reads from its
// environment. It is installed with expr.Patch, so it sees the tree
// before type checking but never modifies it.
type identVisitor struct {
	used     map[string]struct{}
	declared map[string]struct{}
}

func newIdentVisitor() *identVisitor {
	return &identVisitor{
		used:     map[string]struct{}{},
		declared: map[string]struct{}{},
	}
}

// Visit implements ast.Visitor.
func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.used[n.Value] = struct{}{}

	case *ast.VariableDeclaratorNode:
		v.declared[n.Name] = struct{}{}
	}
}

// identifiers returns the sorted names that are neither declared with let
// nor expr builtins.
func (v *identVisitor) identifiers() []string {
	free := maps.Clone(v.used)

	for name := range v.declared {
		delete(free, name)
	}

	for name := range free {
		if _, ok := builtin.Index[name]; ok {
			delete(free, name)
		}
	}

	return slices.Sorted(maps.Keys(free))
}

// isEnvName reports whether src is a single identifier by the scanner's
// rules that expr-lang does not lex as one, such as "Olafↈ" or "x‿y".
func isEnvName(src string) bool {
	if src == "" || isExprName(src) {
		return false
	}

	for i, r := range src {
		if i == 0 && !isIdentStart(r) || i > 0 && !isIdentContinue(r) {
			return false
		}
	}

	return true
}

// isExprName reports whether src lexes as one expr-lang identifier.
func isExprName(src string) bool {
	for i, r := range src {
		switch {
		case r == '_', r == '$', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}

	return src != ""
}
