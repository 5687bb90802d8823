package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"path"
	"strconv"

	"github.com/ardnew/interp/fstr"
	"github.com/ardnew/interp/interp"
)

// rewriteCalls replaces every marker call in src with its expansion and
// returns the number replaced. Arguments of a replaced call are not
// searched; nested markers in expression text are found by the next pass.
func (g *Generator) rewriteCalls(filename string, src []byte) ([]byte, int, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src,
		parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, 0, err
	}

	names := markerNames(file, g.cfg.importPath)
	if len(names) == 0 {
		return src, 0, nil
	}

	var (
		edits []edit
		errs  error
	)

	ast.Inspect(file, func(n ast.Node) bool {
		if errs != nil {
			return false
		}

		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		fn, ok := marker(call.Fun, names)
		if !ok {
			return true
		}

		code, err := g.expandCall(fset, call, fn)
		if err != nil {
			errs = err

			return false
		}

		edits = append(edits, edit{
			start: fset.Position(call.Pos()).Offset,
			end:   fset.Position(call.End()).Offset,
			text:  code,
		})

		return false
	})

	if errs != nil {
		return nil, 0, errs
	}

	return splice(src, edits), len(edits), nil
}

// expandCall validates a marker call and returns its replacement.
func (g *Generator) expandCall(fset *token.FileSet, call *ast.CallExpr, fn string) (string, error) {
	pos := fset.Position(call.Pos())

	invalid := func(reason string) error {
		return &PositionError{
			Pos: pos,
			Err: interp.ErrInvalidInvocation.With(
				slog.String("func", fn),
				slog.String("reason", reason),
			),
		}
	}

	switch {
	case len(call.Args) != 1:
		return "", invalid("want exactly one argument, have " + strconv.Itoa(len(call.Args)))
	case call.Ellipsis.IsValid():
		return "", invalid("argument must not be spread")
	}

	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", invalid("argument must be a string literal")
	}

	code, err := g.expand(lit.Value, fn == fstr.NameP)
	if err != nil {
		return "", locate(fset.Position(lit.Pos()), lit.Value, err)
	}

	return code, nil
}

// markerNames returns the names under which file refers to the marker
// package: its local import name, or "." for a dot import.
func markerNames(file *ast.File, importPath string) map[string]bool {
	names := map[string]bool{}

	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil || p != importPath {
			continue
		}

		name := path.Base(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}

		if name != "_" {
			names[name] = true
		}
	}

	return names
}

// marker reports which marker function fun refers to, if any.
func marker(fun ast.Expr, names map[string]bool) (string, bool) {
	var sel string

	switch f := fun.(type) {
	case *ast.SelectorExpr:
		x, ok := f.X.(*ast.Ident)
		if !ok || !names[x.Name] {
			return "", false
		}

		sel = f.Sel.Name

	case *ast.Ident:
		if !names["."] {
			return "", false
		}

		sel = f.Name

	default:
		return "", false
	}

	switch sel {
	case fstr.NameS, fstr.NameP:
		return sel, true
	}

	return "", false
}
