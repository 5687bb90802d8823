package gen

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"go/ast"
	"go/build/constraint"
	"go/format"
	"go/parser"
	"go/token"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/imports"

	"github.com/ardnew/interp/fstr"
	"github.com/ardnew/interp/interp"
)

// Generator expands marker calls and f-string literals in Go source. It is
// safe for concurrent use.
type Generator struct {
	cfg config
}

// New returns a Generator configured with opts.
func New(opts ...Option) *Generator {
	return &Generator{cfg: makeConfig(opts...)}
}

// Source returns the generated form of the Go file src. The filename is
// used for positions in errors and to resolve imports.
//
// Expansion is all-or-nothing: on error no source is returned.
func (g *Generator) Source(ctx context.Context, filename string, src []byte) ([]byte, error) {
	out, _, err := g.source(ctx, filename, src)

	return out, err
}

// source is [Generator.Source] that also reports how many literals were
// expanded.
func (g *Generator) source(
	ctx context.Context,
	filename string,
	src []byte,
) ([]byte, int, error) {
	src, total, err := g.rewriteFStrings(filename, src)
	if err != nil {
		return nil, 0, err
	}

	for depth := 0; ; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, context.Cause(ctx)
		}

		out, n, err := g.rewriteCalls(filename, src)
		if err != nil {
			return nil, 0, err
		}

		if n == 0 {
			break
		}

		if depth == g.cfg.maxDepth {
			return nil, 0, ErrNestingDepth.With(
				slog.String("file", filename),
				slog.Int("max_depth", g.cfg.maxDepth),
			)
		}

		src = out
		total += n
	}

	out, err := g.finish(filename, src)
	if err != nil {
		return nil, 0, err
	}

	g.cfg.logger.TraceContext(ctx, "expanded source",
		slog.String("file", filename),
		slog.Int("literals", total),
	)

	return out, total, nil
}

// expand returns the Go code that replaces the quoted literal lit.
func (g *Generator) expand(lit string, printed bool) (string, error) {
	if strings.HasPrefix(lit, "`") {
		return "", interp.ErrRawLiteralRejected
	}

	template, err := strconv.Unquote(lit)
	if err != nil {
		return "", interp.ErrInvalidInvocation.Wrap(err)
	}

	d := g.cfg.dialect

	segs, err := d.Scan(template)
	if err != nil {
		return "", err
	}

	segs = d.Normalize(segs)

	for i, seg := range segs {
		if seg.Kind != interp.Expression {
			continue
		}

		src, err := canonical(seg.Text)
		if err != nil {
			return "", interp.ErrInvalidExpressionSource.
				Wrap(&interp.SourceError{Source: seg.Text, Offset: seg.Offset, Err: err}).
				With(slog.String("expression", seg.Text))
		}

		segs[i].Text = src
	}

	return interp.Emitter{Strategy: g.cfg.strategy, Print: printed}.Emit(segs), nil
}

// canonical parses src as a Go expression and prints it back, which drops
// comments and normalizes spacing.
func canonical(src string) (string, error) {
	fset := token.NewFileSet()

	x, err := parser.ParseExprFrom(fset, "", src, 0)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, x); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// locate returns the position of an expansion error. Scanner errors are
// pointed at the offending character when the literal has no backslash
// escapes, so that characters and source bytes line up.
func locate(pos token.Position, lit string, err error) *PositionError {
	var se *interp.SyntaxError

	if errors.As(err, &se) && !strings.Contains(lit, `\`) {
		runes := []rune(lit[1 : len(lit)-1])
		shift := 1 + len(string(runes[:min(se.Offset, len(runes))]))

		pos.Offset += shift
		pos.Column += shift
	}

	return &PositionError{Pos: pos, Err: err}
}

// finish inverts the build constraint, fixes imports and adds the header.
func (g *Generator) finish(filename string, src []byte) ([]byte, error) {
	src, err := dropDotImport(filename, src, g.cfg.importPath)
	if err != nil {
		return nil, ErrFormat.Wrap(err).With(slog.String("file", filename))
	}

	src = invertBuildTag(src, BuildTag)

	out, err := imports.Process(filename, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, ErrFormat.Wrap(err).With(slog.String("file", filename))
	}

	return append([]byte(Header+"\n\n"), out...), nil
}

// dropDotImport removes a dot import of the marker package once nothing in
// the file can refer to it. goimports leaves dot imports alone.
func dropDotImport(filename string, src []byte, importPath string) ([]byte, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src,
		parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	if !markerNames(file, importPath)["."] {
		return src, nil
	}

	used := false

	ast.Inspect(file, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok && fstrExports[id.Name] {
			used = true
		}

		return !used
	})

	if used || !astutil.DeleteNamedImport(fset, file, ".", importPath) {
		return src, nil
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// fstrExports are the exported names of the marker package.
var fstrExports = map[string]bool{
	"ImportPath": true, "NameS": true, "NameP": true, "NotGeneratedError": true,
	fstr.NameS: true, fstr.NameP: true, "Eval": true, "Print": true,
}

// invertBuildTag negates tag in the //go:build line of src, if any.
func invertBuildTag(src []byte, tag string) []byte {
	lines := bytes.SplitAfter(src, []byte("\n"))

	for i, line := range lines {
		text := strings.TrimSpace(string(line))

		if strings.HasPrefix(text, "package ") {
			break
		}

		if !constraint.IsGoBuild(text) {
			continue
		}

		x, err := constraint.Parse(text)
		if err != nil {
			break
		}

		if y, ok := invert(x, tag); ok {
			lines[i] = []byte("//go:build " + y.String() + "\n")
		}

		break
	}

	return bytes.Join(lines, nil)
}

func invert(x constraint.Expr, tag string) (constraint.Expr, bool) {
	switch x := x.(type) {
	case *constraint.TagExpr:
		if x.Tag == tag {
			return &constraint.NotExpr{X: x}, true
		}

	case *constraint.NotExpr:
		if t, ok := x.X.(*constraint.TagExpr); ok && t.Tag == tag {
			return t, true
		}

		y, ok := invert(x.X, tag)

		return &constraint.NotExpr{X: y}, ok

	case *constraint.AndExpr:
		l, lok := invert(x.X, tag)
		r, rok := invert(x.Y, tag)

		return &constraint.AndExpr{X: l, Y: r}, lok || rok

	case *constraint.OrExpr:
		l, lok := invert(x.X, tag)
		r, rok := invert(x.Y, tag)

		return &constraint.OrExpr{X: l, Y: r}, lok || rok
	}

	return x, false
}

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// splice applies non-overlapping edits to src.
func splice(src []byte, edits []edit) []byte {
	slices.SortFunc(edits, func(a, b edit) int { return cmp.Compare(a.start, b.start) })

	var buf bytes.Buffer

	buf.Grow(len(src))

	last := 0

	for _, e := range edits {
		buf.Write(src[last:e.start])
		buf.WriteString(e.text)
		last = e.end
	}

	buf.Write(src[last:])

	return buf.Bytes()
}
