package interp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/klauspost/readahead"
)

// compiled is the immutable, shareable result of compiling a template.
type compiled struct {
	template string
	dialect  Dialect
	segs     []Segment     // normalized
	exprs    []*vm.Program // one per Expression segment
	idents   []string      // free identifiers of all expressions
}

// Program is a compiled template ready to be evaluated against bindings.
// It is safe for concurrent use.
type Program struct {
	*compiled
	cfg config
}

// Compile scans template and compiles each embedded expression with
// expr-lang. Results are cached unless [WithCache](false) is given.
//
// Errors match [ErrUnterminatedExpression], [ErrInvalidDelimiterFollower]
// or [ErrInvalidExpressionSource].
func Compile(template string, opts ...Option) (*Program, error) {
	cfg := makeConfig(opts...)

	c, err := cfg.compileCached(template)
	if err != nil {
		return nil, err
	}

	return &Program{compiled: c, cfg: cfg}, nil
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(template string, opts ...Option) *Program {
	p, err := Compile(template, opts...)
	if err != nil {
		panic(err)
	}

	return p
}

func (c config) compile(template string) (*compiled, error) {
	segs, err := c.dialect.Scan(template)
	if err != nil {
		return nil, err
	}

	segs = c.dialect.Normalize(segs)

	out := &compiled{template: template, dialect: c.dialect, segs: segs}
	idents := map[string]struct{}{}

	for _, seg := range segs {
		if seg.Kind != Expression {
			continue
		}

		prog, names, err := compileExpression(seg)
		if err != nil {
			return nil, err
		}

		out.exprs = append(out.exprs, prog)

		for _, name := range names {
			idents[name] = struct{}{}
		}
	}

	out.idents = slices.Sorted(maps.Keys(idents))

	c.logger.Trace("compiled template",
		slog.String("dialect", c.dialect.Name),
		slog.Int("segments", len(segs)),
		slog.Int("expressions", len(out.exprs)),
	)

	return out, nil
}

func compileExpression(seg Segment) (*vm.Program, []string, error) {
	invalid := ErrInvalidExpressionSource.With(
		slog.String("expression", seg.Text),
		slog.Int("column", seg.Offset+1),
	)

	if strings.TrimSpace(seg.Text) == "" {
		return nil, nil, invalid.Wrap(&SourceError{Source: seg.Text, Offset: seg.Offset, Err: errEmpty})
	}

	if isEnvName(seg.Text) {
		// A name the expression lexer cannot read is looked up by key.
		prog, err := expr.Compile("$env[" + strconv.Quote(seg.Text) + "]")
		if err != nil {
			return nil, nil, invalid.Wrap(&SourceError{Source: seg.Text, Offset: seg.Offset, Err: err})
		}

		return prog, []string{seg.Text}, nil
	}

	v := newIdentVisitor()

	prog, err := expr.Compile(seg.Text, expr.Patch(v))
	if err != nil {
		return nil, nil, invalid.Wrap(&SourceError{Source: seg.Text, Offset: seg.Offset, Err: err})
	}

	return prog, v.identifiers(), nil
}

var errEmpty = errors.New("empty expression")

// SourceError reports a problem with the text of one expression.
type SourceError struct {
	Source string
	Offset int // character index of the expression in its template
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%q at column %d: %v", e.Source, e.Offset+1, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Template returns the source template.
func (p *Program) Template() string { return p.template }

// Dialect returns the dialect the template was scanned with.
func (p *Program) Dialect() Dialect { return p.dialect }

// Segments returns a copy of the normalized segments.
func (p *Program) Segments() []Segment { return slices.Clone(p.segs) }

// Identifiers returns the sorted names the expressions read from their
// environment.
func (p *Program) Identifiers() []string { return slices.Clone(p.idents) }

// Run evaluates the program. Literal text is copied and each expression is
// evaluated once, in order, with env layered over the builtins, and
// formatted with [fmt.Sprint].
//
// Evaluation stops at the first failure, or when ctx is done between
// expressions; no partial result is returned.
func (p *Program) Run(ctx context.Context, env map[string]any) (string, error) {
	scope, err := p.scope(env)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	n := 0

	for _, seg := range p.segs {
		switch seg.Kind {
		case Literal:
			sb.WriteString(seg.Text)

		case Expression:
			if err := ctx.Err(); err != nil {
				return "", context.Cause(ctx)
			}

			out, err := vm.Run(p.exprs[n], scope)
			if err != nil {
				return "", ErrEvaluate.
					Wrap(&SourceError{Source: seg.Text, Offset: seg.Offset, Err: err}).
					With(slog.String("expression", seg.Text))
			}

			sb.WriteString(fmt.Sprint(out))

			n++
		}
	}

	p.cfg.logger.TraceContext(ctx, "evaluated template",
		slog.Int("expressions", n),
		slog.Int("length", sb.Len()),
	)

	return sb.String(), nil
}

// scope builds the environment for one run: builtins, then env, then
// process environment fallbacks for identifiers still unbound.
func (p *Program) scope(env map[string]any) (map[string]any, error) {
	var scope map[string]any

	if p.cfg.builtins || p.cfg.envFallback {
		environ := environMap(p.cfg.environ)

		if p.cfg.builtins {
			scope = makeEnv(environ)
		} else {
			scope = map[string]any{}
		}

		maps.Copy(scope, env)

		if p.cfg.envFallback {
			for _, name := range p.idents {
				if _, ok := scope[name]; ok {
					continue
				}

				if v, ok := environ[name]; ok {
					scope[name] = v
				}
			}
		}
	} else {
		scope = maps.Clone(env)
		if scope == nil {
			scope = map[string]any{}
		}
	}

	if p.cfg.strict {
		for _, name := range p.idents {
			if _, ok := scope[name]; !ok {
				return nil, ErrUndefinedIdentifier.
					Wrap(errors.New(name)).
					With(slog.String("identifier", name))
			}
		}
	}

	return scope, nil
}

// Interpolate compiles template and runs it against env.
func Interpolate(
	ctx context.Context,
	template string,
	env map[string]any,
	opts ...Option,
) (string, error) {
	p, err := Compile(template, opts...)
	if err != nil {
		return "", err
	}

	return p.Run(ctx, env)
}

// Fprint interpolates template and writes the result followed by a newline
// to w. Nothing is written if interpolation fails.
func Fprint(
	ctx context.Context,
	w io.Writer,
	template string,
	env map[string]any,
	opts ...Option,
) error {
	s, err := Interpolate(ctx, template, env, opts...)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, s+"\n")

	return err
}

// ReadTemplate reads an entire template from r.
func ReadTemplate(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	b, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadTemplate.Wrap(err)
	}

	return string(b), nil
}
