package interp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr/vm"
)

// Evaluate compiles and runs a single expression, without delimiters,
// against env layered over the builtins. Unlike [Program.Run] the result
// is returned as is rather than formatted.
//
// Options that affect scanning, such as [WithDialect], are ignored.
func Evaluate(
	ctx context.Context,
	source string,
	env map[string]any,
	opts ...Option,
) (any, error) {
	cfg := makeConfig(opts...)

	prog, idents, err := compileExpression(Segment{Kind: Expression, Text: source})
	if err != nil {
		return nil, err
	}

	p := &Program{
		compiled: &compiled{template: source, dialect: cfg.dialect, idents: idents},
		cfg:      cfg,
	}

	scope, err := p.scope(env)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	out, err := vm.Run(prog, scope)
	if err != nil {
		return nil, ErrEvaluate.
			Wrap(&SourceError{Source: source, Err: err}).
			With(slog.String("expression", source))
	}

	cfg.logger.TraceContext(ctx, "evaluated expression",
		slog.String("expression", source),
		slog.String("type", typeName(out)),
	)

	return out, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return fmt.Sprintf("%T", v)
}
