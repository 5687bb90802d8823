package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/interp/interp"
)

// Scan prints the segments of a template, or the Go code emitted for it.
type Scan struct {
	Template string  `arg:"" help:"Template text, or '-' for stdin"           name:"template"`
	Format   string  `       help:"Segment output format (${enum})"            default:"text"       enum:"${formatEnum}"   short:"f"`
	Indent   int     `       help:"Indent width for JSON and YAML (0 compact)" default:"2"          short:"i"`
	Raw      bool    `       help:"Show segments before escapes are collapsed"`
	Emit     string  `       help:"Print Go code instead (${enum})"                                 default:"" enum:",${strategyEnum}" placeholder:"STRATEGY"`
	Print    bool    `       help:"Emit the printing variant"`
	Dialect  Dialect `       help:"Delimiter syntax (${enum})"                 default:"${dialect}" enum:"${dialectEnum}"  short:"d"`
}

// Run executes the scan command.
func (s *Scan) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := template(ctx, s.Template)
	if err != nil {
		return err
	}

	dialect, err := s.Dialect.Get()
	if err != nil {
		return err
	}

	segs, err := dialect.Scan(tmpl)
	if err != nil {
		diagnose(ctx, err)

		return interp.WrapError(err).With(slog.String("command", "scan"))
	}

	if !s.Raw || s.Emit != "" {
		segs = dialect.Normalize(segs)
	}

	if s.Emit != "" {
		strategy, err := interp.ParseStrategy(s.Emit)
		if err != nil {
			return err
		}

		code := interp.Emitter{Strategy: strategy, Print: s.Print}.Emit(segs)

		_, err = fmt.Fprintln(stdout(ctx), code)

		return err
	}

	return interp.FormatSegments(ctx, stdout(ctx), segs, s.Format, s.Indent)
}
