package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/interp/gen"
	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/log"
)

// Gen expands the marker calls and f-strings of Go source files.
type Gen struct {
	Paths    []string `arg:"" help:"Go files or directories (default: $$GOFILE, or .)" name:"path" optional:"" type:"path"`
	Suffix   string   `       help:"Inserted before .go in output file names"         default:"${genSuffix}"`
	Stdout   bool     `       help:"Write generated source to stdout"                 short:"c"`
	Watch    bool     `       help:"Regenerate whenever a source file is written"     short:"w"`
	Jobs     int      `       help:"Files generated concurrently (0 uses all CPUs)"   short:"j"`
	Depth    int      `       help:"Maximum nesting of marker calls in templates"     default:"${genDepth}"`
	Dialect  Dialect  `       help:"Delimiter syntax (${enum})"                       default:"${dialect}"   enum:"${dialectEnum}" short:"d"`
	Strategy string   `       help:"Emitted code (${enum})"                           default:"${strategy}"  enum:"${strategyEnum}" short:"s"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	dialect, err := g.Dialect.Get()
	if err != nil {
		return err
	}

	strategy, err := interp.ParseStrategy(g.Strategy)
	if err != nil {
		return err
	}

	opts := []gen.Option{
		gen.WithDialect(dialect),
		gen.WithStrategy(strategy),
		gen.WithLogger(log.Default()),
		gen.WithSuffix(g.Suffix),
		gen.WithMaxDepth(g.Depth),
	}

	if g.Jobs > 0 {
		opts = append(opts, gen.WithJobs(g.Jobs))
	}

	if g.Stdout {
		opts = append(opts, gen.WithOutput(stdout(ctx)))
	}

	paths := g.paths()

	log.DebugContext(ctx, "gen",
		slog.Any("paths", paths),
		slog.String("dialect", dialect.Name),
		slog.String("strategy", strategy.String()),
		slog.Bool("watch", g.Watch),
	)

	generator := gen.New(opts...)

	if g.Watch {
		return generator.Watch(ctx, paths...)
	}

	return generator.Paths(ctx, paths...)
}

// paths returns the arguments, or the file named by $GOFILE when run from
// go generate, or the working directory.
func (g *Gen) paths() []string {
	if len(g.Paths) > 0 {
		return g.Paths
	}

	if file := os.Getenv("GOFILE"); file != "" {
		return []string{file}
	}

	return []string{"."}
}
