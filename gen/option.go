package gen

import (
	"io"
	"runtime"

	"github.com/ardnew/interp/fstr"
	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/pkg"
)

// Defaults.
const (
	DefaultSuffix   = "_interp"
	DefaultMaxDepth = 8
	// BuildTag is the constraint inverted in generated files.
	BuildTag = "interp"
	// Directive marks a function whose f"..." literals are expanded. The
	// literal must directly follow the f; f "..." is left unchanged.
	Directive = "//interp:fstring"
	// Header is the first line of every generated file.
	Header = "// Code generated by interp. DO NOT EDIT."
)

type config struct {
	dialect    interp.Dialect
	strategy   interp.Strategy
	logger     log.Logger
	maxDepth   int
	importPath string
	suffix     string
	jobs       int
	output     io.Writer // nil writes files next to their sources
}

// Option configures a [Generator].
type Option = pkg.Option[config]

func makeConfig(opts ...Option) config {
	c := pkg.Apply(config{
		dialect:    interp.DefaultDialect,
		strategy:   interp.StrategyFormat,
		logger:     log.Default(),
		maxDepth:   DefaultMaxDepth,
		importPath: fstr.ImportPath,
		suffix:     DefaultSuffix,
		jobs:       runtime.GOMAXPROCS(0),
	}, opts...)

	c.maxDepth = max(c.maxDepth, 1)
	c.jobs = max(c.jobs, 1)

	return c
}

// WithDialect selects the template syntax.
func WithDialect(d interp.Dialect) Option {
	return func(c config) config {
		c.dialect = d

		return c
	}
}

// WithStrategy selects the shape of the emitted code.
func WithStrategy(s interp.Strategy) Option {
	return func(c config) config {
		c.strategy = s

		return c
	}
}

func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithMaxDepth bounds how many times marker calls produced by expanding
// other marker calls are themselves expanded.
func WithMaxDepth(n int) Option {
	return func(c config) config {
		c.maxDepth = n

		return c
	}
}

// WithImportPath sets the import path of the marker package.
func WithImportPath(path string) Option {
	return func(c config) config {
		c.importPath = path

		return c
	}
}

// WithSuffix sets the suffix inserted before ".go" (or "_test.go") in the
// names of generated files.
func WithSuffix(suffix string) Option {
	return func(c config) config {
		c.suffix = suffix

		return c
	}
}

// WithJobs sets the number of files generated concurrently.
func WithJobs(n int) Option {
	return func(c config) config {
		c.jobs = n

		return c
	}
}

// WithOutput writes generated source to w instead of to files.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		c.output = w

		return c
	}
}
