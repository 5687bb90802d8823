package repl

import (
	"io"
	"iter"
	"maps"

	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/pkg"
)

type config struct {
	vars        map[string]any
	dialect     interp.Dialect
	envFallback bool
	historyDir  string // empty keeps history in memory
	logger      log.Logger
	input       io.Reader
	output      io.Writer
}

// Option configures [Run].
type Option = pkg.Option[config]

func makeConfig(opts ...Option) config {
	return pkg.Apply(config{
		vars:    map[string]any{},
		dialect: interp.DefaultDialect,
	}, opts...)
}

// WithVars binds the initial variables.
func WithVars(vars iter.Seq2[string, any]) Option {
	return func(c config) config {
		c.vars = maps.Clone(c.vars)
		maps.Insert(c.vars, vars)

		return c
	}
}

// WithDialect sets the initial template dialect.
func WithDialect(d interp.Dialect) Option {
	return func(c config) config {
		c.dialect = d

		return c
	}
}

// WithEnvFallback reads names bound nowhere from the environment.
func WithEnvFallback(enable bool) Option {
	return func(c config) config {
		c.envFallback = enable

		return c
	}
}

// WithHistory persists input history in dir.
func WithHistory(dir string) Option {
	return func(c config) config {
		c.historyDir = dir

		return c
	}
}

// WithLogger sets the logger for trace output.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithIO replaces the terminal. A nil reader or writer keeps the default.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(c config) config {
		c.input, c.output = r, w

		return c
	}
}
