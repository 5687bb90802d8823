package interp

import (
	"github.com/ardnew/interp/log"
	"github.com/ardnew/interp/pkg"
)

// config holds the settings of [Compile] and [Program.Run].
type config struct {
	dialect     Dialect
	logger      log.Logger
	environ     []string // KEY=VALUE pairs; nil means os.Environ
	cache       bool
	builtins    bool
	envFallback bool
	strict      bool
}

// Option configures compilation and evaluation.
type Option = pkg.Option[config]

func makeConfig(opts ...Option) config {
	return pkg.Apply(config{
		dialect:  DefaultDialect,
		cache:    true,
		builtins: true,
	}, opts...)
}

// WithDialect selects the delimiter syntax.
func WithDialect(d Dialect) Option {
	return func(c config) config {
		c.dialect = d

		return c
	}
}

// WithLogger sets the logger used for trace output.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithCache controls whether compiled templates are shared through the
// process-wide cache. It is enabled by default.
func WithCache(enable bool) Option {
	return func(c config) config {
		c.cache = enable

		return c
	}
}

// WithBuiltins controls whether the builtin functions (env, path, file,
// mung, ...) are visible to expressions. It is enabled by default.
func WithBuiltins(enable bool) Option {
	return func(c config) config {
		c.builtins = enable

		return c
	}
}

// WithEnvFallback binds identifiers that are otherwise unbound to the
// process environment variable of the same name.
func WithEnvFallback(enable bool) Option {
	return func(c config) config {
		c.envFallback = enable

		return c
	}
}

// WithEnviron replaces the process environment seen by env() and
// [WithEnvFallback] with KEY=VALUE pairs.
func WithEnviron(environ []string) Option {
	return func(c config) config {
		c.environ = environ

		return c
	}
}

// WithStrict makes [Program.Run] fail with [ErrUndefinedIdentifier] when
// an expression refers to a name that is bound nowhere.
func WithStrict(enable bool) Option {
	return func(c config) config {
		c.strict = enable

		return c
	}
}
