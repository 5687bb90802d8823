package cmd

import (
	"context"
	"maps"

	"github.com/ardnew/interp/cli/cmd/repl"
	"github.com/ardnew/interp/log"
)

// Repl starts the interactive evaluator.
type Repl struct {
	Var     []string `help:"Bind NAME=VALUE before starting" placeholder:"NAME=VALUE" short:"v"`
	Vars    string   `help:"YAML or JSON file of bindings"   placeholder:"FILE"       type:"existingfile"`
	Env     bool     `help:"Read unbound names from the environment"                  short:"e"`
	Dialect Dialect  `help:"Delimiter syntax (${enum})"      default:"${dialect}"     enum:"${dialectEnum}" short:"d"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	dialect, err := r.Dialect.Get()
	if err != nil {
		return err
	}

	env, err := (&Eval{Var: r.Var, Vars: r.Vars}).bindings()
	if err != nil {
		return err
	}

	return repl.Run(ctx,
		repl.WithVars(maps.All(env)),
		repl.WithDialect(dialect),
		repl.WithEnvFallback(r.Env),
		repl.WithHistory(varFrom(ctx, CacheIdentifier)),
		repl.WithLogger(log.Default()),
	)
}
