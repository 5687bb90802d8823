package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/log"
)

// Eval interpolates a template against variable bindings and prints the
// result.
type Eval struct {
	Template string   `arg:"" help:"Template text, or '-' for stdin"                     name:"template"`
	Var      []string `       help:"Bind NAME=VALUE; VALUE is read as YAML"               placeholder:"NAME=VALUE" short:"v"`
	Vars     string   `       help:"YAML or JSON file of bindings"                        placeholder:"FILE"       type:"existingfile"`
	Env      bool     `       help:"Read unbound names from the environment"                                       short:"e"`
	Strict   bool     `       help:"Fail on names bound nowhere"`
	Print    bool     `       help:"Terminate the output with a newline"                                           short:"p"`
	Builtins bool     `       help:"Expose builtin functions (path, file, env, ...)"      default:"true"           negatable:""`
	Dialect  Dialect  `       help:"Delimiter syntax (${enum})"                           default:"${dialect}"     enum:"${dialectEnum}" short:"d"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := template(ctx, e.Template)
	if err != nil {
		return err
	}

	dialect, err := e.Dialect.Get()
	if err != nil {
		return err
	}

	env, err := e.bindings()
	if err != nil {
		return err
	}

	opts := []interp.Option{
		interp.WithDialect(dialect),
		interp.WithLogger(log.Default()),
		interp.WithEnvFallback(e.Env),
		interp.WithStrict(e.Strict),
		interp.WithBuiltins(e.Builtins),
	}

	log.DebugContext(ctx, "eval",
		slog.String("dialect", dialect.Name),
		slog.Int("bindings", len(env)),
	)

	if e.Print {
		err = interp.Fprint(ctx, stdout(ctx), tmpl, env, opts...)
	} else {
		var s string

		if s, err = interp.Interpolate(ctx, tmpl, env, opts...); err == nil {
			_, err = io.WriteString(stdout(ctx), s)
		}
	}

	if err != nil {
		diagnose(ctx, err)

		return interp.WrapError(err).With(slog.String("command", "eval"))
	}

	return nil
}

// bindings merges the --vars file with the --var flags, which take
// precedence.
func (e *Eval) bindings() (map[string]any, error) {
	env := map[string]any{}

	if e.Vars != "" {
		m, err := readVars(e.Vars)
		if err != nil {
			return nil, err
		}

		maps.Copy(env, m)
	}

	for _, kv := range e.Var {
		name, value, err := parseVar(kv)
		if err != nil {
			return nil, err
		}

		env[name] = value
	}

	return env, nil
}

// readVars decodes a mapping from a YAML file. JSON is a subset of YAML, so
// .json files need no special case.
func readVars(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadVars.Wrap(err).With(slog.String("file", path))
	}

	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, ErrReadVars.Wrap(err).With(slog.String("file", path))
	}

	return m, nil
}

// parseVar splits NAME=VALUE. VALUE is decoded as a YAML scalar or flow
// collection, so 3 is a number and [a, b] a list; anything that does not
// decode is kept as a string.
func parseVar(kv string) (string, any, error) {
	name, value, ok := strings.Cut(kv, "=")

	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, ErrInvalidVar.With(slog.String("var", kv))
	}

	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
		return name, value, nil
	}

	return name, v, nil
}
