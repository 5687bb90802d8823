package cli

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/interp/cli/cmd"
	"github.com/ardnew/interp/gen"
	"github.com/ardnew/interp/interp"
	"github.com/ardnew/interp/pkg"
)

// CLI is the top-level command-line interface for interp.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Interpolate a template"`
	Gen  cmd.Gen  `cmd:""                    help:"Expand f-strings in Go source files"`
	Scan cmd.Scan `cmd:""                    help:"Show the segments or generated code of a template"`
	Repl cmd.Repl `cmd:""                    help:"Interactive template shell"`
	Init cmd.Init `cmd:""                    help:"Initialize configuration file"`

	Version cmd.Version `cmd:"" help:"Print version information"`
}

// defaultDirMode is the permission mode for created directories.
const defaultDirMode os.FileMode = 0o700

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// vars returns the interpolation variables shared by the commands.
func vars() kong.Vars {
	return kong.Vars{
		cmd.ConfigIdentifier: pkg.ConfigFile(),
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"dialect":            interp.DefaultDialect.Name,
		"dialectEnum":        strings.Join(interp.Dialects(), ","),
		"strategy":           interp.StrategyFormat.String(),
		"strategyEnum":       strings.Join(interp.Strategies(), ","),
		"formatEnum":         strings.Join(interp.Formats(), ","),
		"genSuffix":          gen.DefaultSuffix,
		"genDepth":           strconv.Itoa(gen.DefaultMaxDepth),
	}
}

// Run executes the interp CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	return run(ctx, exit, args, kong.Writers(os.Stdout, os.Stderr))
}

func run(
	ctx context.Context,
	exit func(code int),
	args []string,
	opts ...kong.Option,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logging flags before parsing so parse errors are logged the
	// way the user asked, regardless of flag position.
	cli.Log.scan(args)

	opts = append([]kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(strings.TrimSuffix(pkg.EnvPrefix(), "_")),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolve(ctx), pkg.ConfigFile()),
		vars().CloneWith(cli.Log.vars()).CloneWith(cli.Pprof.vars()),
	}, opts...)

	parser, err := kong.New(&cli, opts...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
