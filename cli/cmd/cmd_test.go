package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/interp/gen"
	"github.com/ardnew/interp/interp"
)

// testCLI mirrors the application command tree without the logging and
// profiling setup.
type testCLI struct {
	Log struct {
		Level string `default:"info" help:"Log level"`
	} `embed:"" group:"log" prefix:"log-"`

	Eval    Eval    `cmd:"" default:"withargs"`
	Scan    Scan    `cmd:""`
	Gen     Gen     `cmd:""`
	Init    Init    `cmd:""`
	Version Version `cmd:""`
}

func testVars(dir string) kong.Vars {
	return kong.Vars{
		ConfigIdentifier: filepath.Join(dir, "config.yaml"),
		CacheIdentifier:  dir,
		"dialect":        interp.DefaultDialect.Name,
		"dialectEnum":    strings.Join(interp.Dialects(), ","),
		"strategy":       interp.StrategyFormat.String(),
		"strategyEnum":   strings.Join(interp.Strategies(), ","),
		"formatEnum":     strings.Join(interp.Formats(), ","),
		"genSuffix":      gen.DefaultSuffix,
		"genDepth":       strconv.Itoa(gen.DefaultMaxDepth),
	}
}

type result struct {
	stdout, stderr string
	err            error
}

// run parses args the way the application does and runs the selected
// command with stdin as standard input.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	return runIn(t, t.TempDir(), stdin, args...)
}

func runIn(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()

	var (
		cli         testCLI
		out, errOut bytes.Buffer
	)

	ctx := WithStdin(t.Context(), strings.NewReader(stdin))

	parser, err := kong.New(&cli,
		kong.Name("interp"),
		kong.Writers(&out, &errOut),
		kong.Exit(func(int) {}),
		kong.ExplicitGroups([]kong.Group{{Key: "log", Title: "Logging"}}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		testVars(dir),
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return result{err: err}
	}

	ctx = WithContext(ctx, ktx)
	err = ktx.Run()

	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestTemplate(t *testing.T) {
	ctx := WithStdin(t.Context(), strings.NewReader("from ${stdin}"))

	got, err := template(ctx, "literal")
	if err != nil || got != "literal" {
		t.Errorf("template(literal) = %q, %v", got, err)
	}

	got, err = template(ctx, stdinArg)
	if err != nil || got != "from ${stdin}" {
		t.Errorf("template(-) = %q, %v", got, err)
	}
}

func TestWriters_WithoutKongContext(t *testing.T) {
	ctx := t.Context()

	if stdout(ctx) == nil || stderr(ctx) == nil || stdin(ctx) == nil {
		t.Error("default stdio is nil")
	}

	if got := varFrom(ctx, ConfigIdentifier); got != "" {
		t.Errorf("varFrom without kong context = %q", got)
	}
}

func TestDialectGet(t *testing.T) {
	for _, name := range interp.Dialects() {
		d, err := Dialect(name).Get()
		if err != nil || d.Name != name {
			t.Errorf("Dialect(%q).Get() = %v, %v", name, d, err)
		}
	}

	if _, err := Dialect("percent").Get(); !errors.Is(err, interp.ErrUnknownDialect) {
		t.Errorf("unknown dialect error = %v", err)
	}
}

func TestDiagnose(t *testing.T) {
	var errOut bytes.Buffer

	parser, err := kong.New(&struct{}{}, kong.Writers(&bytes.Buffer{}, &errOut))
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(t.Context(), ktx)

	_, scanErr := interp.Dollar.Scan("Hello ${name")
	diagnose(ctx, scanErr)

	if got := errOut.String(); !strings.Contains(got, "Hello ${name") || !strings.Contains(got, "^") {
		t.Errorf("diagnose wrote %q", got)
	}

	errOut.Reset()

	_, compileErr := interp.Compile("x ${1 +}", interp.WithCache(false))
	diagnose(ctx, compileErr)

	if got := errOut.String(); !strings.Contains(got, "expression=1 +") || !strings.Contains(got, "column=5") {
		t.Errorf("diagnose wrote %q for an expression error", got)
	}

	errOut.Reset()
	diagnose(ctx, errors.New("plain"))

	if errOut.Len() != 0 {
		t.Errorf("diagnose wrote %q for a plain error", errOut.String())
	}
}
