package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/interp/interp"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// stdinKey overrides the reader used for "-" arguments.
type stdinKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithStdin returns a new context.Context whose commands read "-" arguments
// from r instead of os.Stdin.
func WithStdin(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func stdin(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

// stdout returns the writer for command output, which is the kong
// application's when one is available.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

//nolint:gochecknoglobals
var caretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))

// diagnose writes the caret snippet of a template syntax error in err to
// standard error. Other interp errors get a line of their attributes.
func diagnose(ctx context.Context, err error) {
	var se *interp.SyntaxError
	if errors.As(err, &se) {
		fmt.Fprintln(stderr(ctx), caretStyle.Render(se.Snippet()))

		return
	}

	var ie *interp.Error
	if !errors.As(err, &ie) || len(ie.Attrs()) == 0 {
		return
	}

	fields := make([]string, 0, len(ie.Attrs()))
	for _, a := range ie.Attrs() {
		fields = append(fields, a.String())
	}

	fmt.Fprintln(stderr(ctx), caretStyle.Render("  | "+strings.Join(fields, " ")))
}

// varFrom returns the kong variable name, or the empty string.
func varFrom(ctx context.Context, name string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		return ktx.Model.Vars()[name]
	}

	return ""
}

// stdinArg is the argument that selects standard input.
const stdinArg = "-"

// template returns arg, or the contents of standard input if arg is "-".
func template(ctx context.Context, arg string) (string, error) {
	if arg != stdinArg {
		return arg, nil
	}

	return interp.ReadTemplate(stdin(ctx))
}

// Dialect is a flag naming one of [interp.Dialects].
type Dialect string

// Get returns the named dialect.
func (d Dialect) Get() (interp.Dialect, error) {
	return interp.LookupDialect(string(d))
}
