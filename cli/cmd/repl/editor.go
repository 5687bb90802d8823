package repl

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/interp/log"
)

const defaultEditor = "vi"

// editVarsCommand implements [tea.ExecCommand]. It writes the editable
// bindings to a temporary YAML file, opens the user's editor on it, and
// decodes the result, offering to re-edit after a decoding error.
type editVarsCommand struct {
	vars    map[string]any
	ctxFunc func() context.Context
	logger  log.Logger
	edited  map[string]any // nil if the user cleared the file
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editVarsCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editVarsCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editVarsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. Declining to re-edit returns
// [ErrEditDeclined].
func (c *editVarsCommand) Run() error {
	ctx := c.ctxFunc()

	c.stdin = cmp.Or[io.Reader](c.stdin, os.Stdin)
	c.stdout = cmp.Or[io.Writer](c.stdout, os.Stdout)
	c.stderr = cmp.Or[io.Writer](c.stderr, os.Stderr)

	content, err := yaml.MarshalContext(ctx, c.vars, yaml.Indent(2))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotSerializable, err)
	}

	f, err := os.CreateTemp("", "interp-repl-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	in := bufio.NewReader(c.stdin)

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		if content, err = os.ReadFile(path); err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		var vars map[string]any

		decodeErr := yaml.UnmarshalContext(ctx, content, &vars)

		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("length", len(content)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			if vars == nil {
				vars = map[string]any{}
			}

			c.edited = vars

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", yaml.FormatError(decodeErr, false, true))
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		answer, err := in.ReadString('\n')
		if err != nil && answer == "" {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor runs $EDITOR, which may include arguments, on path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
