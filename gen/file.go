package gen

import (
	"bytes"
	"context"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/interp/pkg"
)

// OutputPath returns the name of the file generated from path:
// "greet.go" becomes "greet_interp.go" and "greet_test.go" becomes
// "greet_interp_test.go".
func (g *Generator) OutputPath(path string) string {
	if base, ok := strings.CutSuffix(path, "_test.go"); ok {
		return base + g.cfg.suffix + "_test.go"
	}

	return strings.TrimSuffix(path, ".go") + g.cfg.suffix + ".go"
}

// isOutput reports whether path is named like a generated file.
func (g *Generator) isOutput(path string) bool {
	return strings.HasSuffix(path, g.cfg.suffix+".go") ||
		strings.HasSuffix(path, g.cfg.suffix+"_test.go")
}

// File generates the expansion of the Go file at path. It returns the
// path written, or "" if path has nothing to expand or the output went to
// the configured writer.
//
// The output is written only after the whole file expanded successfully.
func (g *Generator) File(ctx context.Context, path string) (string, error) {
	src, err := readSource(path)
	if err != nil {
		return "", err
	}

	out, n, err := g.source(ctx, path, src)
	if err != nil {
		return "", err
	}

	if n == 0 {
		g.cfg.logger.DebugContext(ctx, "nothing to expand", slog.String("file", path))

		if g.cfg.output != nil {
			return "", nil
		}

		return "", g.removeStale(ctx, g.OutputPath(path))
	}

	if !bytes.Contains(src, []byte("//go:build")) {
		g.cfg.logger.WarnContext(ctx, "source has no build constraint",
			slog.String("file", path),
			slog.String("want", "//go:build "+BuildTag),
		)
	}

	if g.cfg.output != nil {
		if _, err := g.cfg.output.Write(out); err != nil {
			return "", ErrWriteOutput.Wrap(err)
		}

		return "", nil
	}

	dst := g.OutputPath(path)

	//nolint:gosec
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return "", ErrWriteOutput.Wrap(err).With(slog.String("file", dst))
	}

	g.cfg.logger.InfoContext(ctx, "generated",
		slog.String("file", dst),
		slog.Int("literals", n),
	)

	return dst, nil
}

// removeStale deletes dst if it is left over from an earlier generation.
// A file at dst without the generated header is kept.
func (g *Generator) removeStale(ctx context.Context, dst string) error {
	b, err := os.ReadFile(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", dst))
	}

	if !bytes.HasPrefix(b, []byte(Header)) {
		g.cfg.logger.WarnContext(ctx, "output path holds a file not generated by interp",
			slog.String("file", dst),
		)

		return nil
	}

	if err := os.Remove(dst); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", dst))
	}

	g.cfg.logger.InfoContext(ctx, "removed stale output", slog.String("file", dst))

	return nil
}

func readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	src, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", path))
	}

	return src, nil
}

// Paths generates every file named in paths. Directories contribute the
// Go files directly inside them, excluding generated files. Files are
// processed concurrently; a failure in one file does not stop the others,
// and all failures are returned together.
func (g *Generator) Paths(ctx context.Context, paths ...string) error {
	files, err := g.sources(paths)
	if err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs pkg.Errors
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.jobs)

	// Output to a shared writer must not interleave.
	if g.cfg.output != nil {
		eg.SetLimit(1)
	}

	for _, file := range files {
		eg.Go(func() error {
			if _, err := g.File(ctx, file); err != nil {
				mu.Lock()
				errs.Add(err)
				mu.Unlock()
			}

			return nil
		})
	}

	_ = eg.Wait()

	if err := ctx.Err(); err != nil && len(errs) == 0 {
		return context.Cause(ctx)
	}

	return errs.Err()
}

// sources expands paths into the list of files to generate.
func (g *Generator) sources(paths []string) ([]string, error) {
	var files []string

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", p))
		}

		if !info.IsDir() {
			files = append(files, p)

			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", p))
		}

		for _, e := range entries {
			name := filepath.Join(p, e.Name())
			if g.candidate(name, e) {
				files = append(files, name)
			}
		}
	}

	return files, nil
}

// candidate reports whether the directory entry is a hand-written Go file.
func (g *Generator) candidate(path string, e fs.DirEntry) bool {
	if e.IsDir() || !strings.HasSuffix(path, ".go") || g.isOutput(path) {
		return false
	}

	return !isGenerated(path)
}

// isGenerated reports whether the file at path carries a "Code generated"
// comment.
func isGenerated(path string) bool {
	f, err := parser.ParseFile(token.NewFileSet(), path, nil,
		parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false
	}

	return ast.IsGenerated(f)
}
