package gen

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a file must stay quiet before it is regenerated.
const settle = 100 * time.Millisecond

// Watch generates paths once and then again whenever one of the source
// files is written, until ctx is done. Generation failures are logged and
// do not stop the watch.
func (g *Generator) Watch(ctx context.Context, paths ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	// Explicit file arguments are watched through their directory, and only
	// they are regenerated from it.
	only := map[string]bool{}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", p))
		}

		dir := p
		if !info.IsDir() {
			dir = filepath.Dir(p)
			only[filepath.Clean(p)] = true
		}

		if err := w.Add(dir); err != nil {
			return ErrWatch.Wrap(err).With(slog.String("path", dir))
		}
	}

	if err := g.Paths(ctx, paths...); err != nil {
		g.cfg.logger.ErrorContext(ctx, "generate failed", slog.Any("error", err))
	}

	g.cfg.logger.InfoContext(ctx, "watching", slog.Any("paths", paths))

	pending := map[string]bool{}
	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(context.Cause(ctx), context.Canceled) {
				return nil
			}

			return context.Cause(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			name := filepath.Clean(ev.Name)
			if len(only) > 0 && !only[name] && !g.watchedDir(paths, name) {
				continue
			}

			if filepath.Ext(name) != ".go" || g.isOutput(name) {
				continue
			}

			pending[name] = true

			timer.Reset(settle)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			g.cfg.logger.WarnContext(ctx, "watch error", slog.Any("error", err))

		case <-timer.C:
			for name := range pending {
				delete(pending, name)

				if isGenerated(name) {
					continue
				}

				if _, err := g.File(ctx, name); err != nil {
					g.cfg.logger.ErrorContext(ctx, "generate failed",
						slog.String("file", name),
						slog.Any("error", err),
					)
				}
			}
		}
	}
}

// watchedDir reports whether name lies directly in a directory argument.
func (g *Generator) watchedDir(paths []string, name string) bool {
	dir := filepath.Dir(name)

	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() && filepath.Clean(p) == dir {
			return true
		}
	}

	return false
}
