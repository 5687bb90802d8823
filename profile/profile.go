package profile

import "github.com/ardnew/interp/pkg"

// Tag is the build tag that enables profiling, also used as the name of
// the default output subdirectory.
const Tag = "pprof"

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool
}

// Option configures a [Profiler].
type Option = pkg.Option[Profiler]

// Make returns a [Profiler] with opts applied.
func Make(opts ...Option) Profiler {
	return pkg.Apply(Profiler{}, opts...)
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithDir sets the output directory.
func WithDir(dir string) Option {
	return func(p Profiler) Profiler {
		p.Dir = dir

		return p
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. The returned Stopper is always safe to call,
// including when the mode is empty, unknown, or profiling is not compiled in.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
