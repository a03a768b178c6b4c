// Package profile starts and stops runtime profiling.
//
// Profiling is only available in binaries built with the pprof build tag.
// Without it, [Profiler.Start] always returns a no-op [Stopper], so callers
// need no build-specific code of their own.
package profile

// Stopper stops a running profiler.
type Stopper interface{ Stop() }

// Profiler describes a profiling session.
//
// Mode names one of [Modes]. Path is the directory profiles are written to,
// defaulting to a temporary directory. Quiet suppresses the profiler's own
// log output.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option modifies a Profiler.
type Option func(Profiler) Profiler

// New returns a Profiler configured with the given options.
func New(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		if opt != nil {
			p = opt(p)
		}
	}

	return p
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet sets the quiet flag.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

// Start starts the profiler and returns a Stopper for it.
//
// If Mode is empty or unknown, or profiling is not compiled in, the returned
// Stopper does nothing. Stop is always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return nop{}
	}

	return start(p)
}

type nop struct{}

func (nop) Stop() {}
