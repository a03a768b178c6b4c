//go:build !pprof

package profile

// Enabled reports whether profiling is compiled in.
const Enabled = false

// Modes returns the sorted names of the supported profiling modes.
// It is empty unless built with the pprof build tag.
func Modes() []string { return nil }

func start(Profiler) Stopper { return nop{} }
