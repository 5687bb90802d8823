// Package profile starts optional runtime profiling through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	./interp --pprof-mode cpu gen ./...
//	go tool pprof -http=: ~/.cache/interp/pprof/cpu.pprof
//
// Without the tag [Modes] is empty and [Profiler.Start] is a no-op, so
// callers never need their own build constraints.
package profile
