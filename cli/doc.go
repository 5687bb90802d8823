// Package cli contains the command line interface for interp.
//
// # Commands
//
//   - eval (default): interpolate a template with --var NAME=VALUE bindings
//   - gen: expand f-string calls in Go source files, typically from
//     a //go:generate directive
//   - scan: print the segments of a template, or the Go code emitted for it
//   - repl: interactive template shell
//   - init: write the current flag values to the configuration file
//   - version: print version information
//
// # Configuration
//
// Flags are read from a YAML file in the user configuration directory
// (see [pkg.ConfigFile]) and from INTERP_* environment variables. The init
// command writes a file in the expected layout:
//
//	log:
//	  level: debug
//	eval:
//	  dialect: hash
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o interp .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
//
// # Examples
//
//	# Interpolate with bindings
//	interp 'Hello, ${name}!' --var name=World
//
//	# Expand f-strings in the file that holds the directive
//	//go:generate go run github.com/ardnew/interp/cmd/interpgen
//
//	# Show the builder code for a template
//	interp scan --emit builder 'x=${x}'
package cli
