// Package cmd implements the interp subcommands: gen, eval, scan, init,
// repl and version.
//
// Each command is a kong node whose Run method receives the application
// context. The [kong.Context] itself is available through [WithContext]
// for commands that inspect the parsed model, such as init.
package cmd

//nolint:gochecknoglobals
var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
