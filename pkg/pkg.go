//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name and the base of default config paths and
	// environment variable prefixes.
	Name = "interp"
	// Description is a short summary used in help output.
	Description = "String interpolation for Go source and templates"
	// ImportPath is the module path.
	ImportPath = "github.com/ardnew/interp"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

// EnvPrefix returns the prefix used for environment variable overrides,
// e.g. INTERP_.
func EnvPrefix() string {
	return strings.ToUpper(Prefix()) + "_"
}
