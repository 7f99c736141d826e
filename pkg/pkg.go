//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the automaton module embedded at build
// time.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text, default config paths, and the script
	// marker recognized on the first line of a script file.
	Name = "automaton"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Pipeline automation script compiler and dispatcher"
	// EnvPrefix is prepended to the names of environment variables read by
	// the CLI.
	EnvPrefix = "AUTOMATON_"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
