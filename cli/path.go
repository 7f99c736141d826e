package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/automaton/pkg"
)

// configFile is the base name of the YAML configuration file.
const configFile = "config.yaml"

// pathEnv names the environment variable holding the script search path.
const pathEnv = pkg.EnvPrefix + "PATH"

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// searchPath returns the directories searched for input files given by
// relative path: each include directory in order, then those listed in
// $AUTOMATON_PATH. Duplicates and entries that are not directories are
// dropped.
func searchPath(include ...string) []string {
	delim := string(os.PathListSeparator)

	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pathEnv)),
		mung.WithDelim(delim),
		mung.WithPrefixItems(include...),
		mung.WithFilter(isDir),
	).String()

	if list == "" {
		return nil
	}

	var dirs []string

	seen := make(map[string]bool)

	for _, dir := range strings.Split(list, delim) {
		if !seen[dir] && isDir(dir) {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

func isDir(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
