package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that reads a YAML configuration
// file mapping flag names to values.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Keys may spell the hyphens of a flag name as underscores, so both
// "log-level" and "log_level" set --log-level. Scalars are passed to kong
// in their string form, sequences as lists of strings and mappings as
// maps of strings. An empty file resolves nothing.
//
// Example config file:
//
//	log-level: debug
//	log_format: json
//	include:
//	  - /opt/automaton/lib
//
// Command-line flags override config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	conf := make(config, len(raw))

	for k, v := range raw {
		conf[strings.ReplaceAll(k, "_", "-")] = normalize(v)
	}

	return conf, nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Not found returns nil to let Kong use defaults
	return r[flag.Name], nil
}

// normalize converts decoded YAML into the string forms kong parses.
func normalize(v any) any {
	switch v := v.(type) {
	case nil:
		return nil

	case string:
		return v

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = fmt.Sprint(normalize(e))
		}

		return out

	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = fmt.Sprint(normalize(e))
		}

		return out

	default:
		return fmt.Sprint(v)
	}
}
