// Package cli contains the command line interface for automaton.
//
// # Usage
//
//	automaton [flags] [run] <file>...
//	automaton compile --format=yaml build.atm
//	automaton check -s warning *.atm
//	automaton ops MaskParameters
//	automaton repl data/
//	automaton init --force
//
// Run is the default command, so scripts may be given directly:
//
//	automaton -P mode=fast build.atm plan.yaml
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/automaton/config.yaml). Keys are flag
// names, with hyphens optionally written as underscores:
//
//	log-level: debug
//	log_format: json
//	include:
//	  - /opt/automaton/lib
//
// The init command writes the current flag values to that file.
// Command-line flags override configured values.
//
// # Search Path
//
// Input files given by relative path that do not exist in the working
// directory are looked up in each --include directory, then in the
// directories listed in $AUTOMATON_PATH.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - -v, -q: Lower or raise the log level one step per use
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o automaton .
//
// which adds:
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/automaton/pprof)
package cli
