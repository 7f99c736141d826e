// Package profile provides optional runtime profiling for automaton.
//
// Profiling uses [github.com/pkg/profile] and must be enabled at build time
// with the "pprof" build tag. Without the tag, [Modes] is empty and
// [Profiler.Start] returns a no-op.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// Profile files are written to Path with names matching the mode
// (cpu.pprof, mem.pprof, and so on), and can be inspected with
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// Built with the tag, the package also imports [net/http/pprof], so a
// long-running PollDirectories session can expose /debug/pprof/ from any
// HTTP server started by the embedding program.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
