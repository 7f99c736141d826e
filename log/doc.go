// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are configured with functional options at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// Attributes attached with [Logger.With] are included in every subsequent
// message. Context-unaware methods use [DefaultContextProvider].
//
// # Levels
//
// Five levels are defined, from [LevelTrace] to [LevelError].
// [Level.Quieter] and [Level.Louder] step between them.
//
// A threshold can be shared between loggers with [WithLevelVar]. Every
// logger derived from one created with a [slog.LevelVar] consults that
// variable on each message, which lets a caller raise or lower verbosity
// for a region of work and restore it afterwards.
//
// # Output
//
// Two formats are supported, [FormatText] (default) and [FormatJSON].
// With [WithPretty] enabled, output is styled with lipgloss when written to a
// terminal and left plain otherwise.
package log
