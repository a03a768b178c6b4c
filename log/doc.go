// Package log provides structured, leveled logging built on [log/slog].
//
// A [Logger] is configured once with functional options and is immutable
// afterward; derived loggers are created with [Logger.Wrap] and
// [Logger.With]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Info("template rendered", slog.String("name", name))
//
// The zero Logger discards everything, which lets library code accept a
// Logger option without requiring callers to provide one.
//
// # Levels
//
// In addition to the [slog] levels, [LevelTrace] is available for very
// verbose diagnostics. [ParseLevel] and [ParseFormat] convert command line
// strings, falling back to the defaults on unrecognized input.
//
// # Pretty output
//
// With [WithPretty] (the default), records are written in a colorized form
// meant for terminals. Colors are omitted automatically when the output is
// not a terminal.
//
// # Package-level logger
//
// The functions [Trace], [Debug], [Info], [Warn], and [Error] and their
// Context variants write to the package-level logger, which writes to
// standard error until changed with [Config] or [SetDefault].
package log
