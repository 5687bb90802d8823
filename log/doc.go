// Package log provides a small structured logging layer over [log/slog].
//
// A [Logger] is an immutable value. Configuration is applied with
// functional options when it is created with [Make] or derived with
// [Logger.Wrap]; attributes are attached with [Logger.With]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger = logger.With(slog.String("file", path))
//	logger.Debug("expanding", slog.Int("calls", n))
//
// Every level has a context-aware variant (for example
// [Logger.InfoContext]). The context-unaware variants use
// [DefaultContextProvider].
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn] and [LevelError].
// Trace sits below slog's Debug and is rendered as TRACE.
//
// # Formats
//
// [FormatText] is the default. With [WithPretty] enabled (the default)
// text records are styled with lipgloss, which drops colors automatically
// when the output is not a terminal. [FormatJSON] always emits one
// machine-readable object per line.
//
// # Package-level logger
//
// Functions such as [Info] and [Debug] write through a package-level
// logger that starts on standard error with default settings and is
// reconfigured with [Config] or replaced with [SetDefault].
package log
