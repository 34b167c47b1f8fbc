package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// SetupLogging configures the global slog default logger. All log output
// goes to os.Stderr so stdout stays clean for the link report itself.
func SetupLogging(level slog.Level, format string) {
	SetupLoggingWithWriter(level, format, os.Stderr)
}

// SetupLoggingWithWriter is SetupLogging with an explicit writer, so tests
// can capture log output in a buffer instead of os.Stderr.
func SetupLoggingWithWriter(level slog.Level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ResolveLogLevel applies the MLC_DEBUG env var ("1" means debug), then the
// debug argument, then the quiet argument, defaulting to info.
func ResolveLogLevel(debug, quiet bool) slog.Level {
	if os.Getenv("MLC_DEBUG") == "1" {
		return slog.LevelDebug
	}
	if debug {
		return slog.LevelDebug
	}
	if quiet {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ResolveLogFormat reads MLC_LOG_FORMAT, defaulting to text.
func ResolveLogFormat() string {
	if strings.EqualFold(os.Getenv("MLC_LOG_FORMAT"), "json") {
		return "json"
	}
	return "text"
}

// NewLogger returns a child of the default logger tagged with a component
// name, so log lines can be filtered by pipeline stage.
func NewLogger(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
