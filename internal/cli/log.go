// Package cli implements the openfare-rs command-line dispatcher.
//
// The binary is an OpenFare registry extension: the host tool invokes
// it with a subcommand and reads a JSON result from stdout. Everything
// else (logs, the optional human summary) goes to stderr so the
// protocol stream stays clean.
//
// # Commands
//
//   - package-locks: resolve a published crate and its dependency locks
//   - project-locks: resolve a local project and its dependency locks
//   - registries: print the registry host names this extension serves
//
// # Logging
//
// Logging is off by default, matching the host's expectation of a
// quiet extension. It is enabled with --verbose or the OPENFARE_RS_LOG
// environment variable (debug|info|warn|error|off).
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// envLogLevel is the environment variable consulted for the log level
// when --verbose is not given.
const envLogLevel = "OPENFARE_RS_LOG"

// logOff silences all output; charmbracelet/log has no explicit off
// level, so one above Fatal is used.
const logOff = log.FatalLevel + 1

// newLogger creates a logger writing to w at the given level, with
// timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLogLevel maps an OPENFARE_RS_LOG value to a log level.
// Unrecognized values (and "") keep logging off.
func parseLogLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return logOff
	}
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default() so commands always have a valid logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
