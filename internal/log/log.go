// Package log wraps log/slog with the four-tier verbosity the fixer CLI
// exposes (warn by default, -v for info, --debug for debug, --trace for a
// level below debug), mirroring the slog-based logging the rest of the
// teacher codebase has standardized on.
package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// LevelTrace sits one step below slog.LevelDebug. It is only ever enabled by
// --trace. Tracef logs at this level; no other code in the repository does.
const LevelTrace = slog.Level(-8)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

// Verbosity is the CLI's three-switch verbosity selection. The switches are
// cumulative in severity (trace implies debug implies info implies warn).
type Verbosity int

const (
	VerbosityDefault Verbosity = iota // warnings and above
	VerbosityInfo                     // -v
	VerbosityDebug                    // --debug
	VerbosityTrace                    // --trace
)

func (v Verbosity) level() slog.Level {
	switch v {
	case VerbosityInfo:
		return slog.LevelInfo
	case VerbosityDebug:
		return slog.LevelDebug
	case VerbosityTrace:
		return LevelTrace
	default:
		return slog.LevelWarn
	}
}

// EchoBackend reports whether the chosen verbosity is debug or lower. No
// store backend consults it: store queries are not echoed at any verbosity.
func (v Verbosity) EchoBackend() bool {
	return v >= VerbosityDebug
}

// New builds the process-wide logger for the given verbosity, writing
// human-readable lines to os.Stderr.
func New(v Verbosity) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: v.level(),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					if name, ok := levelNames[lvl]; ok {
						a.Value = slog.StringValue(name)
					}
				}
			}
			return a
		},
	})
	return slog.New(h)
}

// Tracef logs at LevelTrace against the default slog logger, matching the
// f-suffixed helpers the teacher's earlier logrus-based wrapper exposed.
func Tracef(ctx context.Context, format string, args ...any) {
	slog.Default().Log(ctx, LevelTrace, fmt.Sprintf(format, args...))
}
