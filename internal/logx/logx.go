// Package logx is the process-wide structured logger. It stays silent until
// Init runs, so library consumers and tests produce no log output.
package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// Init configures the logger to write human-readable lines to stderr. Level
// names follow zerolog ("debug", "info", "warn", "error"); unknown or empty
// names fall back to info.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger = zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(lvl)
}

func Debug() *zerolog.Event {
	return logger.Debug()
}

func Info() *zerolog.Event {
	return logger.Info()
}

func Warn() *zerolog.Event {
	return logger.Warn()
}

func Error() *zerolog.Event {
	return logger.Error()
}
