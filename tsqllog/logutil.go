// Package tsqllog configures the process-wide structured logger.
//
// Grounded on the teacher's util.InitSlog (sqldef-sqldef/util/logutil.go):
// same LOG_LEVEL env var, same handler construction. Generalized with a
// Stage helper that returns a logger carrying a stage field.
package tsqllog

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures slog based on the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error. Defaults to info when the
// variable is unset or unrecognized.
func Init() {
	level := slog.LevelInfo
	if raw, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch strings.ToLower(raw) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// Stage returns a logger scoped to a pipeline stage, e.g. Stage("parse").
func Stage(name string) *slog.Logger {
	return slog.Default().With(slog.String("stage", name))
}
