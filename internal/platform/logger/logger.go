package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON to stdout; debug level in dev mode so
// flow rejections are visible while iterating.
func New(devMode bool) *slog.Logger {
	level := slog.LevelInfo
	if devMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
