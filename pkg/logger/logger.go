package logger

import (
	"log/slog"
	"os"
)

// Log is the process-wide request-path logger. It falls back to slog's
// default logger until Init runs, so packages can log from tests.
var Log = slog.Default()

// Init installs the JSON handler. Production runs at info level.
func Init(production bool) {
	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)
}
