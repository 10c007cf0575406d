package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once sync.Once
	base *slog.Logger
)

// Init configures the process logger. Text output for interactive use,
// JSON when LOG_FORMAT=json.
func Init(level slog.Level) {
	once.Do(func() {
		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if os.Getenv("LOG_FORMAT") == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		base = slog.New(handler)
	})
}

// L returns the process logger, initializing it at info level if needed.
func L() *slog.Logger {
	if base == nil {
		Init(slog.LevelInfo)
	}
	return base
}
