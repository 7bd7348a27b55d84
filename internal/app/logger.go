package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/ptrack/fiscalia-backend/internal/config"
)

// NewLogger builds the process-wide slog.Logger from LogConfig and
// installs it via slog.SetDefault so package-level slog calls agree
// with the injected logger.
//
// "json" writes structured output for production; any other format
// falls back to the text handler with source locations, which is what
// local development wants. Level accepts debug, info, warn and error
// (case and surrounding whitespace ignored); an unknown level means
// info. Everything goes to stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !strings.EqualFold(cfg.Format, "json"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
