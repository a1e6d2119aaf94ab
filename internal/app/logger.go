package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a configured slog.Logger writing to stdout.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	if cfg != nil && cfg.AppEnv != "" {
		logger = logger.With(slog.String("env", cfg.AppEnv))
	}
	return logger
}
