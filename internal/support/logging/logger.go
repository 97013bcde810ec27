// Package logging builds the process slog.Logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options customize logger construction.
type Options struct {
	Level       slog.Level
	Format      string
	AddSource   bool
	Environment string
	Output      io.Writer
}

// New returns a JSON logger unless Format asks for text. Every record carries
// the service name and environment.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level, AddSource: opts.AddSource}

	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "text", "console":
		handler = slog.NewTextHandler(out, handlerOpts)
	default:
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	logger := slog.New(handler).With("service", "bakehub")
	if opts.Environment != "" {
		logger = logger.With("env", opts.Environment)
	}
	return logger
}
