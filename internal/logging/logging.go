// Package logging installs the process-wide slog handler shared by every
// command and exposes component-scoped loggers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Init sets the global slog default at the given level. format selects the
// handler: "json" for machine-readable records, anything else for text. An
// optional writer overrides os.Stderr.
func Init(level slog.Level, format string, w ...io.Writer) {
	out := io.Writer(os.Stderr)
	if len(w) > 0 && w[0] != nil {
		out = w[0]
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(h))
}

// ParseLevel maps a --log-level flag value to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a logger carrying a "component" attribute, so records from the
// fitter, the discovery client and the commands stay distinguishable.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
