// Package telemetry builds the structured loggers the CLI and harness emit
// per-grunt progress through.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects a log level and an output format.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string
	// Format is "json" or "console". Empty means console.
	Format string
	// Writer receives the log stream. Nil means stderr.
	Writer io.Writer
}

// New builds a zerolog.Logger from opts.
func New(opts Options) (zerolog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("unknown log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	switch strings.ToLower(opts.Format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	case "json":
		// zerolog's native output
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q (want json or console)", opts.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
