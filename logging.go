package ledgerrecon

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the root zerolog.Logger used across the module.
// Components derive their own scoped logger from it with
// log.With().Str("component", name).Logger(), the pattern followed by
// every constructor in this package.
func NewLogger(w io.Writer, debug bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// NewConsoleLogger wraps NewLogger with zerolog's human-readable
// console writer, used by the CLI entry point so interactive runs
// aren't stuck reading raw JSON lines.
func NewConsoleLogger(debug bool) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return NewLogger(console, debug)
}
