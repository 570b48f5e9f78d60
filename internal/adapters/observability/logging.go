package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger writing to stdout.
// APP_ENV=dev (or development) uses a human-friendly console writer and
// defaults to debug; an unparsable level falls back to info.
func NewLogger(env, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	lvl := zerolog.InfoLevel
	if env == "dev" || env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "reviewhub").Logger()
}
