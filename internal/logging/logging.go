// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console logger at the requested level. Unknown levels fall
// back to info.
func New(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}
