package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New initializes the application logger. Dev mode enables human-readable
// console output; production emits JSON.
func New(devMode bool) zerolog.Logger {
	if devMode {
		writer := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		return zerolog.New(writer).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
