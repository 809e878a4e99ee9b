package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so packages depend on infra rather than the
// logging module directly.
type Logger = zerolog.Logger

// NewLogger builds the service logger: JSON at info level, or a console
// writer at debug level in development.
func NewLogger(appEnv string) Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "thumbnail-generator").
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return logger
}

// NopLogger returns a logger that discards everything. Clients use it when
// no logger is injected.
func NopLogger() *Logger {
	l := zerolog.New(io.Discard)
	return &l
}
