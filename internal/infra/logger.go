package infra

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewLogger constructs a zerolog.Logger writing to stderr so that the report
// on stdout stays clean. Each logger carries a run_id.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(os.Stderr, appEnv, uuid.NewString())
}

func newLogger(out io.Writer, appEnv, runID string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()

	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return logger
}

// Logger aliases the zerolog.Logger so callers outside the infra package can
// depend on the logging contract without importing the third-party module
// directly.
type Logger = zerolog.Logger

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return zerolog.New(io.Discard)
}
