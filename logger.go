package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// newLogger creates the process-wide structured logger.
func newLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// newLoggerWithWriter is used by tests to capture log output.
func newLoggerWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
