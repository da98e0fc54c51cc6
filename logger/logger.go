// Package logger holds the process-wide zerolog instance used by task
// queues when no logger is injected.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log is the global logger instance.
var Log zerolog.Logger

func init() {
	// Default to JSON output for production
	Log = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()

	// Pretty print for development if requested
	if os.Getenv("APP_ENV") != "production" {
		Log = Log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("TASKQUEUE_LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		Log = Log.Level(lvl)
	}
}

// GetLogger returns the global logger instance.
func GetLogger() zerolog.Logger {
	return Log
}
