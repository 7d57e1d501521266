// Package logger provides the process-wide structured logger.
package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger once. Output is JSON to stderr unless
// pretty is set, in which case a human-readable console writer is used.
func Init(level string, pretty bool) {
	once.Do(func() {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || level == "" {
			lvl = zerolog.InfoLevel
		}

		var logger zerolog.Logger
		if pretty {
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		} else {
			logger = zerolog.New(os.Stderr)
		}
		defaultLogger = logger.Level(lvl).With().Timestamp().Logger()
	})
}

// Get returns the initialized default logger, initializing it with defaults
// if Init has not been called yet.
func Get() *zerolog.Logger {
	Init("info", false)
	return &defaultLogger
}

// Info starts an info-level event on the default logger.
func Info() *zerolog.Event { return Get().Info() }

// Warn starts a warn-level event on the default logger.
func Warn() *zerolog.Event { return Get().Warn() }

// Error starts an error-level event on the default logger.
func Error() *zerolog.Event { return Get().Error() }

// Debug starts a debug-level event on the default logger.
func Debug() *zerolog.Event { return Get().Debug() }
