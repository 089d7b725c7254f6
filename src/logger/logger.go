package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"sentiment-aligner/src/models"

	"github.com/rs/zerolog"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name string
	zl   zerolog.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance writing to stdout.
// A nil config yields info level console output.
func NewLogger(config *models.MConfig, name string) *Logger {
	level, format := "info", "console"
	if config != nil {
		level, format = config.LogLevel, config.LogFormat
	}
	return NewLoggerWithWriter(os.Stdout, level, format, name)
}

// -----------------------------------------------------------------------------

// NewLoggerWithWriter creates a Logger on an arbitrary writer.
func NewLoggerWithWriter(w io.Writer, level, format, name string) *Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	zl := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("component", name).
		Logger()

	return &Logger{name: name, zl: zl}
}

// -----------------------------------------------------------------------------

func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// -----------------------------------------------------------------------------

// With returns a child logger carrying an extra field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{name: l.name, zl: l.zl.With().Str(key, value).Logger()}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.zl.Fatal().Msgf(format, args...)
}
