package obs

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("obs: unknown log level %q", s)
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Info:
		return zerolog.InfoLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}

// Logger is a minimal logging interface for observability.
type Logger interface {
	Logf(level Level, format string, args ...interface{})
}

// NopLogger discards all logs.
type NopLogger struct{}

func (NopLogger) Logf(level Level, format string, args ...interface{}) {}

// ZeroLogger adapts a zerolog.Logger.
type ZeroLogger struct {
	L   zerolog.Logger
	Min Level
}

// NewLogger returns a Logger writing timestamped JSON lines to w.
func NewLogger(w io.Writer, min Level) ZeroLogger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return ZeroLogger{L: zl, Min: min}
}

// NewConsoleLogger is NewLogger with human-readable output.
func NewConsoleLogger(w io.Writer, min Level) ZeroLogger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return ZeroLogger{L: zerolog.New(cw).With().Timestamp().Logger(), Min: min}
}

// With returns a copy of z that tags every line with key=value.
func (z ZeroLogger) With(key, value string) ZeroLogger {
	z.L = z.L.With().Str(key, value).Logger()
	return z
}

func (z ZeroLogger) Logf(level Level, format string, args ...interface{}) {
	if level < z.Min {
		return
	}
	z.L.WithLevel(level.zerolog()).Msgf(format, args...)
}
