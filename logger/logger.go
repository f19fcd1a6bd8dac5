package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog *zerolog.Logger
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a new ZeroLogger instance with the specified log level and formatting options.
// If pretty is true, output will be formatted for human readability.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(level, pretty, os.Stdout)
}

// NewWithOutput creates a ZeroLogger writing to the provided output.
// Tests use this to capture log lines.
func NewWithOutput(level string, pretty bool, out io.Writer) *ZeroLogger {
	var l zerolog.Logger

	if pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(out).With().Timestamp().Logger()
	}

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l}
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log}
}

// Info creates an informational log event.
func (l *ZeroLogger) Info() LogEvent {
	return &zeroLogEvent{event: l.zlog.Info()}
}

// Error creates an error log event.
func (l *ZeroLogger) Error() LogEvent {
	return &zeroLogEvent{event: l.zlog.Error()}
}

// Debug creates a debug log event.
func (l *ZeroLogger) Debug() LogEvent {
	return &zeroLogEvent{event: l.zlog.Debug()}
}

// Warn creates a warning log event.
func (l *ZeroLogger) Warn() LogEvent {
	return &zeroLogEvent{event: l.zlog.Warn()}
}

// zeroLogEvent wraps zerolog.Event to implement LogEvent.
type zeroLogEvent struct {
	event *zerolog.Event
}

func (e *zeroLogEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *zeroLogEvent) Msgf(format string, args ...any) {
	e.event.Msgf(format, args...)
}

func (e *zeroLogEvent) Err(err error) LogEvent {
	e.event = e.event.Err(err)
	return e
}

func (e *zeroLogEvent) Str(key, value string) LogEvent {
	e.event = e.event.Str(key, value)
	return e
}

func (e *zeroLogEvent) Int(key string, value int) LogEvent {
	e.event = e.event.Int(key, value)
	return e
}

func (e *zeroLogEvent) Int64(key string, value int64) LogEvent {
	e.event = e.event.Int64(key, value)
	return e
}

func (e *zeroLogEvent) Dur(key string, d time.Duration) LogEvent {
	e.event = e.event.Dur(key, d)
	return e
}

func (e *zeroLogEvent) Interface(key string, i any) LogEvent {
	e.event = e.event.Interface(key, i)
	return e
}
