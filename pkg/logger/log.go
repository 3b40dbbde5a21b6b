// Package logger wraps zap.Logger with the structured Field/Options shape
// used across this repo's packages.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	pkgerrors "github.com/muhammadchandra19/exchange/services/feed-engine/pkg/errors"
)

// Logger is a thin wrapper around zap.Logger.
type Logger struct {
	logger *zap.Logger
}

// Field holds a key-value pair to be written to a log line.
type Field struct {
	Key   string
	Value any
}

// NewField returns a Field with the given key and value.
func NewField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Level is the minimum severity that will be emitted.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"

	messageKey = "message"
)

func (lv Level) zapLevel() zapcore.Level {
	switch lv {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures a Logger built by New.
type Options struct {
	Level       Level
	OutputPaths []string
}

// New builds a Logger on top of zap's production config, with the message
// key renamed to "message" for consistency across this repo's log lines.
func New(opts Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if opts.Level != "" {
		cfg.Level = zap.NewAtomicLevelAt(opts.Level.zapLevel())
	}
	if opts.OutputPaths != nil {
		cfg.OutputPaths = opts.OutputPaths
	}
	cfg.EncoderConfig.MessageKey = messageKey

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{logger: zl}, nil
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

// GetZap returns the underlying *zap.Logger.
func (l *Logger) GetZap() *zap.Logger {
	return l.logger
}

// Info writes a log line at info severity.
func (l *Logger) Info(message string, fields ...Field) {
	l.logger.Info(message, convertFields(fields)...)
}

// Warn writes a log line at warn severity.
func (l *Logger) Warn(message string, fields ...Field) {
	l.logger.Warn(message, convertFields(fields)...)
}

// Debug writes a log line at debug severity.
func (l *Logger) Debug(message string, fields ...Field) {
	l.logger.Debug(message, convertFields(fields)...)
}

// Error writes err at error severity, attaching its stack trace when err
// was wrapped through pkg/errors.
func (l *Logger) Error(err error, fields ...Field) {
	zapFields := convertFields(fields)
	stacktrace := ""

	if st, ok := err.(pkgerrors.StackTracer); ok {
		stacktrace = strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace()))
	}

	if ce := l.logger.Check(zapcore.ErrorLevel, err.Error()); ce != nil {
		if stacktrace != "" {
			ce.Stack = stacktrace
		}
		ce.Write(zapFields...)
	}
}

// WithFields returns a child logger carrying the given fields on every
// subsequent call.
func (l *Logger) WithFields(fields ...Field) *Logger {
	return &Logger{logger: l.logger.With(convertFields(fields)...)}
}

func convertFields(fields []Field) []zapcore.Field {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
