// Package log provides structured logging for the webasset reader and
// watch subsystem.
//
// Two logger variants are available:
//   - Logger: non-sugared zap.Logger for the fetch and watch paths
//   - SugaredLogger: printf-style logging for CLI surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured logger with component context. Every entry
// carries the component name so interleaved fetch and watch output stays
// attributable.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger for the named component ("reader", "watch",
// "cache", ...). Output defaults to os.Stderr.
func NewLogger(component string) *Logger {
	return newLoggerWithWriter(component, os.Stderr)
}

// Nop returns a logger that discards everything. Used as the default when
// the embedding host supplies no logger.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// WithOutput returns a new logger writing to w instead.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	core := newCore(w)
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core { return core }))}
}

func newLoggerWithWriter(component string, w io.Writer) *Logger {
	zapLogger := zap.New(newCore(w)).With(zap.String("component", component))
	return &Logger{zap: zapLogger}
}

func newCore(w io.Writer) zapcore.Core {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
