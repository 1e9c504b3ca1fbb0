// Package logging wraps zap with a correlation-ID-aware Logger. It supports
// a JSON/console encoder switch, a custom TraceLevel below zap's own Debug,
// and a context-carried correlation ID threaded into every log line.
package logging

import (
	"context"
	"errors"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type correlationIDKey struct{}

// WithCorrelationID stashes a request-scoped correlation ID (one per CLI
// invocation, or one per file under --watch) on ctx for every subsequent
// log line to carry.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// NewCorrelationID mints a fresh v4 UUID for WithCorrelationID.
func NewCorrelationID() string {
	return uuid.NewString()
}

func contextFields(ctx context.Context) []zap.Field {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok && id != "" {
		return []zap.Field{zap.String("correlation_id", id)}
	}
	return nil
}

// Logger wraps *zap.Logger with context-aware methods that thread the
// correlation ID through automatically.
type Logger struct {
	zap *zap.Logger
}

// Options configures New.
type Options struct {
	Level  string // "trace", "debug", "info", "warn", "error"
	Format string // "json" or "console"
}

// New builds a Logger writing to stderr (so stdout stays clean for
// compressed output), using JSON or console encoding per opts.Format.
func New(opts Options) (*Logger, error) {
	level, err := LevelFromString(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoder := newEncoder(opts.Format)
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(zapErrWriter{})), level)
	return &Logger{zap: zap.New(core)}, nil
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func (l *Logger) Trace(ctx context.Context, msg string, fields ...zap.Field) {
	if l.zap.Core().Enabled(TraceLevel) {
		l.zap.Log(TraceLevel, msg, append(contextFields(ctx), fields...)...)
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Debug(msg, append(contextFields(ctx), fields...)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Info(msg, append(contextFields(ctx), fields...)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Warn(msg, append(contextFields(ctx), fields...)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.zap.Error(msg, append(contextFields(ctx), fields...)...)
}

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

// Sync flushes buffered log entries, ignoring the harmless EINVAL/ENOTTY
// errors stderr returns on some platforms.
func (l *Logger) Sync() error {
	err := l.zap.Sync()
	if err != nil && isStdoutSyncError(err) {
		return nil
	}
	return err
}

func isStdoutSyncError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EINVAL || errno == syscall.ENOTTY
	}
	return false
}
