package core

import "go.uber.org/zap"

// Logger is the engine's structured logging surface. The zero value is not
// usable; use NewNopLogger in tests and NewLogger(zap.NewProduction()) (or
// equivalent) in a real deployment.
type Logger struct {
	z *zap.Logger
}

// NewLogger wraps an existing zap logger.
func NewLogger(z *zap.Logger) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return Logger{z: z}
}

// NewNopLogger returns a logger that discards everything, for tests and
// callers that have not wired a real sink.
func NewNopLogger() Logger {
	return Logger{z: zap.NewNop()}
}

func (l Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// With returns a child logger with the given structured fields attached to
// every subsequent entry.
func (l Logger) With(fields ...zap.Field) Logger {
	return Logger{z: l.z.With(fields...)}
}
