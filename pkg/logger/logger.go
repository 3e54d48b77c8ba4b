// Package logger builds the zap.SugaredLogger used across the engine and
// server packages so every component logs through the same configuration.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production zap logger with the given level, or a no-op
// logger if construction fails (stderr unavailable, etc.) so callers never
// need a nil check.
func New(level zapcore.Level) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Nop returns a logger that discards everything, used in tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
