// Package logging builds the structured logger used by verification runs.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger at the given level ("debug", "info",
// "warn", "error"). An empty level means info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

// WithOperation enriches the logger with the operation name and run identifier.
func WithOperation(logger *zap.Logger, operation, runID string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	return logger.With(fields...)
}
