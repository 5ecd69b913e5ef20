// Package zaplog bridges go.uber.org/zap to the observability.Logger
// interface so applications embedding the library can reuse their existing
// zap setup.
package zaplog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wudi/barkit/observability"
)

// Logger adapts a *zap.Logger to observability.Logger.
type Logger struct {
	l *zap.Logger
}

// New wraps an existing zap logger.
func New(l *zap.Logger) Logger { return Logger{l: l} }

// NewForMode builds a logger configured for the given run mode: "release"
// yields JSON production output, anything else a colored development console.
func NewForMode(mode string) (Logger, error) {
	var config zap.Config
	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	l, err := config.Build()
	if err != nil {
		return Logger{}, err
	}
	return Logger{l: l}, nil
}

// Zap returns the underlying zap logger.
func (z Logger) Zap() *zap.Logger { return z.l }

// Sync flushes buffered log entries.
func (z Logger) Sync() error { return z.l.Sync() }

func (z Logger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, convert(fields)...)
}

func (z Logger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, convert(fields)...)
}

func (z Logger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, convert(fields)...)
}

func (z Logger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, convert(fields)...)
}

func (z Logger) With(fields ...observability.Field) observability.Logger {
	return Logger{l: z.l.With(convert(fields)...)}
}

func convert(fields []observability.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			out = append(out, zap.String(f.Key(), v))
		case int:
			out = append(out, zap.Int(f.Key(), v))
		case int64:
			out = append(out, zap.Int64(f.Key(), v))
		case float64:
			out = append(out, zap.Float64(f.Key(), v))
		case bool:
			out = append(out, zap.Bool(f.Key(), v))
		case error:
			out = append(out, zap.Error(v))
		default:
			out = append(out, zap.Any(f.Key(), v))
		}
	}
	return out
}
