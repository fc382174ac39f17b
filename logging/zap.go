package logging

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap JSON logger to Logger. Loggers derived with
// WithFields share the level of their parent.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// ZapOption configures NewZapLogger.
type ZapOption func(*zapSettings)

type zapSettings struct {
	out   io.Writer
	level Level
}

// WithZapOutput sends JSON lines to w instead of stdout.
func WithZapOutput(w io.Writer) ZapOption {
	return func(s *zapSettings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithZapLevel sets the initial minimum level.
func WithZapLevel(level Level) ZapOption {
	return func(s *zapSettings) {
		s.level = level
	}
}

// NewZapLogger builds a logger on zap's production JSON encoder.
func NewZapLogger(opts ...ZapOption) *ZapLogger {
	s := zapSettings{out: os.Stdout, level: InfoLevel}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	level := zap.NewAtomicLevelAt(zapLevel(s.level))
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(s.out),
		level,
	)
	return &ZapLogger{logger: zap.New(core), level: level}
}

// NewZapLoggerFrom wraps an existing zap logger. SetLevel has no effect on
// loggers built this way beyond their own core's level.
func NewZapLoggerFrom(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger, level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func zapFields(err error, fields ...Fields) []zap.Field {
	var out []zap.Field
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, f := range fields {
		for key, value := range f {
			if key == "" {
				continue
			}
			out = append(out, zap.Any(key, value))
		}
	}
	return out
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	z.logger.Debug(msg, zapFields(nil, fields...)...)
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	z.logger.Info(msg, zapFields(nil, fields...)...)
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	z.logger.Warn(msg, zapFields(nil, fields...)...)
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	z.logger.Error(msg, zapFields(err, fields...)...)
}

func (z *ZapLogger) Fatal(err error, msg string, fields ...Fields) {
	z.logger.Fatal(msg, zapFields(err, fields...)...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{logger: z.logger.With(zapFields(nil, fields)...), level: z.level}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if fields := FieldsFromContext(ctx); len(fields) > 0 {
		return z.WithFields(fields)
	}
	return z
}

func (z *ZapLogger) SetLevel(level Level) {
	z.level.SetLevel(zapLevel(level))
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}
