// Package zapadapter lets a zap logger serve as the Logger and ContextualLogger of the repository
// and as the Logger of the event bus.
package zapadapter

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// Config selects the level ("debug", "info", "warn", "error") and the encoding ("json" or "console").
// Unparsable levels fall back to info.
type Config struct {
	Level    string
	Encoding string
}

// Logger adapts a *zap.SugaredLogger. The Context variants add trace_id and span_id
// when the context carries a valid span.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	_ repository.Logger           = (*Logger)(nil)
	_ repository.ContextualLogger = (*Logger)(nil)
	_ eventbus.Logger             = (*Logger)(nil)
)

// New wraps an existing zap logger.
func New(logger *zap.Logger) *Logger {
	return &Logger{sugar: logger.Sugar()}
}

// NewFromConfig builds a zap logger writing to stdout.
func NewFromConfig(cfg Config) *Logger {
	return New(zap.New(newCore(cfg, zapcore.Lock(os.Stdout)), zap.AddCaller(), zap.AddCallerSkip(1)))
}

func newCore(cfg Config, sink zapcore.WriteSyncer) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	return zapcore.NewCore(encoder, sink, level)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Zap returns the underlying logger, e.g. to hand it to libraries that take a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Debugw(msg, withTrace(ctx, args)...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Infow(msg, withTrace(ctx, args)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, withTrace(ctx, args)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Errorw(msg, withTrace(ctx, args)...)
}

func withTrace(ctx context.Context, args []any) []any {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return args
	}

	withIDs := make([]any, 0, len(args)+4)
	withIDs = append(withIDs, args...)

	return append(withIDs,
		fieldTraceID, spanContext.TraceID().String(),
		fieldSpanID, spanContext.SpanID().String(),
	)
}
