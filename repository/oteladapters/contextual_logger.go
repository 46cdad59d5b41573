package oteladapters

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// SlogBridgeLogger implements repository.ContextualLogger on top of log/slog.
// Built with NewSlogBridgeLogger it emits through the global OpenTelemetry LoggerProvider,
// so records logged with a span in the context carry its trace and span IDs.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

var _ repository.ContextualLogger = (*SlogBridgeLogger)(nil)

// NewSlogBridgeLogger creates a logger backed by the otelslog bridge for the given instrumentation scope.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler creates a logger that writes through the given handler as-is.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler)}
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

// OTelLogger implements repository.ContextualLogger directly on the OpenTelemetry logs API.
// Prefer SlogBridgeLogger unless you already hold a log.Logger.
type OTelLogger struct {
	logger log.Logger
}

var _ repository.ContextualLogger = (*OTelLogger)(nil)

// NewOTelLogger wraps an OpenTelemetry log.Logger.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, "DEBUG", msg, args)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, "INFO", msg, args)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, "WARN", msg, args)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, "ERROR", msg, args)
}

func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, severityText, msg string, args []any) {
	if !l.logger.Enabled(ctx, log.EnabledParameters{Severity: severity}) {
		return
	}

	var record log.Record
	record.SetSeverity(severity)
	record.SetSeverityText(severityText)
	record.SetBody(log.StringValue(msg))
	record.AddAttributes(logKeyValues(args)...)

	l.logger.Emit(ctx, record)
}

// logKeyValues pairs up slog-style alternating key/value args. A trailing key without a value is dropped.
func logKeyValues(args []any) []log.KeyValue {
	kvs := make([]log.KeyValue, 0, len(args)/2)

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}

		kvs = append(kvs, log.KeyValue{Key: key, Value: logValue(args[i+1])})
	}

	return kvs
}

func logValue(v any) log.Value {
	switch val := v.(type) {
	case string:
		return log.StringValue(val)
	case bool:
		return log.BoolValue(val)
	case int:
		return log.IntValue(val)
	case int64:
		return log.Int64Value(val)
	case float64:
		return log.Float64Value(val)
	case error:
		return log.StringValue(val.Error())
	default:
		return log.StringValue(fmt.Sprint(val))
	}
}
