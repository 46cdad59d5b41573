package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// TracingCollector implements repository.TracingCollector with an OpenTelemetry tracer.
type TracingCollector struct {
	tracer trace.Tracer
}

var _ repository.TracingCollector = (*TracingCollector)(nil)

// NewTracingCollector creates a collector that starts its spans with the given tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a child span of whatever span ctx carries.
func (t *TracingCollector) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, repository.SpanContext) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attributesFrom(attrs)...))

	return ctx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final status and attributes and ends the span.
// Span contexts not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx repository.SpanContext, status string, attrs map[string]string) {
	otelSpan, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpan.span.SetAttributes(attributesFrom(attrs)...)
	otelSpan.SetStatus(status)
	otelSpan.span.End()
}

// OTelSpanContext wraps a live OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

var _ repository.SpanContext = (*OTelSpanContext)(nil)

// SetStatus maps the repository's status strings onto OpenTelemetry status codes.
// Unknown statuses are kept as a "status" attribute and leave the code unset.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case "success", "ok":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "Operation failed")
	case "conflict":
		s.span.SetStatus(codes.Error, "Concurrency conflict")
	case "cancelled":
		s.span.SetStatus(codes.Error, "Operation cancelled")
	case "timeout":
		s.span.SetStatus(codes.Error, "Operation timeout")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}
