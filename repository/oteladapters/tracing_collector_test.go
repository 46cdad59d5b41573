package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository/oteladapters"
)

func newTracedCollector(t *testing.T) (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewTracingCollector(provider.Tracer("ddd-toolkit-test")), exporter
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	collector, exporter := newTracedCollector(t)

	ctx, span := collector.StartSpan(t.Context(), "repository.save", map[string]string{"operation": "save"})
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	span.AddAttribute("entity_id", "c-1")
	collector.FinishSpan(span, "success", map[string]string{"written": "true"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	stub := spans[0]
	assert.Equal(t, "repository.save", stub.Name)
	assert.Equal(t, codes.Ok, stub.Status.Code)
	assertSpanAttribute(t, stub, "operation", "save")
	assertSpanAttribute(t, stub, "entity_id", "c-1")
	assertSpanAttribute(t, stub, "written", "true")
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status      string
		code        codes.Code
		description string
	}{
		{status: "success", code: codes.Ok},
		{status: "ok", code: codes.Ok},
		{status: "error", code: codes.Error, description: "Operation failed"},
		{status: "conflict", code: codes.Error, description: "Concurrency conflict"},
		{status: "cancelled", code: codes.Error, description: "Operation cancelled"},
		{status: "timeout", code: codes.Error, description: "Operation timeout"},
		{status: "partial", code: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			collector, exporter := newTracedCollector(t)

			_, span := collector.StartSpan(t.Context(), "repository.find", nil)
			collector.FinishSpan(span, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.code, spans[0].Status.Code)
			assert.Equal(t, tc.description, spans[0].Status.Description)

			if tc.code == codes.Unset {
				assertSpanAttribute(t, spans[0], "status", tc.status)
			}
		})
	}
}

func Test_TracingCollector_ChildSpansShareTheTrace(t *testing.T) {
	collector, exporter := newTracedCollector(t)

	ctx, parent := collector.StartSpan(t.Context(), "repository.save", nil)
	_, child := collector.StartSpan(ctx, "repository.publish", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	collector, exporter := newTracedCollector(t)

	assert.NotPanics(t, func() {
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func assertSpanAttribute(t *testing.T, span tracetest.SpanStub, key, expected string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expected, attr.Value.AsString())
			return
		}
	}

	assert.Fail(t, "span attribute missing", key)
}
