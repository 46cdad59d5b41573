package oteladapters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository/oteladapters"
)

func newMeteredCollector(t *testing.T) (*oteladapters.MetricsCollector, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewMetricsCollector(provider.Meter("ddd-toolkit-test")), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	collector, reader := newMeteredCollector(t)
	labels := map[string]string{"operation": "save", "entity_kind": "customer"}

	collector.RecordDuration("repository_operation_duration_seconds", 1500*time.Millisecond, labels)
	collector.RecordDurationContext(t.Context(), "repository_operation_duration_seconds", 500*time.Millisecond, labels)

	histogram := findHistogram(t, collect(t, reader), "repository_operation_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	point := histogram.DataPoints[0]
	assert.Equal(t, uint64(2), point.Count)
	assert.InDelta(t, 2.0, point.Sum, 0.0001)
	assertHasAttribute(t, point.Attributes, "operation", "save")
	assertHasAttribute(t, point.Attributes, "entity_kind", "customer")
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	collector, reader := newMeteredCollector(t)

	collector.IncrementCounter("repository_concurrency_conflicts_total", map[string]string{"entity_kind": "customer"})
	collector.IncrementCounterContext(t.Context(), "repository_concurrency_conflicts_total", map[string]string{"entity_kind": "customer"})
	collector.IncrementCounter("repository_concurrency_conflicts_total", map[string]string{"entity_kind": "order"})

	sum := findCounter(t, collect(t, reader), "repository_concurrency_conflicts_total")
	require.Len(t, sum.DataPoints, 2)

	byKind := map[string]int64{}
	for _, point := range sum.DataPoints {
		kind, _ := point.Attributes.Value("entity_kind")
		byKind[kind.AsString()] = point.Value
	}

	assert.Equal(t, map[string]int64{"customer": 2, "order": 1}, byKind)
	assert.True(t, sum.IsMonotonic)
}

func Test_MetricsCollector_RecordValue_KeepsLastValue(t *testing.T) {
	collector, reader := newMeteredCollector(t)

	collector.RecordValue("repository_records_loaded", 3, nil)
	collector.RecordValueContext(t.Context(), "repository_records_loaded", 7, nil)

	gauge := findGauge(t, collect(t, reader), "repository_records_loaded")
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 7.0, gauge.DataPoints[0].Value, 0.0001)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	collector, reader := newMeteredCollector(t)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 50 {
				collector.IncrementCounter("repository_operation_errors_total", nil)
			}
		}()
	}

	for range 8 {
		<-done
	}

	sum := findCounter(t, collect(t, reader), "repository_operation_errors_total")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(400), sum.DataPoints[0].Value)
}

func findHistogram(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	data := findMetricData(t, rm, name)
	histogram, ok := data.(metricdata.Histogram[float64])
	require.True(t, ok, "metric %s is not a float64 histogram", name)

	return histogram
}

func findCounter(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	data := findMetricData(t, rm, name)
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	return sum
}

func findGauge(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	data := findMetricData(t, rm, name)
	gauge, ok := data.(metricdata.Gauge[float64])
	require.True(t, ok, "metric %s is not a float64 gauge", name)

	return gauge
}

func findMetricData(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Aggregation {
	t.Helper()

	for _, scopeMetrics := range rm.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	require.FailNow(t, "metric not found", name)

	return nil
}

func assertHasAttribute(t *testing.T, set attribute.Set, key, expected string) {
	t.Helper()

	value, ok := set.Value(attribute.Key(key))
	assert.True(t, ok, "attribute %s missing", key)
	assert.Equal(t, expected, value.AsString())
}
