package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/testutil/testdoubles"
)

func Test_Repository_ReportsSuccessfulSaves(t *testing.T) {
	logger := testdoubles.NewLoggerSpy(true)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)

	f := newFixture(t,
		repository.WithContextualLogger(logger),
		repository.WithMetrics(metrics),
		repository.WithTracing(tracing),
	)

	f.storedArticle(t, "a-1", "Hello", 0)

	spans := tracing.SpansNamed("repository.save")
	require.Len(t, spans, 1)
	assert.True(t, spans[0].Finished)
	assert.Equal(t, "success", spans[0].Status)
	assert.Equal(t, "a-1", spans[0].StartAttributes["entity_id"])
	assert.Equal(t, "true", spans[0].EndAttributes["written"])
	assert.Equal(t, "1", spans[0].EndAttributes["event_count"])
	assert.Equal(t, articleKind, spans[0].SpanContext.Attributes()["entity_kind"])

	durations := metrics.RecordsFor("repository_operation_duration_seconds")
	require.Len(t, durations, 1)
	assert.True(t, durations[0].WithContext)
	assert.Equal(t, "success", durations[0].Labels["status"])
	assert.Equal(t, articleKind, durations[0].Labels["entity_kind"])

	published := metrics.RecordsFor("repository_events_published")
	require.Len(t, published, 1)
	assert.Equal(t, float64(1), published[0].Value)

	assert.True(t, logger.HasRecord(testdoubles.LevelInfo, "repository operation: save"))
	assert.True(t, logger.HasRecord(testdoubles.LevelInfo, "domain events published"))
	assert.True(t, logger.HasRecord(testdoubles.LevelDebug, "record store call: insert"))

	for _, record := range logger.Records() {
		assert.NotNil(t, record.Context)
	}
}

func Test_Repository_ReportsConflicts(t *testing.T) {
	logger := testdoubles.NewLoggerSpy(true)
	metrics := testdoubles.NewMetricsCollectorSpy(true)
	tracing := testdoubles.NewTracingCollectorSpy(true)

	f := newFixture(t,
		repository.WithLogger(logger),
		repository.WithMetrics(testdoubles.NewPlainMetricsCollectorSpy(metrics)),
		repository.WithTracing(tracing),
	)

	a := f.storedArticle(t, "a-1", "Hello", 0)
	stale, err := repository.FindByID[*article](t.Context(), f.repo, domain.StringID("a-1"), false)
	require.NoError(t, err)

	require.NoError(t, a.retitle("first"))
	_, err = f.repo.SaveEntity(t.Context(), a)
	require.NoError(t, err)

	logger.Reset()
	metrics.Reset()
	tracing.Reset()

	require.NoError(t, stale.retitle("second"))
	_, err = f.repo.SaveEntity(t.Context(), stale)
	require.ErrorIs(t, err, repository.ErrConcurrencyConflict)

	assert.True(t, metrics.HasRecord(testdoubles.MetricKindCounter, "repository_concurrency_conflicts_total"))
	assert.True(t, metrics.HasRecord(testdoubles.MetricKindCounter, "repository_operation_errors_total"))

	for _, record := range metrics.Records() {
		assert.False(t, record.WithContext)
	}

	errorCounters := metrics.RecordsFor("repository_operation_errors_total")
	require.Len(t, errorCounters, 1)
	assert.Equal(t, "concurrency_conflict", errorCounters[0].Labels["error_type"])

	conflictLogs := logger.RecordsAt(testdoubles.LevelInfo)
	require.NotEmpty(t, conflictLogs)
	assert.Equal(t, "concurrency conflict detected", conflictLogs[0].Message)

	expected, ok := conflictLogs[0].Arg("expected_version")
	require.True(t, ok)
	assert.Equal(t, uint(0), expected)

	actual, ok := conflictLogs[0].Arg("actual_version")
	require.True(t, ok)
	assert.Equal(t, uint(1), actual)

	assert.True(t, logger.HasRecord(testdoubles.LevelError, "repository operation failed: save"))
	for _, record := range logger.Records() {
		assert.Nil(t, record.Context)
	}

	spans := tracing.SpansNamed("repository.save")
	require.Len(t, spans, 1)
	assert.Equal(t, "error", spans[0].Status)
	assert.Equal(t, "0", spans[0].EndAttributes["expected_version"])
	assert.Equal(t, "1", spans[0].EndAttributes["actual_version"])
}

func Test_Repository_ReportsPublishingFailures(t *testing.T) {
	logger := testdoubles.NewLoggerSpy(true)
	f := newFixture(t, repository.WithLogger(logger))
	f.publisher.FailNext(assert.AnError)

	_, err := f.repo.SaveEntity(t.Context(), newArticle(t, "a-1", "Hello", 0, f.clock.now))
	require.ErrorIs(t, err, repository.ErrEventPublishingFailed)

	assert.True(t, logger.HasRecord(testdoubles.LevelWarn, "domain events stay uncommitted after publishing failed"))
	assert.True(t, logger.HasRecord(testdoubles.LevelError, "repository operation failed: save"))
}

func Test_Repository_SpiesThatDoNotRecordStayQuiet(t *testing.T) {
	logger := testdoubles.NewLoggerSpy(false)
	metrics := testdoubles.NewMetricsCollectorSpy(false)
	tracing := testdoubles.NewTracingCollectorSpy(false)

	f := newFixture(t,
		repository.WithLogger(logger),
		repository.WithMetrics(metrics),
		repository.WithTracing(tracing),
	)

	f.storedArticle(t, "a-1", "Hello", 0)

	assert.Empty(t, logger.Records())
	assert.Empty(t, metrics.Records())
	assert.Empty(t, tracing.Spans())
}
