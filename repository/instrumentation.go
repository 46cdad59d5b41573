package repository

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	metricOperationDuration    = "repository_operation_duration_seconds"
	metricOperationErrors      = "repository_operation_errors_total"
	metricConcurrencyConflicts = "repository_concurrency_conflicts_total"
	metricEventsPublished      = "repository_events_published"
	metricRecordsLoaded        = "repository_records_loaded"

	spanNamePrefix = "repository."

	operationSave          = "save"
	operationDelete        = "delete"
	operationDeleteRelated = "delete_related"
	operationFind          = "find"
	operationCount         = "count"
	operationPublish       = "publish"

	statusSuccess = "success"
	statusError   = "error"

	spanAttrOperation       = "operation"
	spanAttrEntityKind      = "entity_kind"
	spanAttrEntityID        = "entity_id"
	spanAttrErrorType       = "error_type"
	spanAttrEventCount      = "event_count"
	spanAttrRecordCount     = "record_count"
	spanAttrDurationMS      = "duration_ms"
	spanAttrExpectedVersion = "expected_version"
	spanAttrActualVersion   = "actual_version"
	spanAttrWritten         = "written"

	errorTypeMapper     = "mapper_not_registered"
	errorTypeValidation = "validation"
	errorTypeMapping    = "mapping"
	errorTypeLoad       = "load"
	errorTypeWrite      = "write"
	errorTypeConflict   = "concurrency_conflict"
	errorTypeDelete     = "delete"
	errorTypeRelation   = "relation"
	errorTypePublish    = "event_publishing"
	errorTypeNotFound   = "not_found"
	errorTypeQuery      = "query"

	logMsgOperation           = "repository operation: "
	logMsgOperationFailed     = "repository operation failed: "
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgEventsPublished     = "domain events published"
	logMsgEventsNotCommitted  = "domain events stay uncommitted after publishing failed"
	logMsgStoreCall           = "record store call: "
	logAttrError              = "error"
	logAttrEntityKind         = "entity_kind"
	logAttrEntityID           = "entity_id"
	logAttrVersion            = "version"
	logAttrExpectedVersion    = "expected_version"
	logAttrActualVersion      = "actual_version"
	logAttrEventCount         = "event_count"
	logAttrRecordCount        = "record_count"
	logAttrRelation           = "relation"
	logAttrRelatedID          = "related_id"
	logAttrWritten            = "written"
	logAttrDurationMS         = "duration_ms"
)

// operationObserver bundles span, metrics, and logging for one public Repository operation.
type operationObserver struct {
	repo      *Repository
	ctx       context.Context
	span      SpanContext
	operation string
	kind      string
	entityID  string
	start     time.Time
}

func (r *Repository) startOperation(
	ctx context.Context,
	operation string,
	kind string,
	entityID string,
) (*operationObserver, context.Context) {

	observer := &operationObserver{
		repo:      r,
		operation: operation,
		kind:      kind,
		entityID:  entityID,
		start:     time.Now(),
	}

	if r.tracingCollector != nil {
		attrs := map[string]string{
			spanAttrOperation:  operation,
			spanAttrEntityKind: kind,
		}

		if entityID != "" {
			attrs[spanAttrEntityID] = entityID
		}

		ctx, observer.span = r.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, attrs)
	}

	observer.ctx = ctx

	return observer, ctx
}

// setKind fills in the entity kind once it is resolved.
func (o *operationObserver) setKind(kind string) {
	o.kind = kind

	if o.span != nil {
		o.span.AddAttribute(spanAttrEntityKind, kind)
	}
}

func (o *operationObserver) success(attrs map[string]string, args ...any) {
	duration := time.Since(o.start)

	o.repo.recordDuration(o.ctx, duration, o.operation, o.kind, statusSuccess)
	o.finishSpan(statusSuccess, duration, attrs)

	logArgs := []any{logAttrEntityKind, o.kind, logAttrDurationMS, toMilliseconds(duration)}
	if o.entityID != "" {
		logArgs = append(logArgs, logAttrEntityID, o.entityID)
	}

	o.repo.logInfo(o.ctx, logMsgOperation+o.operation, append(logArgs, args...)...)
}

func (o *operationObserver) failure(errorType string, err error, attrs map[string]string) error {
	duration := time.Since(o.start)

	o.repo.recordDuration(o.ctx, duration, o.operation, o.kind, statusError)
	o.repo.incrementCounter(o.ctx, metricOperationErrors, map[string]string{
		spanAttrOperation:  o.operation,
		spanAttrEntityKind: o.kind,
		spanAttrErrorType:  errorType,
	})

	spanAttrs := map[string]string{spanAttrErrorType: errorType}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	o.finishSpan(statusError, duration, spanAttrs)

	o.repo.logError(o.ctx, logMsgOperationFailed+o.operation, err,
		logAttrEntityKind, o.kind,
		logAttrEntityID, o.entityID,
		spanAttrErrorType, errorType,
	)

	return err
}

func (o *operationObserver) conflict(conflict *ConcurrencyConflictError) error {
	o.repo.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{
		spanAttrOperation:  o.operation,
		spanAttrEntityKind: o.kind,
	})

	o.repo.logInfo(o.ctx, logMsgConcurrencyConflict,
		logAttrEntityKind, o.kind,
		logAttrEntityID, conflict.EntityID,
		logAttrExpectedVersion, conflict.Expected,
		logAttrActualVersion, conflict.Actual,
	)

	return o.failure(errorTypeConflict, conflict, map[string]string{
		spanAttrExpectedVersion: fmt.Sprintf("%d", conflict.Expected),
		spanAttrActualVersion:   fmt.Sprintf("%d", conflict.Actual),
	})
}

func (o *operationObserver) finishSpan(status string, duration time.Duration, attrs map[string]string) {
	if o.span == nil || o.repo.tracingCollector == nil {
		return
	}

	o.span.SetStatus(status)
	o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))

	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}

	o.repo.tracingCollector.FinishSpan(o.span, status, attrs)
}

func (r *Repository) recordDuration(ctx context.Context, duration time.Duration, operation, kind, status string) {
	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation:  operation,
		spanAttrEntityKind: kind,
		"status":           status,
	}

	if contextualCollector, ok := r.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	r.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

func (r *Repository) recordValue(ctx context.Context, metric string, value float64, operation, kind string) {
	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation:  operation,
		spanAttrEntityKind: kind,
	}

	if contextualCollector, ok := r.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	r.metricsCollector.RecordValue(metric, value, labels)
}

func (r *Repository) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if r.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := r.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	r.metricsCollector.IncrementCounter(metric, labels)
}

func (r *Repository) logStoreCall(ctx context.Context, call string, duration time.Duration, args ...any) {
	allArgs := append([]any{logAttrDurationMS, toMilliseconds(duration)}, args...)

	if r.logger != nil {
		r.logger.Debug(logMsgStoreCall+call, allArgs...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.DebugContext(ctx, logMsgStoreCall+call, allArgs...)
	}
}

func (r *Repository) logInfo(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (r *Repository) logWarn(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (r *Repository) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if r.logger != nil {
		r.logger.Error(msg, allArgs...)
	}

	if r.contextualLogger != nil {
		r.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
