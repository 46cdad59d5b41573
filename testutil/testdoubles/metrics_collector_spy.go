package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

const (
	MetricKindDuration = "duration"
	MetricKindCounter  = "counter"
	MetricKindValue    = "value"
)

// SpyMetricRecord is one captured metrics call.
type SpyMetricRecord struct {
	Kind        string
	Metric      string
	Duration    time.Duration
	Value       float64
	Labels      map[string]string
	WithContext bool
}

// MetricsCollectorSpy captures calls to the plain and the contextual metrics interfaces.
type MetricsCollectorSpy struct {
	records     []SpyMetricRecord
	mu          sync.Mutex
	recordCalls bool
}

func NewMetricsCollectorSpy(recordCalls bool) *MetricsCollectorSpy {
	return &MetricsCollectorSpy{recordCalls: recordCalls}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels})
}

func (s *MetricsCollectorSpy) RecordDurationContext(
	_ context.Context,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	s.record(SpyMetricRecord{Kind: MetricKindDuration, Metric: metric, Duration: duration, Labels: labels, WithContext: true})
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.record(SpyMetricRecord{Kind: MetricKindCounter, Metric: metric, Labels: labels, WithContext: true})
}

func (s *MetricsCollectorSpy) RecordValueContext(
	_ context.Context,
	metric string,
	value float64,
	labels map[string]string,
) {
	s.record(SpyMetricRecord{Kind: MetricKindValue, Metric: metric, Value: value, Labels: labels, WithContext: true})
}

func (s *MetricsCollectorSpy) record(record SpyMetricRecord) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.Labels = maps.Clone(record.Labels)
	s.records = append(s.records, record)
}

// Records returns a copy of all captured records in call order.
func (s *MetricsCollectorSpy) Records() []SpyMetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyMetricRecord(nil), s.records...)
}

// RecordsFor returns the captured records of one metric.
func (s *MetricsCollectorSpy) RecordsFor(metric string) []SpyMetricRecord {
	matching := make([]SpyMetricRecord, 0)

	for _, record := range s.Records() {
		if record.Metric == metric {
			matching = append(matching, record)
		}
	}

	return matching
}

func (s *MetricsCollectorSpy) HasRecord(kind, metric string) bool {
	for _, record := range s.RecordsFor(metric) {
		if record.Kind == kind {
			return true
		}
	}

	return false
}

func (s *MetricsCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

// PlainMetricsCollectorSpy hides the contextual methods, to exercise the fallback path.
type PlainMetricsCollectorSpy struct {
	spy *MetricsCollectorSpy
}

func NewPlainMetricsCollectorSpy(spy *MetricsCollectorSpy) PlainMetricsCollectorSpy {
	return PlainMetricsCollectorSpy{spy: spy}
}

func (p PlainMetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	p.spy.RecordDuration(metric, duration, labels)
}

func (p PlainMetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	p.spy.IncrementCounter(metric, labels)
}

func (p PlainMetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	p.spy.RecordValue(metric, value, labels)
}

var (
	_ repository.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
	_ repository.MetricsCollector           = PlainMetricsCollectorSpy{}
)
