package testdoubles

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// SpanContextSpy records status and attributes set on a span.
type SpanContextSpy struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

func (c *SpanContextSpy) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = status
}

func (c *SpanContextSpy) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}

	c.attributes[key] = value
}

func (c *SpanContextSpy) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

func (c *SpanContextSpy) Attributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return maps.Clone(c.attributes)
}

// SpySpanRecord is one started span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Finished        bool
	Status          string
	EndAttributes   map[string]string
	SpanContext     *SpanContextSpy
}

// TracingCollectorSpy captures started and finished spans.
type TracingCollectorSpy struct {
	spans       []*SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{recordCalls: recordCalls}
}

func (s *TracingCollectorSpy) StartSpan(
	ctx context.Context,
	name string,
	attrs map[string]string,
) (context.Context, repository.SpanContext) {

	if !s.recordCalls {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpanContextSpy{}
	s.spans = append(s.spans, &SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx repository.SpanContext, status string, attrs map[string]string) {
	if !s.recordCalls || spanCtx == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, span := range s.spans {
		if repository.SpanContext(span.SpanContext) == spanCtx {
			span.Finished = true
			span.Status = status
			span.EndAttributes = maps.Clone(attrs)
		}
	}
}

// Spans returns copies of all captured spans in start order.
func (s *TracingCollectorSpy) Spans() []SpySpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpySpanRecord, 0, len(s.spans))
	for _, span := range s.spans {
		spans = append(spans, *span)
	}

	return spans
}

// SpansNamed returns the captured spans with the given name.
func (s *TracingCollectorSpy) SpansNamed(name string) []SpySpanRecord {
	matching := make([]SpySpanRecord, 0)

	for _, span := range s.Spans() {
		if span.Name == name {
			matching = append(matching, span)
		}
	}

	return matching
}

func (s *TracingCollectorSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spans = s.spans[:0]
}

var _ repository.TracingCollector = (*TracingCollectorSpy)(nil)
