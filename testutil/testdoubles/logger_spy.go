package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// SpyLogRecord is one captured log call. Context is nil for calls through the plain Logger methods.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// Arg returns the value that follows key in the alternating key/value args.
func (r SpyLogRecord) Arg(key string) (any, bool) {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if r.Args[i] == key {
			return r.Args[i+1], true
		}
	}

	return nil, false
}

// LoggerSpy captures calls to both the plain and the contextual logger interfaces.
type LoggerSpy struct {
	records     []SpyLogRecord
	mu          sync.Mutex
	recordCalls bool
}

func NewLoggerSpy(recordCalls bool) *LoggerSpy {
	return &LoggerSpy{recordCalls: recordCalls}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(nil, LevelDebug, msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record(nil, LevelInfo, msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record(nil, LevelWarn, msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(nil, LevelError, msg, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelDebug, msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelInfo, msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelWarn, msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, LevelError, msg, args)
}

func (s *LoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Context: ctx,
	})
}

// Records returns a copy of all captured records in call order.
func (s *LoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

// RecordsAt returns the captured records of one level.
func (s *LoggerSpy) RecordsAt(level string) []SpyLogRecord {
	matching := make([]SpyLogRecord, 0)

	for _, record := range s.Records() {
		if record.Level == level {
			matching = append(matching, record)
		}
	}

	return matching
}

// HasRecord checks if a record with the level and message was captured.
func (s *LoggerSpy) HasRecord(level, message string) bool {
	for _, record := range s.RecordsAt(level) {
		if record.Message == message {
			return true
		}
	}

	return false
}

func (s *LoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = s.records[:0]
}

var (
	_ repository.Logger           = (*LoggerSpy)(nil)
	_ repository.ContextualLogger = (*LoggerSpy)(nil)
	_ eventbus.Logger             = (*LoggerSpy)(nil)
)
