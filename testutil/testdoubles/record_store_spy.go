package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// Store operation names as counted by RecordStoreSpy.
const (
	StoreOpLoad          = "load"
	StoreOpInsert        = "insert"
	StoreOpUpdate        = "update"
	StoreOpDelete        = "delete"
	StoreOpDeleteRelated = "delete_related"
	StoreOpFind          = "find"
	StoreOpCount         = "count"
)

// RecordStoreSpy wraps a RecordStore, counts calls per operation and allows injecting errors
// or running a hook right before a write reaches the wrapped store.
type RecordStoreSpy struct {
	inner       repository.RecordStore
	calls       map[string]int
	errors      map[string]error
	beforeWrite func(ctx context.Context, record repository.Record)
	mu          sync.Mutex
}

func NewRecordStoreSpy(inner repository.RecordStore) *RecordStoreSpy {
	return &RecordStoreSpy{
		inner:  inner,
		calls:  make(map[string]int),
		errors: make(map[string]error),
	}
}

// FailWith makes every subsequent call of the operation fail with err. A nil err clears it.
func (s *RecordStoreSpy) FailWith(operation string, err error) *RecordStoreSpy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.errors, operation)
		return s
	}

	s.errors[operation] = err

	return s
}

// BeforeWrite installs a hook that runs once, right before the next Insert or Update.
func (s *RecordStoreSpy) BeforeWrite(hook func(ctx context.Context, record repository.Record)) *RecordStoreSpy {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.beforeWrite = hook

	return s
}

// Calls returns how often the operation was invoked.
func (s *RecordStoreSpy) Calls(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[operation]
}

func (s *RecordStoreSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = make(map[string]int)
	s.errors = make(map[string]error)
	s.beforeWrite = nil
}

func (s *RecordStoreSpy) Load(ctx context.Context, kind, id string) (repository.Record, error) {
	if err := s.enter(StoreOpLoad); err != nil {
		return repository.Record{}, err
	}

	return s.inner.Load(ctx, kind, id)
}

func (s *RecordStoreSpy) Insert(ctx context.Context, record repository.Record) (repository.Record, error) {
	if err := s.enter(StoreOpInsert); err != nil {
		return repository.Record{}, err
	}

	s.runBeforeWrite(ctx, record)

	return s.inner.Insert(ctx, record)
}

func (s *RecordStoreSpy) Update(
	ctx context.Context,
	record repository.Record,
	expectedVersion uint,
) (repository.Record, error) {

	if err := s.enter(StoreOpUpdate); err != nil {
		return repository.Record{}, err
	}

	s.runBeforeWrite(ctx, record)

	return s.inner.Update(ctx, record, expectedVersion)
}

func (s *RecordStoreSpy) Delete(ctx context.Context, kind, id string) error {
	if err := s.enter(StoreOpDelete); err != nil {
		return err
	}

	return s.inner.Delete(ctx, kind, id)
}

func (s *RecordStoreSpy) DeleteRelated(
	ctx context.Context,
	relation repository.Relation,
	ownerID, relatedID string,
) error {

	if err := s.enter(StoreOpDeleteRelated); err != nil {
		return err
	}

	return s.inner.DeleteRelated(ctx, relation, ownerID, relatedID)
}

func (s *RecordStoreSpy) Find(
	ctx context.Context,
	kind string,
	filters []filter.Serialized,
) ([]repository.Record, error) {

	if err := s.enter(StoreOpFind); err != nil {
		return nil, err
	}

	return s.inner.Find(ctx, kind, filters)
}

func (s *RecordStoreSpy) Count(ctx context.Context, kind string, filters []filter.Serialized) (int, error) {
	if err := s.enter(StoreOpCount); err != nil {
		return 0, err
	}

	return s.inner.Count(ctx, kind, filters)
}

func (s *RecordStoreSpy) enter(operation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[operation]++

	return s.errors[operation]
}

func (s *RecordStoreSpy) runBeforeWrite(ctx context.Context, record repository.Record) {
	s.mu.Lock()
	hook := s.beforeWrite
	s.beforeWrite = nil
	s.mu.Unlock()

	if hook != nil {
		hook(ctx, record)
	}
}

var _ repository.RecordStore = (*RecordStoreSpy)(nil)
