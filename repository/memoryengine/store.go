package memoryengine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

const (
	logMsgRecordWritten  = "memory store: record written"
	logMsgRecordDeleted  = "memory store: record deleted"
	logMsgRecordsMatched = "memory store: records matched"
	logAttrKind          = "kind"
	logAttrID            = "id"
	logAttrVersion       = "version"
	logAttrCount         = "count"
)

var ErrNormalisingDataFailed = errors.New("normalising record data failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RecordStore is a repository.RecordStore that keeps all records in memory.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]map[string]repository.Record
	logger  repository.Logger
}

// Option defines a functional option for configuring a RecordStore.
type Option func(*RecordStore) error

// WithLogger sets a logger that receives every write and query at debug level.
func WithLogger(logger repository.Logger) Option {
	return func(s *RecordStore) error {
		s.logger = logger
		return nil
	}
}

// NewRecordStore creates an empty RecordStore.
func NewRecordStore(options ...Option) (*RecordStore, error) {
	store := &RecordStore{records: make(map[string]map[string]repository.Record)}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func (s *RecordStore) Load(_ context.Context, kind, id string) (repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, found := s.records[kind][id]
	if !found {
		return repository.Record{}, notFound(kind, id)
	}

	return record.Clone(), nil
}

func (s *RecordStore) Insert(_ context.Context, record repository.Record) (repository.Record, error) {
	normalised, err := normalise(record)
	if err != nil {
		return repository.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.Kind][record.ID]; exists {
		return repository.Record{}, fmt.Errorf("%w: %s %s", repository.ErrRecordAlreadyExists, record.Kind, record.ID)
	}

	s.put(normalised)

	return normalised.Clone(), nil
}

func (s *RecordStore) Update(_ context.Context, record repository.Record, expectedVersion uint) (repository.Record, error) {
	normalised, err := normalise(record)
	if err != nil {
		return repository.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, found := s.records[record.Kind][record.ID]
	if !found {
		return repository.Record{}, notFound(record.Kind, record.ID)
	}

	if stored.Version != expectedVersion {
		return repository.Record{}, fmt.Errorf(
			"%w: %s %s is at version %d, expected %d",
			repository.ErrVersionMismatch,
			record.Kind,
			record.ID,
			stored.Version,
			expectedVersion,
		)
	}

	normalised.CreatedAt = stored.CreatedAt
	s.put(normalised)

	return normalised.Clone(), nil
}

func (s *RecordStore) Delete(_ context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.records[kind][id]; !found {
		return notFound(kind, id)
	}

	delete(s.records[kind], id)
	s.debug(logMsgRecordDeleted, logAttrKind, kind, logAttrID, id)

	return nil
}

func (s *RecordStore) DeleteRelated(_ context.Context, relation repository.Relation, ownerID, relatedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	related, found := s.records[relation.Kind][relatedID]
	if !found || fmt.Sprint(related.Data[relation.ForeignKey]) != ownerID {
		return notFound(relation.Kind, relatedID)
	}

	delete(s.records[relation.Kind], relatedID)
	s.debug(logMsgRecordDeleted, logAttrKind, relation.Kind, logAttrID, relatedID)

	return nil
}

// Find returns matching records ordered by creation time and id.
func (s *RecordStore) Find(_ context.Context, kind string, filters []filter.Serialized) ([]repository.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching, err := s.match(kind, filters)
	if err != nil {
		return nil, err
	}

	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.Before(matching[j].CreatedAt)
		}

		return matching[i].ID < matching[j].ID
	})

	for i := range matching {
		matching[i] = matching[i].Clone()
	}

	s.debug(logMsgRecordsMatched, logAttrKind, kind, logAttrCount, len(matching))

	return matching, nil
}

func (s *RecordStore) Count(_ context.Context, kind string, filters []filter.Serialized) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching, err := s.match(kind, filters)
	if err != nil {
		return 0, err
	}

	return len(matching), nil
}

// Len returns the number of stored records of a kind.
func (s *RecordStore) Len(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records[kind])
}

func (s *RecordStore) match(kind string, filters []filter.Serialized) ([]repository.Record, error) {
	matching := make([]repository.Record, 0)

	for _, record := range s.records[kind] {
		ok, err := matchesAll(record, filters)
		if err != nil {
			return nil, err
		}

		if ok {
			matching = append(matching, record)
		}
	}

	return matching, nil
}

func (s *RecordStore) put(record repository.Record) {
	if s.records[record.Kind] == nil {
		s.records[record.Kind] = make(map[string]repository.Record)
	}

	s.records[record.Kind][record.ID] = record
	s.debug(logMsgRecordWritten, logAttrKind, record.Kind, logAttrID, record.ID, logAttrVersion, record.Version)
}

func (s *RecordStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// normalise drops Related and round-trips Data through JSON.
func normalise(record repository.Record) (repository.Record, error) {
	normalised := record
	normalised.Related = nil
	normalised.Data = make(map[string]any)

	if len(record.Data) == 0 {
		return normalised, nil
	}

	encoded, err := json.Marshal(record.Data)
	if err != nil {
		return repository.Record{}, errors.Join(ErrNormalisingDataFailed, err)
	}

	if err = json.Unmarshal(encoded, &normalised.Data); err != nil {
		return repository.Record{}, errors.Join(ErrNormalisingDataFailed, err)
	}

	return normalised, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", repository.ErrRecordNotFound, kind, id)
}

var _ repository.RecordStore = (*RecordStore)(nil)
