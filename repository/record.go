package repository

import (
	"context"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
)

// Filter targets that address the bookkeeping columns of a Record instead of its Data.
const (
	TargetID        = "id"
	TargetVersion   = "version"
	TargetCreatedAt = "created_at"
	TargetUpdatedAt = "updated_at"
)

// Record is the storage form of an entity: bookkeeping columns plus a flat data document.
// A zero UpdatedAt is stored as NULL.
type Record struct {
	Kind      string
	ID        string
	Version   uint
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      map[string]any
	Related   map[string][]Record
}

// State returns the bookkeeping part of the record for the given typed identifier.
func (r Record) State(id domain.Identifier) domain.State {
	return domain.State{
		ID:        id,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	cloned := r
	cloned.Data = cloneData(r.Data)

	if r.Related != nil {
		cloned.Related = make(map[string][]Record, len(r.Related))
		for name, records := range r.Related {
			related := make([]Record, 0, len(records))
			for _, record := range records {
				related = append(related, record.Clone())
			}
			cloned.Related[name] = related
		}
	}

	return cloned
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}

	cloned := make(map[string]any, len(data))
	for key, value := range data {
		cloned[key] = cloneValue(value)
	}

	return cloned
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneData(typed)
	case []any:
		cloned := make([]any, len(typed))
		for i, element := range typed {
			cloned[i] = cloneValue(element)
		}
		return cloned
	default:
		return value
	}
}

// Relation declares a one-to-many relation from an owner kind to records of Kind whose
// Data[ForeignKey] holds the owner id.
type Relation struct {
	Name       string
	Kind       string
	ForeignKey string
}

// RecordStore persists records. Implementations must be safe for concurrent use.
//
// Update only succeeds if the stored version equals expectedVersion and fails with
// ErrVersionMismatch otherwise. Insert fails with ErrRecordAlreadyExists for a taken (kind, id).
// Load and Delete fail with ErrRecordNotFound.
type RecordStore interface {
	Load(ctx context.Context, kind, id string) (Record, error)
	Insert(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record, expectedVersion uint) (Record, error)
	Delete(ctx context.Context, kind, id string) error
	DeleteRelated(ctx context.Context, relation Relation, ownerID, relatedID string) error
	Find(ctx context.Context, kind string, filters []filter.Serialized) ([]Record, error)
	Count(ctx context.Context, kind string, filters []filter.Serialized) (int, error)
}

// EventPublisher hands committed domain events to the outside world.
type EventPublisher interface {
	PublishEvents(ctx context.Context, events []domain.DomainEvent) error
}
