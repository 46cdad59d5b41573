package repository

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

// Mapper converts between one concrete entity type and its Record.
//
// ToRecord only has to fill Data (and Related, if wanted). Kind, ID, Version and the
// timestamps are taken from the entity by the Repository.
// ToEntity receives a full Record; deep records carry their related records in Related.
type Mapper[E domain.Persistable] interface {
	Kind() string
	ToRecord(entity E) (Record, error)
	ToEntity(record Record, deep bool) (E, error)
}

type registration struct {
	kind      string
	relations map[string]Relation
	toRecord  func(domain.Persistable) (Record, error)
	toEntity  func(Record, bool) (domain.Persistable, error)
}

func (r registration) relationList() []Relation {
	relations := make([]Relation, 0, len(r.relations))
	for _, relation := range r.relations {
		relations = append(relations, relation)
	}

	return relations
}

// MapperRegistry resolves the Mapper for an entity type. It is filled once at startup.
type MapperRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]registration
}

func NewMapperRegistry() *MapperRegistry {
	return &MapperRegistry{byType: make(map[reflect.Type]registration)}
}

// RegisterMapper registers mapper for the entity type E together with the relations E owns.
func RegisterMapper[E domain.Persistable](registry *MapperRegistry, mapper Mapper[E], relations ...Relation) error {
	if mapper == nil {
		return ErrNilMapper
	}

	entityType := reflect.TypeFor[E]()

	reg := registration{
		kind:      mapper.Kind(),
		relations: make(map[string]Relation, len(relations)),
		toRecord: func(entity domain.Persistable) (Record, error) {
			typed, ok := entity.(E)
			if !ok {
				return Record{}, fmt.Errorf("%w: expected %s, got %T", ErrMappingFailed, entityType, entity)
			}

			return mapper.ToRecord(typed)
		},
		toEntity: func(record Record, deep bool) (domain.Persistable, error) {
			return mapper.ToEntity(record, deep)
		},
	}

	for _, relation := range relations {
		reg.relations[relation.Name] = relation
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.byType[entityType]; exists {
		return errors.Join(ErrMapperAlreadyExists, fmt.Errorf("entity type %s", entityType))
	}

	registry.byType[entityType] = reg

	return nil
}

// Kinds returns the record kinds of all registered mappers.
func (r *MapperRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.byType))
	for _, reg := range r.byType {
		kinds = append(kinds, reg.kind)
	}

	return kinds
}

func (r *MapperRegistry) lookup(entityType reflect.Type) (registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, found := r.byType[entityType]
	if !found {
		return registration{}, errors.Join(ErrMapperNotRegistered, fmt.Errorf("entity type %s", entityType))
	}

	return reg, nil
}

func (r *MapperRegistry) lookupEntity(entity domain.Persistable) (registration, error) {
	return r.lookup(reflect.TypeOf(entity))
}
