package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
)

// FindByID loads the entity of type E with the given id. A missing record fails with
// ErrEntityNotFound. With deep set, related records are loaded into Record.Related first.
func FindByID[E domain.Persistable](ctx context.Context, repo *Repository, id domain.Identifier, deep bool) (E, error) {
	var zero E

	if id == nil || id.IsEmpty() {
		return zero, domain.ErrEmptyIdentifier
	}

	observer, ctx := repo.startOperation(ctx, operationFind, "", id.String())

	reg, err := repo.mappers.lookup(reflect.TypeFor[E]())
	if err != nil {
		return zero, observer.failure(errorTypeMapper, err, nil)
	}

	observer.setKind(reg.kind)

	start := time.Now()
	record, err := repo.store.Load(ctx, reg.kind, id.String())
	repo.logStoreCall(ctx, "load", time.Since(start), logAttrEntityKind, reg.kind, logAttrEntityID, id.String())

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return zero, observer.failure(errorTypeNotFound, errors.Join(ErrEntityNotFound, err), nil)
	case err != nil:
		return zero, observer.failure(errorTypeQuery, errors.Join(ErrQueryingRecordsFailed, err), nil)
	}

	entities, err := toEntities[E](ctx, repo, reg, []Record{record}, deep)
	if err != nil {
		return zero, observer.failure(errorTypeMapping, err, nil)
	}

	observer.success(map[string]string{spanAttrRecordCount: "1"})

	return entities[0], nil
}

// FindBy loads all entities of type E that match every filter of the builder.
func FindBy[E domain.Persistable](ctx context.Context, repo *Repository, filters filter.Builder, deep bool) ([]E, error) {
	observer, ctx := repo.startOperation(ctx, operationFind, "", "")

	reg, err := repo.mappers.lookup(reflect.TypeFor[E]())
	if err != nil {
		return nil, observer.failure(errorTypeMapper, err, nil)
	}

	observer.setKind(reg.kind)

	serialized, err := filters.ToArray()
	if err != nil {
		return nil, observer.failure(errorTypeQuery, errors.Join(ErrQueryingRecordsFailed, err), nil)
	}

	start := time.Now()
	records, err := repo.store.Find(ctx, reg.kind, serialized)
	repo.logStoreCall(ctx, "find", time.Since(start), logAttrEntityKind, reg.kind, logAttrRecordCount, len(records))

	if err != nil {
		return nil, observer.failure(errorTypeQuery, errors.Join(ErrQueryingRecordsFailed, err), nil)
	}

	entities, err := toEntities[E](ctx, repo, reg, records, deep)
	if err != nil {
		return nil, observer.failure(errorTypeMapping, err, nil)
	}

	repo.recordValue(ctx, metricRecordsLoaded, float64(len(records)), operationFind, reg.kind)
	observer.success(map[string]string{spanAttrRecordCount: strconv.Itoa(len(records))}, logAttrRecordCount, len(records))

	return entities, nil
}

// FindOneBy returns the first entity matching the filters or fails with ErrEntityNotFound.
func FindOneBy[E domain.Persistable](ctx context.Context, repo *Repository, filters filter.Builder, deep bool) (E, error) {
	var zero E

	entities, err := FindBy[E](ctx, repo, filters, deep)
	if err != nil {
		return zero, err
	}

	if len(entities) == 0 {
		return zero, ErrEntityNotFound
	}

	return entities[0], nil
}

// All loads every entity of type E.
func All[E domain.Persistable](ctx context.Context, repo *Repository, deep bool) ([]E, error) {
	return FindBy[E](ctx, repo, filter.Build(), deep)
}

// Exists reports whether a record for the entity of type E with the given id is stored.
func Exists[E domain.Persistable](ctx context.Context, repo *Repository, id domain.Identifier) (bool, error) {
	if id == nil || id.IsEmpty() {
		return false, domain.ErrEmptyIdentifier
	}

	reg, err := repo.mappers.lookup(reflect.TypeFor[E]())
	if err != nil {
		return false, err
	}

	_, err = repo.store.Load(ctx, reg.kind, id.String())

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return false, nil
	case err != nil:
		return false, errors.Join(ErrQueryingRecordsFailed, err)
	default:
		return true, nil
	}
}

// Count returns the number of stored entities of type E that match the filters.
func Count[E domain.Persistable](ctx context.Context, repo *Repository, filters filter.Builder) (int, error) {
	observer, ctx := repo.startOperation(ctx, operationCount, "", "")

	reg, err := repo.mappers.lookup(reflect.TypeFor[E]())
	if err != nil {
		return 0, observer.failure(errorTypeMapper, err, nil)
	}

	observer.setKind(reg.kind)

	serialized, err := filters.ToArray()
	if err != nil {
		return 0, observer.failure(errorTypeQuery, errors.Join(ErrQueryingRecordsFailed, err), nil)
	}

	count, err := repo.store.Count(ctx, reg.kind, serialized)
	if err != nil {
		return 0, observer.failure(errorTypeQuery, errors.Join(ErrQueryingRecordsFailed, err), nil)
	}

	observer.success(map[string]string{spanAttrRecordCount: strconv.Itoa(count)}, logAttrRecordCount, count)

	return count, nil
}

func toEntities[E domain.Persistable](
	ctx context.Context,
	repo *Repository,
	reg registration,
	records []Record,
	deep bool,
) ([]E, error) {

	entities := make([]E, 0, len(records))

	for _, record := range records {
		if deep {
			if err := repo.loadRelated(ctx, reg, &record); err != nil {
				return nil, err
			}
		}

		entity, err := reg.toEntity(record, deep)
		if err != nil {
			return nil, errors.Join(ErrMappingFailed, err)
		}

		typed, ok := entity.(E)
		if !ok {
			return nil, fmt.Errorf("%w: mapper for %s returned %T", ErrMappingFailed, reg.kind, entity)
		}

		entities = append(entities, typed)
	}

	return entities, nil
}

func (r *Repository) loadRelated(ctx context.Context, reg registration, record *Record) error {
	relations := reg.relationList()
	sort.Slice(relations, func(i, j int) bool { return relations[i].Name < relations[j].Name })

	record.Related = make(map[string][]Record, len(relations))

	for _, relation := range relations {
		serialized, err := filter.Build().Eq(relation.ForeignKey, record.ID).ToArray()
		if err != nil {
			return errors.Join(ErrQueryingRecordsFailed, err)
		}

		related, err := r.store.Find(ctx, relation.Kind, serialized)
		if err != nil {
			return errors.Join(ErrQueryingRecordsFailed, err)
		}

		record.Related[relation.Name] = related
	}

	return nil
}
