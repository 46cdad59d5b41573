package repository

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

// Repository persists entities through a RecordStore with optimistic locking and publishes the
// domain events of aggregates after every successful write.
type Repository struct {
	store            RecordStore
	mappers          *MapperRegistry
	publisher        EventPublisher
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// New creates a Repository. The publisher is mandatory, events are never dropped silently.
func New(store RecordStore, mappers *MapperRegistry, publisher EventPublisher, options ...Option) (*Repository, error) {
	if store == nil {
		return nil, ErrNilRecordStore
	}

	if mappers == nil {
		return nil, ErrNilMapperRegistry
	}

	if publisher == nil {
		return nil, ErrNilEventPublisher
	}

	repo := &Repository{
		store:     store,
		mappers:   mappers,
		publisher: publisher,
	}

	for _, option := range options {
		if err := option(repo); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

// SaveEntity writes the entity if it is dirty, touched since it was last persisted, or not
// stored yet, and returns the stored record.
//
// For an entity that is already stored, its PersistedVersion must equal the stored version,
// otherwise a *ConcurrencyConflictError is returned and nothing is written. After the write,
// createdAt, updatedAt and version are synced back from the stored record, and the pending
// events of an aggregate are published and committed. If publishing fails, the record stays
// written, ErrEventPublishingFailed is returned, and the events stay uncommitted.
func (r *Repository) SaveEntity(ctx context.Context, entity domain.Persistable) (Record, error) {
	return r.save(ctx, entity, true)
}

// SaveEntityWithoutPublishing works like SaveEntity but leaves the pending events of an
// aggregate uncommitted. Use it when more records must be written before the events may be
// published with PublishUncommittedEvents.
func (r *Repository) SaveEntityWithoutPublishing(ctx context.Context, entity domain.Persistable) (Record, error) {
	return r.save(ctx, entity, false)
}

func (r *Repository) save(ctx context.Context, entity domain.Persistable, publish bool) (Record, error) {
	if isNilEntity(entity) {
		return Record{}, ErrNilEntity
	}

	entityID := entity.ID().String()
	observer, ctx := r.startOperation(ctx, operationSave, "", entityID)

	reg, err := r.mappers.lookupEntity(entity)
	if err != nil {
		return Record{}, observer.failure(errorTypeMapper, err, nil)
	}

	observer.setKind(reg.kind)

	if validatable, ok := entity.(domain.Validatable); ok {
		if err = validatable.Validate(); err != nil {
			return Record{}, observer.failure(errorTypeValidation, errors.Join(ErrValidationFailed, err), nil)
		}
	}

	record, err := r.toRecord(reg, entity)
	if err != nil {
		return Record{}, observer.failure(errorTypeMapping, errors.Join(ErrPersistenceFailed, err), nil)
	}

	stored, exists, err := r.loadExisting(ctx, reg.kind, entityID)
	if err != nil {
		return Record{}, observer.failure(errorTypeLoad, errors.Join(ErrPersistenceFailed, err), nil)
	}

	events := pendingEvents(entity)
	written := false

	if needsWrite(entity, exists) {
		stored, err = r.write(ctx, entity, record, stored, exists)
		if err != nil {
			var conflict *ConcurrencyConflictError
			if errors.As(err, &conflict) {
				return Record{}, observer.conflict(conflict)
			}

			return Record{}, observer.failure(errorTypeWrite, err, nil)
		}

		written = true
	}

	entity.Hydrate(stored.State(entity.ID()))

	if written && publish {
		if err = r.publishAndCommit(ctx, entity, events, operationSave, reg.kind); err != nil {
			return stored.Clone(), observer.failure(errorTypePublish, err, nil)
		}
	}

	observer.success(
		map[string]string{
			spanAttrWritten:    strconv.FormatBool(written),
			spanAttrEventCount: strconv.Itoa(len(events)),
		},
		logAttrVersion, stored.Version,
		logAttrWritten, written,
	)

	return stored.Clone(), nil
}

// DeleteEntity deletes the stored record of the entity and then publishes its pending events.
func (r *Repository) DeleteEntity(ctx context.Context, entity domain.Persistable) error {
	if isNilEntity(entity) {
		return ErrNilEntity
	}

	entityID := entity.ID().String()
	observer, ctx := r.startOperation(ctx, operationDelete, "", entityID)

	reg, err := r.mappers.lookupEntity(entity)
	if err != nil {
		return observer.failure(errorTypeMapper, err, nil)
	}

	observer.setKind(reg.kind)

	events := pendingEvents(entity)

	start := time.Now()
	err = r.store.Delete(ctx, reg.kind, entityID)
	r.logStoreCall(ctx, "delete", time.Since(start), logAttrEntityKind, reg.kind, logAttrEntityID, entityID)

	if err != nil {
		return observer.failure(errorTypeDelete, errors.Join(ErrDeletionFailed, err), nil)
	}

	if err = r.publishAndCommit(ctx, entity, events, operationDelete, reg.kind); err != nil {
		return observer.failure(errorTypePublish, err, nil)
	}

	observer.success(map[string]string{spanAttrEventCount: strconv.Itoa(len(events))})

	return nil
}

// DeleteEntities deletes the entities one after another and stops at the first failure.
func (r *Repository) DeleteEntities(ctx context.Context, entities ...domain.Persistable) error {
	for _, entity := range entities {
		if err := r.DeleteEntity(ctx, entity); err != nil {
			return err
		}
	}

	return nil
}

// DeleteRelatedEntity deletes the record relatedID of the named relation that belongs to
// entity and then publishes the pending events of entity.
func (r *Repository) DeleteRelatedEntity(
	ctx context.Context,
	entity domain.Persistable,
	relationName string,
	relatedID domain.Identifier,
) error {

	if isNilEntity(entity) {
		return ErrNilEntity
	}

	entityID := entity.ID().String()
	observer, ctx := r.startOperation(ctx, operationDeleteRelated, "", entityID)

	reg, err := r.mappers.lookupEntity(entity)
	if err != nil {
		return observer.failure(errorTypeMapper, err, nil)
	}

	observer.setKind(reg.kind)

	relation, found := reg.relations[relationName]
	if !found {
		return observer.failure(
			errorTypeRelation,
			errors.Join(ErrRelatedDeletionFailed, ErrUnknownRelation, errors.New("relation "+relationName)),
			nil,
		)
	}

	if relatedID == nil || relatedID.IsEmpty() {
		return observer.failure(errorTypeRelation, errors.Join(ErrRelatedDeletionFailed, domain.ErrEmptyIdentifier), nil)
	}

	events := pendingEvents(entity)

	start := time.Now()
	err = r.store.DeleteRelated(ctx, relation, entityID, relatedID.String())
	r.logStoreCall(ctx, "delete related", time.Since(start),
		logAttrRelation, relation.Name,
		logAttrEntityID, entityID,
		logAttrRelatedID, relatedID.String(),
	)

	if err != nil {
		return observer.failure(errorTypeDelete, errors.Join(ErrRelatedDeletionFailed, err), nil)
	}

	if err = r.publishAndCommit(ctx, entity, events, operationDeleteRelated, reg.kind); err != nil {
		return observer.failure(errorTypePublish, err, nil)
	}

	observer.success(nil, logAttrRelation, relation.Name, logAttrRelatedID, relatedID.String())

	return nil
}

// PublishUncommittedEvents publishes and commits the pending events of an aggregate without
// writing it, e.g. to retry after SaveEntity returned ErrEventPublishingFailed.
func (r *Repository) PublishUncommittedEvents(ctx context.Context, recorder domain.EventRecorder) error {
	if isNilEntity(recorder) {
		return ErrNilEntity
	}

	observer, ctx := r.startOperation(ctx, operationPublish, "", "")

	events := recorder.UncommittedEvents()

	if persistable, ok := recorder.(domain.Persistable); ok {
		observer.entityID = persistable.ID().String()

		if reg, err := r.mappers.lookupEntity(persistable); err == nil {
			observer.setKind(reg.kind)
		}
	}

	if err := r.publishAndCommit(ctx, recorder, events, operationPublish, observer.kind); err != nil {
		return observer.failure(errorTypePublish, err, nil)
	}

	observer.success(map[string]string{spanAttrEventCount: strconv.Itoa(len(events))})

	return nil
}

func (r *Repository) toRecord(reg registration, entity domain.Persistable) (Record, error) {
	record, err := reg.toRecord(entity)
	if err != nil {
		return Record{}, errors.Join(ErrMappingFailed, err)
	}

	state := entity.State()
	record.Kind = reg.kind
	record.ID = state.ID.String()
	record.Version = state.Version
	record.CreatedAt = state.CreatedAt
	record.UpdatedAt = state.UpdatedAt

	if record.Data == nil {
		record.Data = make(map[string]any)
	}

	return record, nil
}

func (r *Repository) loadExisting(ctx context.Context, kind, id string) (Record, bool, error) {
	start := time.Now()
	record, err := r.store.Load(WithStrongConsistency(ctx), kind, id)
	r.logStoreCall(ctx, "load", time.Since(start), logAttrEntityKind, kind, logAttrEntityID, id)

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return Record{}, false, nil
	case err != nil:
		return Record{}, false, err
	default:
		return record, true, nil
	}
}

func (r *Repository) write(
	ctx context.Context,
	entity domain.Persistable,
	record Record,
	stored Record,
	exists bool,
) (Record, error) {

	expected := entity.PersistedVersion()

	if exists && expected != stored.Version {
		return Record{}, &ConcurrencyConflictError{EntityID: record.ID, Expected: expected, Actual: stored.Version}
	}

	var (
		written Record
		err     error
	)

	start := time.Now()

	if exists {
		written, err = r.store.Update(ctx, record, expected)
		r.logStoreCall(ctx, "update", time.Since(start),
			logAttrEntityKind, record.Kind,
			logAttrEntityID, record.ID,
			logAttrExpectedVersion, expected,
			logAttrVersion, record.Version,
		)
	} else {
		written, err = r.store.Insert(ctx, record)
		r.logStoreCall(ctx, "insert", time.Since(start),
			logAttrEntityKind, record.Kind,
			logAttrEntityID, record.ID,
			logAttrVersion, record.Version,
		)
	}

	if err != nil {
		return Record{}, r.translateWriteError(ctx, record, expected, err)
	}

	return written, nil
}

// translateWriteError turns a lost race against a concurrent writer into a conflict that
// carries the version that writer stored.
func (r *Repository) translateWriteError(ctx context.Context, record Record, expected uint, err error) error {
	if !errors.Is(err, ErrVersionMismatch) && !errors.Is(err, ErrRecordAlreadyExists) {
		return errors.Join(ErrPersistenceFailed, err)
	}

	current, loadErr := r.store.Load(WithStrongConsistency(ctx), record.Kind, record.ID)
	if loadErr != nil {
		return errors.Join(ErrPersistenceFailed, err, loadErr)
	}

	return &ConcurrencyConflictError{EntityID: record.ID, Expected: expected, Actual: current.Version}
}

func (r *Repository) publishAndCommit(
	ctx context.Context,
	entity any,
	events []domain.DomainEvent,
	operation string,
	kind string,
) error {

	recorder, ok := entity.(domain.EventRecorder)
	if !ok || len(events) == 0 {
		return nil
	}

	if err := r.publisher.PublishEvents(ctx, events); err != nil {
		r.logWarn(ctx, logMsgEventsNotCommitted, logAttrEntityKind, kind, logAttrEventCount, len(events))
		return errors.Join(ErrEventPublishingFailed, err)
	}

	recorder.MarkEventsAsCommitted()

	r.recordValue(ctx, metricEventsPublished, float64(len(events)), operation, kind)
	r.logInfo(ctx, logMsgEventsPublished, logAttrEntityKind, kind, logAttrEventCount, len(events))

	return nil
}

func needsWrite(entity domain.Persistable, exists bool) bool {
	return !exists || entity.IsDirty() || entity.Version() != entity.PersistedVersion()
}

func pendingEvents(entity domain.Persistable) []domain.DomainEvent {
	recorder, ok := entity.(domain.EventRecorder)
	if !ok {
		return nil
	}

	return recorder.UncommittedEvents()
}

func isNilEntity(entity any) bool {
	if entity == nil {
		return true
	}

	value := reflect.ValueOf(entity)

	return value.Kind() == reflect.Pointer && value.IsNil()
}
