package repository

import (
	"errors"
	"fmt"
)

// Repository level errors.
var (
	ErrConcurrencyConflict   = errors.New("concurrency conflict")
	ErrPersistenceFailed     = errors.New("persisting entity failed")
	ErrDeletionFailed        = errors.New("deleting entity failed")
	ErrRelatedDeletionFailed = errors.New("deleting related entity failed")
	ErrEntityNotFound        = errors.New("entity not found")
	ErrMapperNotRegistered   = errors.New("no mapper registered for entity type")
	ErrMapperAlreadyExists   = errors.New("mapper already registered for entity type")
	ErrNilMapper             = errors.New("nil mapper supplied")
	ErrNilMapperRegistry     = errors.New("nil mapper registry supplied")
	ErrNilRecordStore        = errors.New("nil record store supplied")
	ErrNilEventPublisher     = errors.New("nil event publisher supplied")
	ErrNilEntity             = errors.New("nil entity supplied")
	ErrValidationFailed      = errors.New("entity validation failed")
	ErrEventPublishingFailed = errors.New("publishing domain events failed")
	ErrMappingFailed         = errors.New("mapping between entity and record failed")
)

// Store level errors, shared by all RecordStore implementations.
var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrRecordAlreadyExists   = errors.New("record already exists")
	ErrVersionMismatch       = errors.New("record version does not match the expected version")
	ErrUnknownRelation       = errors.New("unknown relation")
	ErrNilDatabaseConnection = errors.New("nil database connection supplied")
	ErrEmptyTableName        = errors.New("empty table name supplied")
	ErrBuildingQueryFailed   = errors.New("building query failed")
	ErrQueryingRecordsFailed = errors.New("querying records failed")
	ErrScanningDBRowFailed   = errors.New("scanning db row failed")
	ErrUnsupportedFilter     = errors.New("unsupported filter")
)

// ConcurrencyConflictError reports that the stored version of an entity moved on since it was loaded.
type ConcurrencyConflictError struct {
	EntityID string
	Expected uint
	Actual   uint
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf(
		"entity %s was modified by another process: expected version %d, actual version %d",
		e.EntityID,
		e.Expected,
		e.Actual,
	)
}

// Is makes errors.Is(err, ErrConcurrencyConflict) match.
func (e *ConcurrencyConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}
