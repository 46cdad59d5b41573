package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/postgresengine/internal/adapters"
)

const (
	defaultTableName           = "entity_records"
	logMsgBuildQueryFailed     = "failed to build query"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgDBExecFailed         = "database execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgVersionMismatch      = "conditional update matched no row"
	logMsgSQLExecuted          = "executed sql for: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrDurationMS          = "duration_ms"
	logAttrKind                = "kind"
	logAttrID                  = "id"
	logAttrExpectedVersion     = "expected_version"
	logActionLoad              = "load"
	logActionInsert            = "insert"
	logActionUpdate            = "update"
	logActionDelete            = "delete"
	logActionFind              = "find"
	logActionCount             = "count"
	logActionSchema            = "schema"
	colKind                    = "kind"
	colID                      = "id"
	colVersion                 = "version"
	colCreatedAt               = "created_at"
	colUpdatedAt               = "updated_at"
	colData                    = "data"
	dialectPostgres            = "postgres"
	castJsonb                  = "?::jsonb"
	errMsgRowsAffectedUnknown  = "rows affected unknown"
	errMsgNegativeVersionValue = "negative version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrEncodingDataFailed is returned when record data can not be encoded as JSON.
var ErrEncodingDataFailed = errors.New("encoding record data failed")

// RecordStore is a repository.RecordStore backed by a single PostgreSQL table.
type RecordStore struct {
	db               adapters.DBAdapter
	tableName        string
	logger           repository.Logger
	contextualLogger repository.ContextualLogger
}

// NewRecordStoreFromPGXPool creates a RecordStore using a pgx Pool with optional configuration.
func NewRecordStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, repository.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapter(db), options...)
}

// NewRecordStoreFromPGXPoolAndReplica creates a RecordStore that reads from replica under eventual consistency.
func NewRecordStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*RecordStore, error) {
	if db == nil || replica == nil {
		return nil, repository.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewRecordStoreFromSQLDB creates a RecordStore using a sql.DB with optional configuration.
func NewRecordStoreFromSQLDB(db *sql.DB, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, repository.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLAdapter(db), options...)
}

// NewRecordStoreFromSQLDBAndReplica creates a RecordStore that reads from replica under eventual consistency.
func NewRecordStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (*RecordStore, error) {
	if db == nil || replica == nil {
		return nil, repository.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewRecordStoreFromSQLX creates a RecordStore using a sqlx.DB with optional configuration.
func NewRecordStoreFromSQLX(db *sqlx.DB, options ...Option) (*RecordStore, error) {
	if db == nil {
		return nil, repository.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLXAdapter(db), options...)
}

// NewRecordStoreFromSQLXAndReplica creates a RecordStore that reads from replica under eventual consistency.
func NewRecordStoreFromSQLXAndReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*RecordStore, error) {
	if db == nil || replica == nil {
		return nil, repository.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLXAdapterWithReplica(db, replica), options...)
}

func newRecordStore(db adapters.DBAdapter, options ...Option) (*RecordStore, error) {
	store := &RecordStore{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// TableName returns the name of the table the store reads and writes.
func (s *RecordStore) TableName() string {
	return s.tableName
}

// EnsureSchema creates the records table and its kind index if they do not exist yet.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	for _, statement := range schemaStatements(s.tableName) {
		if _, err := s.exec(ctx, logActionSchema, statement); err != nil {
			return err
		}
	}

	return nil
}

// Load reads one record. Reads honour the consistency level of ctx.
func (s *RecordStore) Load(ctx context.Context, kind, id string) (repository.Record, error) {
	query, err := s.buildLoadQuery(kind, id)
	if err != nil {
		return repository.Record{}, s.buildFailed(ctx, err)
	}

	records, err := s.queryRecords(ctx, logActionLoad, query)
	if err != nil {
		return repository.Record{}, err
	}

	if len(records) == 0 {
		return repository.Record{}, fmt.Errorf("%w: %s %s", repository.ErrRecordNotFound, kind, id)
	}

	return records[0], nil
}

// Insert writes a new record and fails with repository.ErrRecordAlreadyExists for a taken (kind, id).
func (s *RecordStore) Insert(ctx context.Context, record repository.Record) (repository.Record, error) {
	query, err := s.buildInsertQuery(record)
	if err != nil {
		return repository.Record{}, s.buildFailed(ctx, err)
	}

	records, err := s.queryRecords(repository.WithStrongConsistency(ctx), logActionInsert, query)
	if err != nil {
		return repository.Record{}, err
	}

	if len(records) == 0 {
		return repository.Record{}, fmt.Errorf("%w: %s %s", repository.ErrRecordAlreadyExists, record.Kind, record.ID)
	}

	return records[0], nil
}

// Update overwrites a record only if its stored version equals expectedVersion.
func (s *RecordStore) Update(
	ctx context.Context,
	record repository.Record,
	expectedVersion uint,
) (repository.Record, error) {

	strongCtx := repository.WithStrongConsistency(ctx)

	query, err := s.buildUpdateQuery(record, expectedVersion)
	if err != nil {
		return repository.Record{}, s.buildFailed(ctx, err)
	}

	records, err := s.queryRecords(strongCtx, logActionUpdate, query)
	if err != nil {
		return repository.Record{}, err
	}

	if len(records) > 0 {
		return records[0], nil
	}

	current, err := s.Load(strongCtx, record.Kind, record.ID)
	if err != nil {
		return repository.Record{}, err
	}

	s.logDebug(ctx, logMsgVersionMismatch,
		logAttrKind, record.Kind,
		logAttrID, record.ID,
		logAttrExpectedVersion, expectedVersion,
	)

	return repository.Record{}, fmt.Errorf(
		"%w: %s %s is at version %d, expected %d",
		repository.ErrVersionMismatch,
		record.Kind,
		record.ID,
		current.Version,
		expectedVersion,
	)
}

func (s *RecordStore) Delete(ctx context.Context, kind, id string) error {
	query, err := s.buildDeleteQuery(kind, id)
	if err != nil {
		return s.buildFailed(ctx, err)
	}

	return s.execDelete(ctx, query, kind, id)
}

// DeleteRelated deletes relatedID only if its foreign key points to ownerID.
func (s *RecordStore) DeleteRelated(ctx context.Context, relation repository.Relation, ownerID, relatedID string) error {
	query, err := s.buildDeleteRelatedQuery(relation, ownerID, relatedID)
	if err != nil {
		return s.buildFailed(ctx, err)
	}

	return s.execDelete(ctx, query, relation.Kind, relatedID)
}

// Find returns matching records ordered by creation time and id.
func (s *RecordStore) Find(ctx context.Context, kind string, filters []filter.Serialized) ([]repository.Record, error) {
	query, err := s.buildFindQuery(kind, filters)
	if err != nil {
		return nil, s.buildFailed(ctx, err)
	}

	return s.queryRecords(ctx, logActionFind, query)
}

func (s *RecordStore) Count(ctx context.Context, kind string, filters []filter.Serialized) (int, error) {
	query, err := s.buildCountQuery(kind, filters)
	if err != nil {
		return 0, s.buildFailed(ctx, err)
	}

	rows, err := s.query(ctx, logActionCount, query)
	if err != nil {
		return 0, err
	}
	defer s.closeRows(ctx, rows)

	var count int64
	for rows.Next() {
		if err = rows.Scan(&count); err != nil {
			s.logError(ctx, logMsgScanRowFailed, err)
			return 0, errors.Join(repository.ErrScanningDBRowFailed, err)
		}
	}

	if err = rows.Err(); err != nil {
		return 0, errors.Join(repository.ErrQueryingRecordsFailed, err)
	}

	return int(count), nil
}

func (s *RecordStore) execDelete(ctx context.Context, query, kind, id string) error {
	result, err := s.exec(ctx, logActionDelete, query)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Join(repository.ErrQueryingRecordsFailed, errors.New(errMsgRowsAffectedUnknown), err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s %s", repository.ErrRecordNotFound, kind, id)
	}

	return nil
}

func (s *RecordStore) queryRecords(ctx context.Context, action, query string) ([]repository.Record, error) {
	rows, err := s.query(ctx, action, query)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(ctx, rows)

	records := make([]repository.Record, 0)

	for rows.Next() {
		record, scanErr := s.scanRecord(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(repository.ErrScanningDBRowFailed, scanErr)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(repository.ErrQueryingRecordsFailed, err)
	}

	return records, nil
}

func (s *RecordStore) scanRecord(rows adapters.DBRows) (repository.Record, error) {
	var (
		record    repository.Record
		version   int64
		updatedAt sql.NullTime
		data      []byte
	)

	if err := rows.Scan(&record.Kind, &record.ID, &version, &record.CreatedAt, &updatedAt, &data); err != nil {
		return repository.Record{}, err
	}

	if version < 0 {
		return repository.Record{}, errors.New(errMsgNegativeVersionValue)
	}

	record.Version = uint(version)
	record.CreatedAt = record.CreatedAt.UTC()

	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time.UTC()
	}

	record.Data = make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &record.Data); err != nil {
			return repository.Record{}, err
		}
	}

	return record, nil
}

func (s *RecordStore) query(ctx context.Context, action, query string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, query)
	s.logQueryWithDuration(ctx, query, action, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, query)
		return nil, errors.Join(repository.ErrQueryingRecordsFailed, err)
	}

	return rows, nil
}

func (s *RecordStore) exec(ctx context.Context, action, query string) (adapters.DBResult, error) {
	start := time.Now()
	result, err := s.db.Exec(ctx, query)
	s.logQueryWithDuration(ctx, query, action, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, query)
		return nil, errors.Join(repository.ErrQueryingRecordsFailed, err)
	}

	return result, nil
}

func (s *RecordStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

func (s *RecordStore) buildFailed(ctx context.Context, err error) error {
	s.logError(ctx, logMsgBuildQueryFailed, err)
	return err
}

func (s *RecordStore) logQueryWithDuration(ctx context.Context, query, action string, duration time.Duration) {
	s.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, query)
}

func (s *RecordStore) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
	}
}

func (s *RecordStore) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (s *RecordStore) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.logger != nil {
		s.logger.Error(msg, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

var _ repository.RecordStore = (*RecordStore)(nil)
