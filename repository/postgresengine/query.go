package postgresengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

var recordColumns = []any{colKind, colID, colVersion, colCreatedAt, colUpdatedAt, colData}

func (s *RecordStore) buildLoadQuery(kind, id string) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(recordColumns...).
		Where(goqu.Ex{colKind: kind, colID: id})

	return toSQL(selectStmt)
}

func (s *RecordStore) buildInsertQuery(record repository.Record) (string, error) {
	data, err := encodeData(record.Data)
	if err != nil {
		return "", err
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colKind:      record.Kind,
			colID:        record.ID,
			colVersion:   record.Version,
			colCreatedAt: record.CreatedAt.UTC(),
			colUpdatedAt: nullableTime(record.UpdatedAt),
			colData:      goqu.L(castJsonb, data),
		}).
		OnConflict(goqu.DoNothing()).
		Returning(recordColumns...)

	return toSQL(insertStmt)
}

// buildUpdateQuery keeps created_at as stored and only matches the row at expectedVersion.
func (s *RecordStore) buildUpdateQuery(record repository.Record, expectedVersion uint) (string, error) {
	data, err := encodeData(record.Data)
	if err != nil {
		return "", err
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.tableName).
		Set(goqu.Record{
			colVersion:   record.Version,
			colUpdatedAt: nullableTime(record.UpdatedAt),
			colData:      goqu.L(castJsonb, data),
		}).
		Where(
			goqu.Ex{colKind: record.Kind, colID: record.ID},
			goqu.C(colVersion).Eq(expectedVersion),
		).
		Returning(recordColumns...)

	return toSQL(updateStmt)
}

func (s *RecordStore) buildDeleteQuery(kind, id string) (string, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Where(goqu.Ex{colKind: kind, colID: id})

	return toSQL(deleteStmt)
}

func (s *RecordStore) buildDeleteRelatedQuery(relation repository.Relation, ownerID, relatedID string) (string, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Where(
			goqu.Ex{colKind: relation.Kind, colID: relatedID},
			goqu.L(dataText, relation.ForeignKey).Eq(ownerID),
		)

	return toSQL(deleteStmt)
}

func (s *RecordStore) buildFindQuery(kind string, filters []filter.Serialized) (string, error) {
	where, err := s.whereClause(kind, filters)
	if err != nil {
		return "", err
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(recordColumns...).
		Where(where...).
		Order(goqu.C(colCreatedAt).Asc(), goqu.C(colID).Asc())

	return toSQL(selectStmt)
}

func (s *RecordStore) buildCountQuery(kind string, filters []filter.Serialized) (string, error) {
	where, err := s.whereClause(kind, filters)
	if err != nil {
		return "", err
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...)

	return toSQL(selectStmt)
}

func (s *RecordStore) whereClause(kind string, filters []filter.Serialized) ([]exp.Expression, error) {
	expressions, err := whereExpressions(filters)
	if err != nil {
		return nil, errors.Join(repository.ErrBuildingQueryFailed, err)
	}

	return append([]exp.Expression{goqu.Ex{colKind: kind}}, expressions...), nil
}

func schemaStatements(tableName string) []string {
	return []string{
		fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (
    %s TEXT NOT NULL,
    %s TEXT NOT NULL,
    %s BIGINT NOT NULL,
    %s TIMESTAMPTZ NOT NULL,
    %s TIMESTAMPTZ NULL,
    %s JSONB NOT NULL DEFAULT '{}'::jsonb,
    PRIMARY KEY (%s, %s)
)`,
			tableName, colKind, colID, colVersion, colCreatedAt, colUpdatedAt, colData, colKind, colID,
		),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %q ON %q (%s, %s, %s)`,
			tableName+"_kind_created_at_idx", tableName, colKind, colCreatedAt, colID,
		),
	}
}

type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

func toSQL(builder sqlBuilder) (string, error) {
	query, _, err := builder.ToSQL()
	if err != nil {
		return "", errors.Join(repository.ErrBuildingQueryFailed, err)
	}

	return query, nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		return "{}", nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", errors.Join(repository.ErrBuildingQueryFailed, ErrEncodingDataFailed, err)
	}

	return string(encoded), nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t.UTC()
}
