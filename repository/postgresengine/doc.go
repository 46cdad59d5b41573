// Package postgresengine provides a PostgreSQL implementation of repository.RecordStore.
//
// All entities live in one table (default "entity_records"), keyed by (kind, id):
//
//	CREATE TABLE entity_records (
//	    kind       TEXT        NOT NULL,
//	    id         TEXT        NOT NULL,
//	    version    BIGINT      NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NULL,
//	    data       JSONB       NOT NULL,
//	    PRIMARY KEY (kind, id)
//	);
//
// Writes are single statements: inserts use ON CONFLICT DO NOTHING, updates are conditional on
// the expected version, so a concurrent writer can never be overwritten silently.
// Filters on data keys compile to data->>'key', cast to numeric for comparisons.
//
// The store can be created from a pgxpool.Pool, a sql.DB or a sqlx.DB, each optionally with a
// replica that serves reads made with repository.WithEventualConsistency.
package postgresengine
