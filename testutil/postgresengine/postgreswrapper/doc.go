// Package postgreswrapper creates a postgresengine.RecordStore for tests on top of the adapter
// selected with the ADAPTER_TYPE environment variable (pgx.pool, sql.db or sqlx.db).
package postgreswrapper
