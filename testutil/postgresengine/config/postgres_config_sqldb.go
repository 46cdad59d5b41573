package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLDB opens a *sql.DB on dsn with the lib/pq driver and pings it.
func PostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	const maxOpenConnections = 10
	const maxIdleConnections = 2
	const maxConnLifetime = time.Hour

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConnections)
	db.SetMaxIdleConns(maxIdleConnections)
	db.SetConnMaxLifetime(maxConnLifetime)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close() // the ping error is the interesting one
		return nil, err
	}

	return db, nil
}
