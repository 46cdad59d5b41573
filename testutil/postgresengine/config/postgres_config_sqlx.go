package config

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLX opens a *sqlx.DB on dsn with the lib/pq driver and pings it.
func PostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	const maxOpenConnections = 10
	const maxIdleConnections = 2
	const maxConnLifetime = time.Hour

	db, err := sqlx.Open("postgres", dsn)
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
