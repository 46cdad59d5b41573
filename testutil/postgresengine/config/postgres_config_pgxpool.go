package config

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPGXPool connects a pgxpool.Pool to dsn and pings it.
func PostgresPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	const maxConnections = int32(10)
	const minConnections = int32(1)
	const maxConnLifetime = time.Hour
	const maxConnIdleTime = time.Minute * 5
	const connectTimeout = time.Second * 2

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = maxConnections
	poolConfig.MinConns = minConnections
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
