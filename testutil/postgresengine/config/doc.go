// Package config provides PostgreSQL connections for record store tests.
//
// The DSNs come from DDD_TEST_POSTGRES_DSN and DDD_TEST_POSTGRES_REPLICA_DSN and default to the
// databases of the local docker compose setup. All connection helpers ping the database and
// return an error instead of failing hard, so that tests can skip without a database.
package config
