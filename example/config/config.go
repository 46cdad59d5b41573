// Package config loads the settings of the demo from the environment and an optional .env file.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"

	EnvStore                = "DDD_STORE"
	EnvPostgresDSN          = "DDD_POSTGRES_DSN"
	EnvPostgresReplicaDSN   = "DDD_POSTGRES_REPLICA_DSN"
	EnvPostgresDriver       = "DDD_POSTGRES_DRIVER"
	EnvPostgresTable        = "DDD_POSTGRES_TABLE"
	EnvRedisAddr            = "DDD_REDIS_ADDR"
	EnvRedisStream          = "DDD_REDIS_STREAM"
	EnvRedisMaxLen          = "DDD_REDIS_MAXLEN"
	EnvLogLevel             = "DDD_LOG_LEVEL"
	EnvLogEncoding          = "DDD_LOG_ENCODING"
	EnvObservabilityEnabled = "DDD_OBSERVABILITY_ENABLED"
)

var (
	ErrUnknownStore          = errors.New("unknown store")
	ErrUnknownPostgresDriver = errors.New("unknown postgres driver")
	ErrMissingPostgresDSN    = errors.New("postgres store needs a dsn")
	ErrInvalidNumber         = errors.New("invalid number")
	ErrInvalidBool           = errors.New("invalid bool")
)

// Config holds everything the demo needs to wire the toolkit.
type Config struct {
	Store                string
	Postgres             PostgresConfig
	Redis                RedisConfig
	Logger               LoggerConfig
	ObservabilityEnabled bool
}

type PostgresConfig struct {
	DSN        string
	ReplicaDSN string
	Driver     string
	Table      string
}

// RedisConfig is empty if events should only be dispatched in-process.
type RedisConfig struct {
	Addr   string
	Stream string
	MaxLen int64
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads the given .env files, ".env" if none are given, and then the environment.
// Missing files are ignored and variables that are already set win over file contents.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	maxLen, err := getInt64(EnvRedisMaxLen, 0)
	if err != nil {
		return Config{}, err
	}

	observabilityEnabled, err := getBool(EnvObservabilityEnabled, false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Store: strings.ToLower(getString(EnvStore, StoreMemory)),
		Postgres: PostgresConfig{
			DSN:        os.Getenv(EnvPostgresDSN),
			ReplicaDSN: os.Getenv(EnvPostgresReplicaDSN),
			Driver:     strings.ToLower(getString(EnvPostgresDriver, DriverPGX)),
			Table:      getString(EnvPostgresTable, "entity_records"),
		},
		Redis: RedisConfig{
			Addr:   os.Getenv(EnvRedisAddr),
			Stream: getString(EnvRedisStream, "domain-events"),
			MaxLen: maxLen,
		},
		Logger: LoggerConfig{
			Level:    getString(EnvLogLevel, "info"),
			Encoding: getString(EnvLogEncoding, "json"),
		},
		ObservabilityEnabled: observabilityEnabled,
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case StoreMemory:
		return nil
	case StorePostgres:
	default:
		return errors.Join(ErrUnknownStore, errors.New(c.Store))
	}

	if c.Postgres.DSN == "" {
		return ErrMissingPostgresDSN
	}

	switch c.Postgres.Driver {
	case DriverPGX, DriverSQL, DriverSQLX:
		return nil
	default:
		return errors.Join(ErrUnknownPostgresDriver, errors.New(c.Postgres.Driver))
	}
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getInt64(key string, fallback int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidNumber, errors.New(key+"="+val))
	}

	return parsed, nil
}

func getBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.Join(ErrInvalidBool, errors.New(key+"="+val))
	}

	return parsed, nil
}
