package postgreswrapper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository/postgresengine"
	"github.com/AntonStoeckl/ddd-toolkit-go/testutil/postgresengine/config"
)

const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"

	connectTimeout = 2 * time.Second
)

// Wrapper abstracts over the adapter types.
type Wrapper interface {
	RecordStore() *postgresengine.RecordStore
	AdapterType() string
	Close()
}

type wrapper struct {
	store       *postgresengine.RecordStore
	adapterType string
	closeFn     func()
}

func (w wrapper) RecordStore() *postgresengine.RecordStore {
	return w.store
}

func (w wrapper) AdapterType() string {
	return w.adapterType
}

func (w wrapper) Close() {
	w.closeFn()
}

// New connects to the test database, makes sure the schema exists and returns the wrapper.
// It skips the test if the database is not reachable.
func New(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE"))
	dsn := config.PostgresTestDSN()

	var (
		w   wrapper
		err error
	)

	switch adapterType {
	case typePGXPool, "":
		w, err = newPGXPoolWrapper(ctx, dsn, options)
		w.adapterType = typePGXPool
	case typeSQLDB:
		w, err = newSQLDBWrapper(ctx, dsn, options)
		w.adapterType = typeSQLDB
	case typeSQLXDB:
		w, err = newSQLXWrapper(ctx, dsn, options)
		w.adapterType = typeSQLXDB
	default:
		t.Fatalf("unsupported ADAPTER_TYPE: %s", adapterType)
	}

	if err != nil {
		t.Skipf("postgres not reachable via %s: %v", adapterType, err)
	}

	if err = w.store.EnsureSchema(ctx); err != nil {
		w.Close()
		t.Fatalf("creating schema failed: %v", err)
	}

	t.Cleanup(w.Close)

	return w
}

func newPGXPoolWrapper(ctx context.Context, dsn string, options []postgresengine.Option) (wrapper, error) {
	pool, err := config.PostgresPGXPool(ctx, dsn)
	if err != nil {
		return wrapper{}, err
	}

	store, err := postgresengine.NewRecordStoreFromPGXPool(pool, options...)
	if err != nil {
		pool.Close()
		return wrapper{}, fmt.Errorf("creating record store: %w", err)
	}

	return wrapper{store: store, closeFn: pool.Close}, nil
}

func newSQLDBWrapper(ctx context.Context, dsn string, options []postgresengine.Option) (wrapper, error) {
	db, err := config.PostgresSQLDB(ctx, dsn)
	if err != nil {
		return wrapper{}, err
	}

	store, err := postgresengine.NewRecordStoreFromSQLDB(db, options...)
	if err != nil {
		_ = db.Close()
		return wrapper{}, fmt.Errorf("creating record store: %w", err)
	}

	return wrapper{store: store, closeFn: func() { _ = db.Close() }}, nil
}

func newSQLXWrapper(ctx context.Context, dsn string, options []postgresengine.Option) (wrapper, error) {
	db, err := config.PostgresSQLX(ctx, dsn)
	if err != nil {
		return wrapper{}, err
	}

	store, err := postgresengine.NewRecordStoreFromSQLX(db, options...)
	if err != nil {
		_ = db.Close()
		return wrapper{}, fmt.Errorf("creating record store: %w", err)
	}

	return wrapper{store: store, closeFn: func() { _ = db.Close() }}, nil
}
