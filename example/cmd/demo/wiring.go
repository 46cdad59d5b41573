package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus"
	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus/redisstream"
	"github.com/AntonStoeckl/ddd-toolkit-go/example/config"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/memoryengine"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/oteladapters"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/postgresengine"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/zapadapter"
)

const instrumentationName = "github.com/AntonStoeckl/ddd-toolkit-go/example/cmd/demo"

// closers run in reverse order of registration.
type closers []func()

func (c *closers) add(closer func()) {
	*c = append(*c, closer)
}

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zapadapter.Logger, cleanup *closers) (repository.RecordStore, error) {
	if cfg.Store == config.StoreMemory {
		return memoryengine.NewRecordStore(memoryengine.WithLogger(logger))
	}

	options := []postgresengine.Option{
		postgresengine.WithTableName(cfg.Postgres.Table),
		postgresengine.WithContextualLogger(logger),
	}

	var (
		store *postgresengine.RecordStore
		err   error
	)

	switch cfg.Postgres.Driver {
	case config.DriverSQL:
		store, err = openSQLStore(cfg.Postgres, options, cleanup)
	case config.DriverSQLX:
		store, err = openSQLXStore(ctx, cfg.Postgres, options, cleanup)
	default:
		store, err = openPGXStore(ctx, cfg.Postgres, options, cleanup)
	}

	if err != nil {
		return nil, err
	}

	if err = store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func openPGXStore(
	ctx context.Context,
	cfg config.PostgresConfig,
	options []postgresengine.Option,
	cleanup *closers,
) (*postgresengine.RecordStore, error) {

	primary, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	cleanup.add(primary.Close)

	if cfg.ReplicaDSN == "" {
		return postgresengine.NewRecordStoreFromPGXPool(primary, options...)
	}

	replica, err := pgxpool.New(ctx, cfg.ReplicaDSN)
	if err != nil {
		return nil, err
	}
	cleanup.add(replica.Close)

	return postgresengine.NewRecordStoreFromPGXPoolAndReplica(primary, replica, options...)
}

func openSQLStore(
	cfg config.PostgresConfig,
	options []postgresengine.Option,
	cleanup *closers,
) (*postgresengine.RecordStore, error) {

	primary, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() { _ = primary.Close() })

	if cfg.ReplicaDSN == "" {
		return postgresengine.NewRecordStoreFromSQLDB(primary, options...)
	}

	replica, err := sql.Open("postgres", cfg.ReplicaDSN)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() { _ = replica.Close() })

	return postgresengine.NewRecordStoreFromSQLDBAndReplica(primary, replica, options...)
}

func openSQLXStore(
	ctx context.Context,
	cfg config.PostgresConfig,
	options []postgresengine.Option,
	cleanup *closers,
) (*postgresengine.RecordStore, error) {

	primary, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() { _ = primary.Close() })

	if cfg.ReplicaDSN == "" {
		return postgresengine.NewRecordStoreFromSQLX(primary, options...)
	}

	replica, err := sqlx.ConnectContext(ctx, "postgres", cfg.ReplicaDSN)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() { _ = replica.Close() })

	return postgresengine.NewRecordStoreFromSQLXAndReplica(primary, replica, options...)
}

// newPublisher dispatches to an in-process bus that logs every event and, if an address is
// configured, to a Redis stream.
func newPublisher(cfg config.RedisConfig, logger *zapadapter.Logger, cleanup *closers) (*eventbus.Publisher, error) {
	bus := eventbus.NewBus()

	err := bus.SubscribeAll(func(ctx context.Context, event domain.DomainEvent) error {
		logger.InfoContext(ctx, "domain event dispatched",
			"event_name", event.EventName(),
			"aggregate_id", event.AggregateID().String(),
		)

		return nil
	})
	if err != nil {
		return nil, err
	}

	dispatchers := eventbus.Fanout{bus}

	if cfg.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
		cleanup.add(func() { _ = client.Close() })

		stream, err := redisstream.NewDispatcher(client,
			redisstream.WithStreamName(cfg.Stream),
			redisstream.WithMaxLen(cfg.MaxLen),
		)
		if err != nil {
			return nil, err
		}

		dispatchers = append(dispatchers, stream)
	}

	return eventbus.NewPublisher(dispatchers, eventbus.WithLogger(logger))
}

// telemetry keeps spans and metrics in memory and logs a summary when the demo ends.
type telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	spans          *tracetest.InMemoryExporter
	metrics        *sdkmetric.ManualReader
}

func newTelemetry() *telemetry {
	spans := tracetest.NewInMemoryExporter()
	metrics := sdkmetric.NewManualReader()

	return &telemetry{
		tracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSyncer(spans)),
		meterProvider:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(metrics)),
		spans:          spans,
		metrics:        metrics,
	}
}

func (t *telemetry) repositoryOptions() []repository.Option {
	return []repository.Option{
		repository.WithTracing(oteladapters.NewTracingCollector(t.tracerProvider.Tracer(instrumentationName))),
		repository.WithMetrics(oteladapters.NewMetricsCollector(t.meterProvider.Meter(instrumentationName))),
	}
}

func (t *telemetry) report(ctx context.Context, logger *zapadapter.Logger) error {
	var collected metricdata.ResourceMetrics
	if err := t.metrics.Collect(ctx, &collected); err != nil {
		return err
	}

	var metricNames []string
	for _, scopeMetrics := range collected.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			metricNames = append(metricNames, m.Name)
		}
	}

	spanCounts := map[string]int{}
	for _, span := range t.spans.GetSpans() {
		spanCounts[span.Name]++
	}

	logger.InfoContext(ctx, "telemetry summary", "spans", spanCounts, "metrics", metricNames)

	return errors.Join(t.tracerProvider.Shutdown(ctx), t.meterProvider.Shutdown(ctx))
}
