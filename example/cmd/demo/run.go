package main

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
	"github.com/AntonStoeckl/ddd-toolkit-go/example/config"
	"github.com/AntonStoeckl/ddd-toolkit-go/example/customer"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/zapadapter"
)

func run(ctx context.Context, cfg config.Config, logger *zapadapter.Logger) (err error) {
	var cleanup closers
	defer cleanup.closeAll()

	store, err := openStore(ctx, cfg, logger, &cleanup)
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg.Redis, logger, &cleanup)
	if err != nil {
		return err
	}

	options := []repository.Option{repository.WithContextualLogger(logger)}

	if cfg.ObservabilityEnabled {
		tel := newTelemetry()
		options = append(options, tel.repositoryOptions()...)

		defer func() {
			err = errors.Join(err, tel.report(context.WithoutCancel(ctx), logger))
		}()
	}

	customers, err := customer.NewRepository(store, publisher, time.Now, options...)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "demo started", "store", cfg.Store, "redis_stream", cfg.Redis.Addr != "")

	return lifecycle(ctx, customers, logger)
}

// lifecycle registers a customer, changes it, provokes a concurrency conflict and deletes it again.
func lifecycle(ctx context.Context, customers *customer.Repository, logger *zapadapter.Logger) error {
	email, err := valueobject.ParseEmail("jane.doe@example.com")
	if err != nil {
		return err
	}

	jane, err := customer.Register(valueobject.MustNewUUID(), "Jane Doe", email, time.Now)
	if err != nil {
		return err
	}

	home, err := customer.NewAddress(valueobject.MustNewUUID(), jane.CustomerID(), "Unter den Linden 1", "10117", "Berlin", "DE", time.Now)
	if err != nil {
		return err
	}

	if err = jane.AddAddress(home); err != nil {
		return err
	}

	if err = customers.Save(ctx, jane); err != nil {
		return err
	}

	phone, err := valueobject.ParsePhonenumber("+49 30 123456")
	if err != nil {
		return err
	}

	if err = jane.ChangeContactData("Jane Roe", email, phone); err != nil {
		return err
	}

	if err = customers.Save(ctx, jane); err != nil {
		return err
	}

	if err = provokeConflict(ctx, customers, jane.CustomerID(), logger); err != nil {
		return err
	}

	count, err := customers.Count(ctx)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "customers stored", "count", count)

	current, err := customers.Get(ctx, jane.CustomerID())
	if err != nil {
		return err
	}

	if err = current.Unregister(); err != nil {
		return err
	}

	return customers.Delete(ctx, current)
}

// provokeConflict loads the same customer twice and saves both copies. The second save must
// be rejected because the first one already moved the stored version on.
func provokeConflict(ctx context.Context, customers *customer.Repository, id valueobject.UUID, logger *zapadapter.Logger) error {
	first, err := customers.Get(ctx, id)
	if err != nil {
		return err
	}

	second, err := customers.Get(ctx, id)
	if err != nil {
		return err
	}

	if err = first.ChangeContactData("Jane First", first.Email(), first.Phone()); err != nil {
		return err
	}

	if err = customers.Save(ctx, first); err != nil {
		return err
	}

	if err = second.ChangeContactData("Jane Second", second.Email(), second.Phone()); err != nil {
		return err
	}

	err = customers.Save(ctx, second)

	var conflict *repository.ConcurrencyConflictError
	if !errors.As(err, &conflict) {
		return errors.Join(errors.New("expected a concurrency conflict"), err)
	}

	logger.InfoContext(ctx, "second writer was rejected",
		"expected_version", conflict.Expected,
		"actual_version", conflict.Actual,
	)

	return nil
}
