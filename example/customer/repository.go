package customer

import (
	"context"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// Repository persists customers together with their addresses.
type Repository struct {
	repo *repository.Repository
}

// NewRepository wires a generic repository.Repository with the customer mappers.
func NewRepository(
	store repository.RecordStore,
	publisher repository.EventPublisher,
	clock func() time.Time,
	options ...repository.Option,
) (*Repository, error) {

	mappers, err := NewMapperRegistry(clock)
	if err != nil {
		return nil, err
	}

	repo, err := repository.New(store, mappers, publisher, options...)
	if err != nil {
		return nil, err
	}

	return &Repository{repo: repo}, nil
}

// Save writes the customer and then each of its addresses. The customer's pending events are
// published only after all writes succeeded, a failed write leaves them pending. If publishing
// fails, everything stays written and ErrEventPublishingFailed is returned.
func (r *Repository) Save(ctx context.Context, c *Customer) error {
	if _, err := r.repo.SaveEntityWithoutPublishing(ctx, c); err != nil {
		return err
	}

	for _, address := range c.addresses {
		if _, err := r.repo.SaveEntity(ctx, address); err != nil {
			return err
		}
	}

	return r.publishPending(ctx, c)
}

// Get loads a customer with its addresses.
func (r *Repository) Get(ctx context.Context, id valueobject.UUID) (*Customer, error) {
	return repository.FindByID[*Customer](ctx, r.repo, id, true)
}

// FindByEmail fails with repository.ErrEntityNotFound if nobody registered with email.
func (r *Repository) FindByEmail(ctx context.Context, email valueobject.Email) (*Customer, error) {
	return repository.FindOneBy[*Customer](ctx, r.repo, filter.Build().Eq(fieldEmail, email.String()), true)
}

// RegisteredBetween returns the customers created within [from, to], oldest first, without addresses.
func (r *Repository) RegisteredBetween(ctx context.Context, from, to time.Time) ([]*Customer, error) {
	filters := filter.Build().Between(
		repository.TargetCreatedAt,
		from.UTC().Format(time.RFC3339Nano),
		to.UTC().Format(time.RFC3339Nano),
	)

	return repository.FindBy[*Customer](ctx, r.repo, filters, false)
}

// AddressesIn returns all addresses stored for the given city.
func (r *Repository) AddressesIn(ctx context.Context, city string) ([]*Address, error) {
	return repository.FindBy[*Address](ctx, r.repo, filter.Build().Eq(fieldCity, city), false)
}

func (r *Repository) Exists(ctx context.Context, id valueobject.UUID) (bool, error) {
	return repository.Exists[*Customer](ctx, r.repo, id)
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	return repository.Count[*Customer](ctx, r.repo, filter.Build())
}

// RemoveAddress detaches the address from the customer and writes the customer, then deletes
// the address record and publishes CustomerAddressRemoved. A conflicting customer version
// stops before anything is deleted.
func (r *Repository) RemoveAddress(ctx context.Context, c *Customer, addressID valueobject.UUID) error {
	if _, err := c.RemoveAddress(addressID); err != nil {
		return err
	}

	if _, err := r.repo.SaveEntityWithoutPublishing(ctx, c); err != nil {
		return err
	}

	return r.repo.DeleteRelatedEntity(ctx, c, AddressesRelation, addressID)
}

// Delete removes the addresses and then the customer, publishing the customer's pending events
// last. A customer touched since it was persisted, e.g. by Unregister, is written first, so a
// concurrent change stops the deletion before anything is removed.
func (r *Repository) Delete(ctx context.Context, c *Customer) error {
	if c.Version() != c.PersistedVersion() {
		if _, err := r.repo.SaveEntityWithoutPublishing(ctx, c); err != nil {
			return err
		}
	}

	addresses := make([]domain.Persistable, 0, len(c.addresses))
	for _, address := range c.addresses {
		addresses = append(addresses, address)
	}

	if err := r.repo.DeleteEntities(ctx, addresses...); err != nil {
		return err
	}

	return r.repo.DeleteEntity(ctx, c)
}

// PublishPending retries publishing after Save or Delete returned repository.ErrEventPublishingFailed.
func (r *Repository) PublishPending(ctx context.Context, c *Customer) error {
	return r.publishPending(ctx, c)
}

func (r *Repository) publishPending(ctx context.Context, c *Customer) error {
	if !c.HasUncommittedEvents() {
		return nil
	}

	return r.repo.PublishUncommittedEvents(ctx, c)
}
