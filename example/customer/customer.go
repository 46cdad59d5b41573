package customer

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
)

var (
	ErrAddressNotFound      = errors.New("address not found")
	ErrAddressAlreadyExists = errors.New("address already exists")
	ErrForeignAddress       = errors.New("address belongs to another customer")
)

// Customer is the aggregate root of the customer context.
type Customer struct {
	domain.Aggregate
	clock     func() time.Time
	name      string
	email     valueobject.Email
	phone     valueobject.Phonenumber
	addresses []*Address
}

var customerFields = domain.NewFieldRegistry(
	domain.Field("name",
		func(c *Customer) string { return c.name },
		func(c *Customer, v string) { c.name = v }),
	domain.Field("email",
		func(c *Customer) valueobject.Email { return c.email },
		func(c *Customer, v valueobject.Email) { c.email = v }),
	domain.Field("phone",
		func(c *Customer) valueobject.Phonenumber { return c.phone },
		func(c *Customer, v valueobject.Phonenumber) { c.phone = v }),
)

// Register creates a new customer and records CustomerRegistered. A nil clock means time.Now.
func Register(id valueobject.UUID, name string, email valueobject.Email, clock func() time.Time) (*Customer, error) {
	clock = clockOrDefault(clock)

	aggregate, err := domain.NewAggregate(id, domain.WithClock(clock))
	if err != nil {
		return nil, err
	}

	c := &Customer{Aggregate: aggregate, clock: clock, name: strings.TrimSpace(name), email: email}

	if err = c.Validate(); err != nil {
		return nil, err
	}

	if err = c.RecordEvent(BuildCustomerRegistered(id, c.name, email, c.CreatedAt())); err != nil {
		return nil, err
	}

	return c, nil
}

// ChangeContactData changes name, email and phone in one step. Nothing is recorded if
// all values are unchanged.
func (c *Customer) ChangeContactData(name string, email valueobject.Email, phone valueobject.Phonenumber) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name", "must not be empty")
	}

	return c.UpdateAggregateRoot(
		customerFields.Bind(c),
		domain.Changes{"name": name, "email": email, "phone": phone},
		domain.ChangesetEventFactory(CustomerContactDataChangedEventName, domain.WithOccurredOn(c.clock())),
	)
}

// AddAddress attaches a new address and touches the customer, so concurrent changes to the
// addresses of one customer conflict. The address is written when the customer is saved.
func (c *Customer) AddAddress(address *Address) error {
	if address == nil {
		return domain.NewValidationError("address", "must not be nil")
	}

	if !address.customerID.Equals(c.customerID()) {
		return ErrForeignAddress
	}

	if c.addressIndex(address.addressID()) >= 0 {
		return errors.Join(ErrAddressAlreadyExists, errors.New("address "+address.ID().String()))
	}

	event, err := buildAddressAdded(c.customerID(), address, c.clock())
	if err != nil {
		return err
	}

	c.addresses = append(c.addresses, address)
	c.Touch()

	return c.RecordEvent(event)
}

// RemoveAddress detaches the address, touches the customer and records CustomerAddressRemoved.
// Deleting the stored address record is up to Repository.RemoveAddress.
func (c *Customer) RemoveAddress(addressID valueobject.UUID) (*Address, error) {
	index := c.addressIndex(addressID)
	if index < 0 {
		return nil, errors.Join(ErrAddressNotFound, errors.New("address "+addressID.String()))
	}

	event, err := buildAddressRemoved(c.customerID(), addressID, c.clock())
	if err != nil {
		return nil, err
	}

	removed := c.addresses[index]
	c.addresses = slices.Delete(c.addresses, index, index+1)
	c.Touch()

	return removed, c.RecordEvent(event)
}

// Unregister touches the customer and records CustomerUnregistered. Repository.Delete removes
// the stored records and publishes it.
func (c *Customer) Unregister() error {
	event, err := buildUnregistered(c.customerID(), c.email, c.clock())
	if err != nil {
		return err
	}

	c.Touch()

	return c.RecordEvent(event)
}

func (c *Customer) Validate() error {
	if c.name == "" {
		return domain.NewValidationError("name", "must not be empty")
	}

	if c.email.String() == "" {
		return domain.NewValidationError("email", "must not be empty")
	}

	return nil
}

func (c *Customer) CustomerID() valueobject.UUID {
	return c.customerID()
}

func (c *Customer) Name() string {
	return c.name
}

func (c *Customer) Email() valueobject.Email {
	return c.email
}

// Phone returns the zero Phonenumber if none is known.
func (c *Customer) Phone() valueobject.Phonenumber {
	return c.phone
}

// Addresses returns the addresses in the order they were added or loaded.
func (c *Customer) Addresses() []*Address {
	return slices.Clone(c.addresses)
}

func (c *Customer) customerID() valueobject.UUID {
	id, _ := c.ID().(valueobject.UUID)
	return id
}

func (c *Customer) addressIndex(addressID valueobject.UUID) int {
	return slices.IndexFunc(c.addresses, func(a *Address) bool {
		return a.addressID().Equals(addressID)
	})
}

func clockOrDefault(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}

	return clock
}
