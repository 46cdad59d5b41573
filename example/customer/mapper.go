package customer

import (
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

const (
	Kind              = "customer"
	AddressKind       = "address"
	AddressesRelation = "addresses"

	fieldName       = "name"
	fieldEmail      = "email"
	fieldPhone      = "phone"
	fieldCustomerID = "customer_id"
	fieldStreet     = "street"
	fieldPostalCode = "postal_code"
	fieldCity       = "city"
	fieldCountry    = "country"
)

// Addresses is the relation from a customer to its address records.
var Addresses = repository.Relation{Name: AddressesRelation, Kind: AddressKind, ForeignKey: fieldCustomerID}

// NewMapperRegistry registers the customer and address mappers. clock is handed to the
// rebuilt entities; nil means time.Now.
func NewMapperRegistry(clock func() time.Time) (*repository.MapperRegistry, error) {
	registry := repository.NewMapperRegistry()
	clock = clockOrDefault(clock)

	if err := repository.RegisterMapper[*Customer](registry, customerMapper{clock: clock}, Addresses); err != nil {
		return nil, err
	}

	if err := repository.RegisterMapper[*Address](registry, addressMapper{clock: clock}); err != nil {
		return nil, err
	}

	return registry, nil
}

type customerMapper struct {
	clock func() time.Time
}

func (customerMapper) Kind() string {
	return Kind
}

func (customerMapper) ToRecord(c *Customer) (repository.Record, error) {
	return repository.Record{
		Data: map[string]any{
			fieldName:  c.name,
			fieldEmail: c.email.String(),
			fieldPhone: c.phone.String(),
		},
	}, nil
}

func (m customerMapper) ToEntity(record repository.Record, deep bool) (*Customer, error) {
	id, err := valueobject.ParseUUID(record.ID)
	if err != nil {
		return nil, err
	}

	aggregate, err := domain.AggregateFromState(record.State(id), domain.WithClock(m.clock))
	if err != nil {
		return nil, err
	}

	email, err := valueobject.ParseEmail(stringFrom(record.Data, fieldEmail))
	if err != nil {
		return nil, err
	}

	var phone valueobject.Phonenumber
	if raw := stringFrom(record.Data, fieldPhone); raw != "" {
		if phone, err = valueobject.ParsePhonenumber(raw); err != nil {
			return nil, err
		}
	}

	c := &Customer{
		Aggregate: aggregate,
		clock:     m.clock,
		name:      stringFrom(record.Data, fieldName),
		email:     email,
		phone:     phone,
	}

	if !deep {
		return c, nil
	}

	addresses := addressMapper{clock: m.clock}
	for _, related := range record.Related[AddressesRelation] {
		address, err := addresses.ToEntity(related, false)
		if err != nil {
			return nil, err
		}

		c.addresses = append(c.addresses, address)
	}

	return c, nil
}

type addressMapper struct {
	clock func() time.Time
}

func (addressMapper) Kind() string {
	return AddressKind
}

func (addressMapper) ToRecord(a *Address) (repository.Record, error) {
	return repository.Record{
		Data: map[string]any{
			fieldCustomerID: a.customerID.String(),
			fieldStreet:     a.street,
			fieldPostalCode: a.postalCode,
			fieldCity:       a.city,
			fieldCountry:    a.country,
		},
	}, nil
}

func (m addressMapper) ToEntity(record repository.Record, _ bool) (*Address, error) {
	id, err := valueobject.ParseUUID(record.ID)
	if err != nil {
		return nil, err
	}

	customerID, err := valueobject.ParseUUID(stringFrom(record.Data, fieldCustomerID))
	if err != nil {
		return nil, err
	}

	entity, err := domain.EntityFromState(record.State(id), domain.WithClock(m.clock))
	if err != nil {
		return nil, err
	}

	return &Address{
		Entity:     entity,
		customerID: customerID,
		street:     stringFrom(record.Data, fieldStreet),
		postalCode: stringFrom(record.Data, fieldPostalCode),
		city:       stringFrom(record.Data, fieldCity),
		country:    stringFrom(record.Data, fieldCountry),
	}, nil
}

func stringFrom(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
