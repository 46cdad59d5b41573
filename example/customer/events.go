package customer

import (
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
)

const (
	CustomerRegisteredEventName         = "CustomerRegistered"
	CustomerContactDataChangedEventName = "CustomerContactDataChanged"
	CustomerAddressAddedEventName       = "CustomerAddressAdded"
	CustomerAddressRemovedEventName     = "CustomerAddressRemoved"
	CustomerUnregisteredEventName       = "CustomerUnregistered"
)

// CustomerRegistered is recorded once, when a customer is created.
type CustomerRegistered struct {
	CustomerID valueobject.UUID
	Name       string
	Email      valueobject.Email
	OccurredAt time.Time
}

var _ domain.DomainEvent = CustomerRegistered{}

func BuildCustomerRegistered(
	customerID valueobject.UUID,
	name string,
	email valueobject.Email,
	occurredAt time.Time,
) CustomerRegistered {

	return CustomerRegistered{
		CustomerID: customerID,
		Name:       name,
		Email:      email,
		OccurredAt: occurredAt,
	}
}

func (e CustomerRegistered) EventName() string {
	return CustomerRegisteredEventName
}

func (e CustomerRegistered) AggregateID() domain.Identifier {
	return e.CustomerID
}

func (e CustomerRegistered) OccurredOn() time.Time {
	return e.OccurredAt
}

func (e CustomerRegistered) EventData() map[string]any {
	return map[string]any{
		"name":  e.Name,
		"email": e.Email.String(),
	}
}

func (e CustomerRegistered) EventVersion() int {
	return domain.DefaultEventVersion
}

func buildAddressAdded(customerID valueobject.UUID, address *Address, occurredAt time.Time) (domain.DomainEvent, error) {
	return domain.NewEvent(
		CustomerAddressAddedEventName,
		customerID,
		map[string]any{
			"address_id":  address.ID().String(),
			"street":      address.street,
			"postal_code": address.postalCode,
			"city":        address.city,
			"country":     address.country,
		},
		domain.WithOccurredOn(occurredAt),
	)
}

func buildAddressRemoved(customerID valueobject.UUID, addressID valueobject.UUID, occurredAt time.Time) (domain.DomainEvent, error) {
	return domain.NewEvent(
		CustomerAddressRemovedEventName,
		customerID,
		map[string]any{"address_id": addressID.String()},
		domain.WithOccurredOn(occurredAt),
	)
}

func buildUnregistered(customerID valueobject.UUID, email valueobject.Email, occurredAt time.Time) (domain.DomainEvent, error) {
	return domain.NewEvent(
		CustomerUnregisteredEventName,
		customerID,
		map[string]any{"email": email.String()},
		domain.WithOccurredOn(occurredAt),
	)
}
