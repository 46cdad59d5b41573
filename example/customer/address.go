package customer

import (
	"strings"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
)

// Address is a child entity of Customer, stored as a record of its own.
type Address struct {
	domain.Entity
	customerID valueobject.UUID
	street     string
	postalCode string
	city       string
	country    string
}

var addressFields = domain.NewFieldRegistry(
	domain.Field("street",
		func(a *Address) string { return a.street },
		func(a *Address, v string) { a.street = v }),
	domain.Field("postalCode",
		func(a *Address) string { return a.postalCode },
		func(a *Address, v string) { a.postalCode = v }),
	domain.Field("city",
		func(a *Address) string { return a.city },
		func(a *Address, v string) { a.city = v }),
	domain.Field("country",
		func(a *Address) string { return a.country },
		func(a *Address, v string) { a.country = v }),
)

// NewAddress creates an address of the given customer. country is an ISO 3166 alpha-2 code.
func NewAddress(
	id valueobject.UUID,
	customerID valueobject.UUID,
	street, postalCode, city, country string,
	clock func() time.Time,
) (*Address, error) {

	entity, err := domain.NewEntity(id, domain.WithClock(clockOrDefault(clock)))
	if err != nil {
		return nil, err
	}

	a := &Address{
		Entity:     entity,
		customerID: customerID,
		street:     strings.TrimSpace(street),
		postalCode: strings.TrimSpace(postalCode),
		city:       strings.TrimSpace(city),
		country:    strings.ToUpper(strings.TrimSpace(country)),
	}

	if err = a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Correct changes street, postal code and city. Version and updatedAt only move if something changed.
func (a *Address) Correct(street, postalCode, city string) error {
	corrected := *a
	corrected.street = strings.TrimSpace(street)
	corrected.postalCode = strings.TrimSpace(postalCode)
	corrected.city = strings.TrimSpace(city)

	if err := corrected.Validate(); err != nil {
		return err
	}

	_, err := a.UpdateEntity(addressFields.Bind(a), domain.Changes{
		"street":     corrected.street,
		"postalCode": corrected.postalCode,
		"city":       corrected.city,
	})

	return err
}

func (a *Address) Validate() error {
	switch {
	case a.customerID.IsEmpty():
		return domain.NewValidationError("address", "customer id must not be empty")
	case a.street == "":
		return domain.NewValidationError("street", "must not be empty")
	case a.postalCode == "":
		return domain.NewValidationError("postal code", "must not be empty")
	case a.city == "":
		return domain.NewValidationError("city", "must not be empty")
	case len(a.country) != 2:
		return domain.NewValidationError("country", "must be a two letter code")
	}

	return nil
}

func (a *Address) CustomerID() valueobject.UUID {
	return a.customerID
}

func (a *Address) Street() string {
	return a.street
}

func (a *Address) PostalCode() string {
	return a.postalCode
}

func (a *Address) City() string {
	return a.city
}

func (a *Address) Country() string {
	return a.country
}

func (a *Address) addressID() valueobject.UUID {
	id, _ := a.ID().(valueobject.UUID)
	return id
}
