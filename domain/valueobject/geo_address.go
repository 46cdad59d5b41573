package valueobject

import (
	"fmt"
	"strings"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

// GeoAddressParts are the inputs of NewGeoAddress. Country and Precision are required, a zero
// CreatedAt or UpdatedAt means now.
type GeoAddressParts struct {
	Street       string
	StreetNumber string
	ZipCode      string
	City         string
	State        string
	County       string
	District     string
	Neighborhood string
	Country      string
	Precision    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GeoAddress is a geocoded address together with the precision the geocoder reported.
// Empty parts are unknown.
type GeoAddress struct {
	parts GeoAddressParts
}

func NewGeoAddress(parts GeoAddressParts) (GeoAddress, error) {
	trimmed := GeoAddressParts{
		Street:       strings.TrimSpace(parts.Street),
		StreetNumber: strings.TrimSpace(parts.StreetNumber),
		ZipCode:      strings.TrimSpace(parts.ZipCode),
		City:         strings.TrimSpace(parts.City),
		State:        strings.TrimSpace(parts.State),
		County:       strings.TrimSpace(parts.County),
		District:     strings.TrimSpace(parts.District),
		Neighborhood: strings.TrimSpace(parts.Neighborhood),
		Country:      strings.TrimSpace(parts.Country),
		Precision:    strings.TrimSpace(parts.Precision),
		CreatedAt:    parts.CreatedAt,
		UpdatedAt:    parts.UpdatedAt,
	}

	if trimmed.Country == "" {
		return GeoAddress{}, domain.NewValidationError("geo address", "country is required")
	}

	if trimmed.Precision == "" {
		return GeoAddress{}, domain.NewValidationError("geo address", "precision is required")
	}

	now := time.Now().UTC()

	if trimmed.CreatedAt.IsZero() {
		trimmed.CreatedAt = now
	}

	if trimmed.UpdatedAt.IsZero() {
		trimmed.UpdatedAt = now
	}

	if trimmed.UpdatedAt.Before(trimmed.CreatedAt) {
		return GeoAddress{}, domain.NewValidationError("geo address", "updated before it was created")
	}

	return GeoAddress{parts: trimmed}, nil
}

func (g GeoAddress) Street() string {
	return g.parts.Street
}

func (g GeoAddress) StreetNumber() string {
	return g.parts.StreetNumber
}

func (g GeoAddress) ZipCode() string {
	return g.parts.ZipCode
}

func (g GeoAddress) City() string {
	return g.parts.City
}

func (g GeoAddress) State() string {
	return g.parts.State
}

func (g GeoAddress) County() string {
	return g.parts.County
}

func (g GeoAddress) District() string {
	return g.parts.District
}

func (g GeoAddress) Neighborhood() string {
	return g.parts.Neighborhood
}

func (g GeoAddress) Country() string {
	return g.parts.Country
}

func (g GeoAddress) Precision() string {
	return g.parts.Precision
}

func (g GeoAddress) CreatedAt() time.Time {
	return g.parts.CreatedAt
}

func (g GeoAddress) UpdatedAt() time.Time {
	return g.parts.UpdatedAt
}

// Parts returns the address as it was built.
func (g GeoAddress) Parts() GeoAddressParts {
	return g.parts
}

// Equals compares the address and its precision. The timestamps are bookkeeping and ignored.
func (g GeoAddress) Equals(other GeoAddress) bool {
	return g.String() == other.String() && g.parts.Precision == other.parts.Precision
}

// String renders "street number, zip city, state, county, district, neighborhood, country".
func (g GeoAddress) String() string {
	return fmt.Sprintf("%s %s, %s %s, %s, %s, %s, %s, %s",
		g.parts.Street,
		g.parts.StreetNumber,
		g.parts.ZipCode,
		g.parts.City,
		g.parts.State,
		g.parts.County,
		g.parts.District,
		g.parts.Neighborhood,
		g.parts.Country,
	)
}

// ToMap serializes the address with snake case keys. Unknown parts are nil.
func (g GeoAddress) ToMap() map[string]any {
	return map[string]any{
		"street":        optional(g.parts.Street),
		"street_number": optional(g.parts.StreetNumber),
		"zip_code":      optional(g.parts.ZipCode),
		"city":          optional(g.parts.City),
		"state":         optional(g.parts.State),
		"county":        optional(g.parts.County),
		"district":      optional(g.parts.District),
		"neighborhood":  optional(g.parts.Neighborhood),
		"country":       g.parts.Country,
		"precision":     g.parts.Precision,
		"created_at":    g.parts.CreatedAt.Format(time.RFC3339),
		"updated_at":    g.parts.UpdatedAt.Format(time.RFC3339),
	}
}

func optional(value string) any {
	if value == "" {
		return nil
	}

	return value
}
