package valueobject_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
)

func fullGeoAddressParts() valueobject.GeoAddressParts {
	return valueobject.GeoAddressParts{
		Street:       "Main St",
		StreetNumber: "123",
		ZipCode:      "12345",
		City:         "Sample City",
		State:        "Sample State",
		County:       "Sample County",
		District:     "Sample District",
		Neighborhood: "Sample Neighborhood",
		Country:      "Sample Country",
		Precision:    "high",
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
	}
}

func Test_NewGeoAddress(t *testing.T) {
	address, err := valueobject.NewGeoAddress(fullGeoAddressParts())
	require.NoError(t, err)

	assert.Equal(t, "Main St", address.Street())
	assert.Equal(t, "123", address.StreetNumber())
	assert.Equal(t, "12345", address.ZipCode())
	assert.Equal(t, "Sample City", address.City())
	assert.Equal(t, "Sample State", address.State())
	assert.Equal(t, "Sample County", address.County())
	assert.Equal(t, "Sample District", address.District())
	assert.Equal(t, "Sample Neighborhood", address.Neighborhood())
	assert.Equal(t, "Sample Country", address.Country())
	assert.Equal(t, "high", address.Precision())
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), address.CreatedAt())
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), address.UpdatedAt())
}

func Test_NewGeoAddress_OnlyRequiredParts(t *testing.T) {
	address, err := valueobject.NewGeoAddress(valueobject.GeoAddressParts{Country: "Sample Country", Precision: "high"})
	require.NoError(t, err)

	assert.Empty(t, address.Street())
	assert.Empty(t, address.City())
	assert.Equal(t, "Sample Country", address.Country())
	assert.False(t, address.CreatedAt().IsZero())
	assert.False(t, address.UpdatedAt().IsZero())
	assert.Nil(t, address.ToMap()["street"])
}

func Test_NewGeoAddress_Invalid(t *testing.T) {
	testCases := []struct {
		description string
		mutate      func(parts *valueobject.GeoAddressParts)
	}{
		{description: "missing country", mutate: func(p *valueobject.GeoAddressParts) { p.Country = " " }},
		{description: "missing precision", mutate: func(p *valueobject.GeoAddressParts) { p.Precision = "" }},
		{description: "updated before created", mutate: func(p *valueobject.GeoAddressParts) {
			p.UpdatedAt = p.CreatedAt.Add(-time.Hour)
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			parts := fullGeoAddressParts()
			tc.mutate(&parts)

			_, err := valueobject.NewGeoAddress(parts)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func Test_GeoAddress_String(t *testing.T) {
	address, err := valueobject.NewGeoAddress(fullGeoAddressParts())
	require.NoError(t, err)

	assert.Equal(t,
		"Main St 123, 12345 Sample City, Sample State, Sample County, Sample District, Sample Neighborhood, Sample Country",
		address.String(),
	)
}

func Test_GeoAddress_ToMap(t *testing.T) {
	address, err := valueobject.NewGeoAddress(fullGeoAddressParts())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"street":        "Main St",
		"street_number": "123",
		"zip_code":      "12345",
		"city":          "Sample City",
		"state":         "Sample State",
		"county":        "Sample County",
		"district":      "Sample District",
		"neighborhood":  "Sample Neighborhood",
		"country":       "Sample Country",
		"precision":     "high",
		"created_at":    "2024-01-01T12:00:00Z",
		"updated_at":    "2024-01-02T12:00:00Z",
	}, address.ToMap())
}

func Test_GeoAddress_Equals(t *testing.T) {
	address, err := valueobject.NewGeoAddress(fullGeoAddressParts())
	require.NoError(t, err)

	later := fullGeoAddressParts()
	later.UpdatedAt = later.UpdatedAt.Add(24 * time.Hour)
	sameAddressLater, err := valueobject.NewGeoAddress(later)
	require.NoError(t, err)

	coarse := fullGeoAddressParts()
	coarse.Precision = "low"
	coarser, err := valueobject.NewGeoAddress(coarse)
	require.NoError(t, err)

	assert.True(t, address.Equals(sameAddressLater))
	assert.False(t, address.Equals(coarser))
}
