package valueobject

import (
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

// Phonenumber is a phone number validated against the numbering plan of its country and
// normalised to E.164, e.g. "+4930123456".
type Phonenumber struct {
	value          string
	countryCode    int
	nationalNumber string
	areaCodeLength int
	regionCode     string
}

// ParsePhonenumber accepts international numbers with a leading "+" or "00" and common separators.
func ParsePhonenumber(value string) (Phonenumber, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Phonenumber{}, domain.NewValidationError("phone number", "must not be empty")
	}

	if strings.HasPrefix(raw, "00") {
		raw = "+" + raw[2:]
	}

	if !strings.HasPrefix(raw, "+") {
		return Phonenumber{}, domain.NewValidationError("phone number", "needs an international prefix "+value)
	}

	number, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return Phonenumber{}, domain.NewValidationError("phone number", "failed to parse "+value+": "+err.Error())
	}

	if !phonenumbers.IsValidNumber(number) {
		return Phonenumber{}, domain.NewValidationError("phone number", "not a valid number "+value)
	}

	return Phonenumber{
		value:          phonenumbers.Format(number, phonenumbers.E164),
		countryCode:    int(number.GetCountryCode()),
		nationalNumber: phonenumbers.GetNationalSignificantNumber(number),
		areaCodeLength: phonenumbers.GetLengthOfNationalDestinationCode(number),
		regionCode:     phonenumbers.GetRegionCodeForNumber(number),
	}, nil
}

func (p Phonenumber) String() string {
	return p.value
}

func (p Phonenumber) Equals(other Phonenumber) bool {
	return p.value == other.value
}

// CountryCode returns the calling code with a leading "+", e.g. "+49".
func (p Phonenumber) CountryCode() string {
	if p.countryCode == 0 {
		return ""
	}

	return "+" + strconv.Itoa(p.countryCode)
}

// RegionCode is the ISO 3166 country the number belongs to, e.g. "DE".
func (p Phonenumber) RegionCode() string {
	return p.regionCode
}

// NationalNumber is the number without country code and national prefix.
func (p Phonenumber) NationalNumber() string {
	return p.nationalNumber
}

// AreaCode is the national destination code, e.g. "30" for Berlin. It is empty for
// numbering plans without one.
func (p Phonenumber) AreaCode() string {
	return p.nationalNumber[:p.areaCodeLength]
}

// SubscriberNumber is the national number without the area code.
func (p Phonenumber) SubscriberNumber() string {
	return p.nationalNumber[p.areaCodeLength:]
}

func (p Phonenumber) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

func (p *Phonenumber) UnmarshalText(text []byte) error {
	parsed, err := ParsePhonenumber(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
