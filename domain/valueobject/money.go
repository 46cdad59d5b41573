package valueobject

import (
	"fmt"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
)

var currencySymbols = map[string]string{
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
}

// Money is a non-negative amount in minor units (cents, pence) of a supported currency.
type Money struct {
	minor    int64
	currency string
}

func NewMoney(minor int64, currency string) (Money, error) {
	if minor < 0 {
		return Money{}, domain.NewValidationError("money", "amount can not be negative")
	}

	if _, supported := currencySymbols[currency]; !supported {
		return Money{}, domain.NewValidationError("money", "unsupported currency "+currency)
	}

	return Money{minor: minor, currency: currency}, nil
}

func Euros(minor int64) (Money, error) {
	return NewMoney(minor, CurrencyEUR)
}

func Dollars(minor int64) (Money, error) {
	return NewMoney(minor, CurrencyUSD)
}

func Pounds(minor int64) (Money, error) {
	return NewMoney(minor, CurrencyGBP)
}

func (m Money) MinorAmount() int64 {
	return m.minor
}

func (m Money) Amount() float64 {
	return float64(m.minor) / 100
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) Symbol() string {
	return currencySymbols[m.currency]
}

func (m Money) IsZero() bool {
	return m.minor == 0
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, domain.NewValidationError("money", "currency mismatch")
	}

	return NewMoney(m.minor+other.minor, m.currency)
}

func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, domain.NewValidationError("money", "currency mismatch")
	}

	return NewMoney(m.minor-other.minor, m.currency)
}

func (m Money) Equals(other Money) bool {
	return m == other
}

// String renders e.g. "€12.34".
func (m Money) String() string {
	return fmt.Sprintf("%s%d.%02d", m.Symbol(), m.minor/100, m.minor%100)
}
