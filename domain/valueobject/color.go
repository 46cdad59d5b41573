package valueobject

import (
	"regexp"
	"slices"
	"strings"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

var (
	namedColors = []string{
		"black",
		"blue",
		"brown",
		"cyan",
		"gray",
		"green",
		"magenta",
		"orange",
		"pink",
		"purple",
		"red",
		"steel",
		"white",
		"yellow",
	}

	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-f]{3}|[0-9a-f]{6})$`)
)

// Color is either one of the named palette colors or a hex code like "#1e90ff", always lower case.
type Color struct {
	value string
}

func ParseColor(value string) (Color, error) {
	normalised := strings.ToLower(strings.TrimSpace(value))

	if !slices.Contains(namedColors, normalised) && !hexColorPattern.MatchString(normalised) {
		return Color{}, domain.NewValidationError("color", "unknown color "+value)
	}

	return Color{value: normalised}, nil
}

// NamedColors returns the palette in alphabetical order.
func NamedColors() []string {
	return slices.Clone(namedColors)
}

func (c Color) String() string {
	return c.value
}

func (c Color) Equals(other Color) bool {
	return c.value == other.value
}

func (c Color) IsHex() bool {
	return strings.HasPrefix(c.value, "#")
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}
