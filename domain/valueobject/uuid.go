package valueobject

import (
	"bytes"
	"strings"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

const (
	prefixSeparator = "_"
	minUUIDVersion  = 4
	shortIDLength   = 8
)

// UUID is an RFC 4122 identifier of version 4 or higher, or the nil UUID.
type UUID struct {
	value uuid.UUID
}

// NewUUID generates a time ordered version 7 UUID.
func NewUUID() (UUID, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return UUID{}, err
	}

	return UUID{value: value}, nil
}

// MustNewUUID is NewUUID for places where running out of entropy is not recoverable anyway.
func MustNewUUID() UUID {
	id, err := NewUUID()
	if err != nil {
		panic(err)
	}

	return id
}

// ParseUUID parses the canonical text form.
func ParseUUID(value string) (UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return UUID{}, domain.NewValidationError("uuid", "invalid format "+value)
	}

	if parsed != uuid.Nil && int(parsed.Version()) < minUUIDVersion {
		return UUID{}, domain.NewValidationError("uuid", "version must be at least 4")
	}

	return UUID{value: parsed}, nil
}

// FromUUID wraps an existing google/uuid value.
func FromUUID(value uuid.UUID) (UUID, error) {
	return ParseUUID(value.String())
}

// FromPrefixed parses ids like "cus_0190c1f2-...". The part before the last underscore
// must equal expectedPrefix unless expectedPrefix is empty.
func FromPrefixed(prefixed, expectedPrefix string) (UUID, error) {
	prefix, err := ExtractPrefix(prefixed)
	if err != nil {
		return UUID{}, err
	}

	if expectedPrefix != "" && prefix != expectedPrefix {
		return UUID{}, domain.NewValidationError("uuid", "unexpected prefix "+prefix)
	}

	return ParseUUID(prefixed[len(prefix)+len(prefixSeparator):])
}

// ExtractPrefix returns the part of a prefixed id before the last underscore.
func ExtractPrefix(prefixed string) (string, error) {
	index := strings.LastIndex(prefixed, prefixSeparator)
	if index < 0 {
		return "", domain.NewValidationError("uuid", "prefixed id must contain an underscore separator")
	}

	return prefixed[:index], nil
}

func (u UUID) String() string {
	return u.value.String()
}

// IsEmpty reports whether this is the nil UUID.
func (u UUID) IsEmpty() bool {
	return u.value == uuid.Nil
}

func (u UUID) Version() int {
	return int(u.value.Version())
}

// Prefixed returns the id in its prefixed text form.
func (u UUID) Prefixed(prefix string) string {
	return prefix + prefixSeparator + u.String()
}

// ShortID returns the first eight hex characters, for logs and display.
func (u UUID) ShortID() string {
	return u.String()[:shortIDLength]
}

func (u UUID) Equals(other UUID) bool {
	return u.value == other.value
}

// IsBefore compares the binary representation, which orders version 7 ids by creation time.
func (u UUID) IsBefore(other UUID) bool {
	return bytes.Compare(u.value[:], other.value[:]) < 0
}

func (u UUID) Raw() uuid.UUID {
	return u.value
}

func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *UUID) UnmarshalText(text []byte) error {
	parsed, err := ParseUUID(string(text))
	if err != nil {
		return err
	}

	*u = parsed

	return nil
}

var _ domain.Identifier = UUID{}
