package domain

import "strings"

// Identifier identifies an entity. Implementations must be comparable value types,
// so two identifiers are equal when their underlying values are equal.
type Identifier interface {
	String() string
	IsEmpty() bool
}

// StringID is an Identifier backed by a plain string, e.g. a database-native key.
type StringID string

// NewStringID builds a StringID, rejecting blank input.
func NewStringID(value string) (StringID, error) {
	if strings.TrimSpace(value) == "" {
		return "", ErrEmptyIdentifier
	}

	return StringID(value), nil
}

func (id StringID) String() string {
	return string(id)
}

func (id StringID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// SameIdentity reports whether both identifiers are set and equal.
func SameIdentity(a, b Identifier) bool {
	if a == nil || b == nil {
		return false
	}

	if a.IsEmpty() || b.IsEmpty() {
		return false
	}

	return a == b
}
