package domain

import (
	"sort"
	"strings"
)

const (
	OldValuePrefix = "old_"
	NewValuePrefix = "new_"
)

// Changes maps field names to proposed new values.
type Changes map[string]any

// Changeset holds old_<field> / new_<field> pairs for every field that actually changed.
type Changeset map[string]any

// IsEmpty reports whether nothing changed.
func (c Changeset) IsEmpty() bool {
	return len(c) == 0
}

// Fields returns the sorted names of the changed fields.
func (c Changeset) Fields() []string {
	fields := make([]string, 0, len(c)/2)

	for key := range c {
		if name, ok := strings.CutPrefix(key, NewValuePrefix); ok {
			fields = append(fields, name)
		}
	}

	sort.Strings(fields)

	return fields
}

// Old returns the value a field had before the change.
func (c Changeset) Old(field string) (any, bool) {
	value, ok := c[OldValuePrefix+field]
	return value, ok
}

// New returns the value a field was changed to.
func (c Changeset) New(field string) (any, bool) {
	value, ok := c[NewValuePrefix+field]
	return value, ok
}

// Has reports whether the field is part of the changeset.
func (c Changeset) Has(field string) bool {
	_, ok := c[NewValuePrefix+field]
	return ok
}

// Clone returns an independent copy. Values are copied shallowly.
func (c Changeset) Clone() Changeset {
	clone := make(Changeset, len(c))
	for key, value := range c {
		clone[key] = value
	}

	return clone
}

func (c Changeset) record(field string, oldValue, newValue any) {
	c[OldValuePrefix+field] = oldValue
	c[NewValuePrefix+field] = newValue
}
