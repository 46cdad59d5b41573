package filter

import (
	jsoniter "github.com/json-iterator/go"
)

// Builder is an ordered, append only list of filters. Every method returns a new Builder,
// so a Builder can be shared and extended without affecting other holders.
type Builder struct {
	filters []Filter
}

// Build starts an empty Builder.
func Build() Builder {
	return Builder{}
}

// Add appends arbitrary filters.
func (b Builder) Add(filters ...Filter) Builder {
	appended := make([]Filter, 0, len(b.filters)+len(filters))
	appended = append(appended, b.filters...)
	appended = append(appended, filters...)

	return Builder{filters: appended}
}

func (b Builder) Eq(target string, value any) Builder {
	return b.Add(New(Equal, target, value))
}

func (b Builder) NotEq(target string, value any) Builder {
	return b.Add(New(NotEqual, target, value))
}

func (b Builder) Gt(target string, value any) Builder {
	return b.Add(New(GreaterThan, target, value))
}

func (b Builder) Gte(target string, value any) Builder {
	return b.Add(New(GreaterThanOrEqual, target, value))
}

func (b Builder) Lt(target string, value any) Builder {
	return b.Add(New(LessThan, target, value))
}

func (b Builder) Lte(target string, value any) Builder {
	return b.Add(New(LessThanOrEqual, target, value))
}

func (b Builder) Between(target string, low, high any) Builder {
	return b.Add(New(Between, target, []any{low, high}))
}

func (b Builder) NotBetween(target string, low, high any) Builder {
	return b.Add(New(NotBetween, target, []any{low, high}))
}

// BetweenColumns matches when target lies between the values of two other fields.
func (b Builder) BetweenColumns(target, lowColumn, highColumn string) Builder {
	return b.Add(New(BetweenColumns, target, []any{lowColumn, highColumn}))
}

func (b Builder) NotBetweenColumns(target, lowColumn, highColumn string) Builder {
	return b.Add(New(NotBetweenColumns, target, []any{lowColumn, highColumn}))
}

func (b Builder) In(target string, values ...any) Builder {
	return b.Add(New(In, target, values))
}

func (b Builder) NotIn(target string, values ...any) Builder {
	return b.Add(New(NotIn, target, values))
}

// Like matches with SQL LIKE semantics: % matches any sequence, _ a single character.
func (b Builder) Like(target string, pattern any) Builder {
	return b.Add(New(Like, target, pattern))
}

func (b Builder) NotLike(target string, pattern any) Builder {
	return b.Add(New(NotLike, target, pattern))
}

func (b Builder) IsNull(target string) Builder {
	return b.Add(New(IsNull, target, true))
}

func (b Builder) IsNotNull(target string) Builder {
	return b.Add(New(IsNotNull, target, false))
}

// Filters returns a copy of the collected filters in insertion order.
func (b Builder) Filters() []Filter {
	return append([]Filter(nil), b.filters...)
}

func (b Builder) Len() int {
	return len(b.filters)
}

func (b Builder) IsEmpty() bool {
	return len(b.filters) == 0
}

// ToArray validates all filters and returns their serialized form in insertion order.
// Nothing is returned if any filter is invalid.
func (b Builder) ToArray() ([]Serialized, error) {
	serialized := make([]Serialized, 0, len(b.filters))

	for _, f := range b.filters {
		s, err := f.Serialize()
		if err != nil {
			return nil, err
		}

		serialized = append(serialized, s)
	}

	return serialized, nil
}

func (b Builder) MarshalJSON() ([]byte, error) {
	serialized, err := b.ToArray()
	if err != nil {
		return nil, err
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(serialized)
}
