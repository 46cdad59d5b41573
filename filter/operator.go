package filter

import (
	"fmt"
)

// Operator identifies the comparison a Filter performs.
type Operator int

const (
	Equal Operator = iota + 1
	NotEqual
	Between
	NotBetween
	BetweenColumns
	NotBetweenColumns
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	In
	NotIn
	Like
	NotLike
	IsNull
	IsNotNull
)

// Serialized type tags. IsNull and IsNotNull share TagNull and are told apart by the value.
const (
	TagEqual              = "$eq"
	TagNotEqual           = "$notEq"
	TagBetween            = "$between"
	TagNotBetween         = "$notBetween"
	TagBetweenColumns     = "$betweenColumns"
	TagNotBetweenColumns  = "$notBetweenColumns"
	TagGreaterThan        = "$gt"
	TagGreaterThanOrEqual = "$gte"
	TagLessThan           = "$lt"
	TagLessThanOrEqual    = "$lte"
	TagIn                 = "$in"
	TagNotIn              = "$notIn"
	TagLike               = "$like"
	TagNotLike            = "$notLike"
	TagNull               = "$null"
)

var operatorTags = map[Operator]string{
	Equal:              TagEqual,
	NotEqual:           TagNotEqual,
	Between:            TagBetween,
	NotBetween:         TagNotBetween,
	BetweenColumns:     TagBetweenColumns,
	NotBetweenColumns:  TagNotBetweenColumns,
	GreaterThan:        TagGreaterThan,
	GreaterThanOrEqual: TagGreaterThanOrEqual,
	LessThan:           TagLessThan,
	LessThanOrEqual:    TagLessThanOrEqual,
	In:                 TagIn,
	NotIn:              TagNotIn,
	Like:               TagLike,
	NotLike:            TagNotLike,
	IsNull:             TagNull,
	IsNotNull:          TagNull,
}

// Tag returns the serialized type tag of the operator.
func (o Operator) Tag() string {
	return operatorTags[o]
}

func (o Operator) String() string {
	switch o {
	case IsNull:
		return "$null(true)"
	case IsNotNull:
		return "$null(false)"
	}

	if tag, ok := operatorTags[o]; ok {
		return tag
	}

	return fmt.Sprintf("Operator(%d)", int(o))
}

// OperatorOf resolves the Operator of a serialized filter.
func OperatorOf(s Serialized) (Operator, error) {
	if s.Type == TagNull {
		isNull, ok := s.Value.(bool)
		if !ok {
			return 0, invalidValueError(IsNull, s.Target, s.Value)
		}

		if isNull {
			return IsNull, nil
		}

		return IsNotNull, nil
	}

	for op, tag := range operatorTags {
		if tag == s.Type {
			return op, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownOperator, s.Type)
}
