package filter

import (
	"errors"
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrValueInvalid    = errors.New("invalid filter value")
	ErrEmptyTarget     = errors.New("empty filter target")
	ErrUnknownOperator = errors.New("unknown filter operator")
)

// InvalidValueError reports a filter whose value does not fit its operator.
type InvalidValueError struct {
	Operator Operator
	Target   string
	Value    any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("The filter value \"%s\" is not valid.", renderValue(e.Value))
}

// Is makes errors.Is(err, ErrValueInvalid) match.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrValueInvalid
}

func invalidValueError(op Operator, target string, value any) error {
	return &InvalidValueError{Operator: op, Target: target, Value: value}
}

// renderValue renders lists and maps as JSON and scalars in their default format.
func renderValue(value any) string {
	if value == nil {
		return ""
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		encoded, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}

		return encoded
	default:
		return fmt.Sprintf("%v", value)
	}
}
