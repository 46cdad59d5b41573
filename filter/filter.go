package filter

import (
	"reflect"
)

// Filter is an immutable condition on one target field.
type Filter struct {
	op     Operator
	target string
	value  any
}

// Serialized is the storage independent wire form of a Filter.
type Serialized struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Value  any    `json:"value"`
}

// New creates a Filter. The value is validated when the filter is serialized.
func New(op Operator, target string, value any) Filter {
	return Filter{op: op, target: target, value: value}
}

func (f Filter) Operator() Operator {
	return f.op
}

func (f Filter) Target() string {
	return f.target
}

func (f Filter) Value() any {
	return f.value
}

// Validate checks that the value fits the operator.
func (f Filter) Validate() error {
	if f.target == "" {
		return ErrEmptyTarget
	}

	valid := false

	switch f.op {
	case Equal, NotEqual:
		valid = isRequiredStringOrNumber(f.value)
	case GreaterThan, GreaterThanOrEqual, LessThan, LessThanOrEqual:
		valid = isNumber(f.value)
	case Like, NotLike:
		valid = isRequiredScalar(f.value)
	case Between, NotBetween, In, NotIn:
		valid = isPairOf(f.value, isRequiredStringOrNumber)
	case BetweenColumns, NotBetweenColumns:
		valid = isPairOf(f.value, isRequiredString)
	case IsNull:
		valid = f.value == true
	case IsNotNull:
		valid = f.value == false
	default:
		return ErrUnknownOperator
	}

	if !valid {
		return invalidValueError(f.op, f.target, f.value)
	}

	return nil
}

// Serialize validates the filter and returns its wire form.
func (f Filter) Serialize() (Serialized, error) {
	if err := f.Validate(); err != nil {
		return Serialized{}, err
	}

	value := f.value
	if list, ok := asList(f.value); ok {
		value = list
	}

	return Serialized{Type: f.op.Tag(), Target: f.target, Value: value}, nil
}

func isRequiredString(value any) bool {
	s, ok := value.(string)
	return ok && s != ""
}

func isNumber(value any) bool {
	if value == nil {
		return false
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isRequiredStringOrNumber(value any) bool {
	return isRequiredString(value) || isNumber(value)
}

func isRequiredScalar(value any) bool {
	if _, ok := value.(bool); ok {
		return true
	}

	return isRequiredStringOrNumber(value)
}

func isPairOf(value any, element func(any) bool) bool {
	list, ok := asList(value)
	if !ok || len(list) != 2 {
		return false
	}

	return element(list[0]) && element(list[1])
}

// asList converts any slice or array into []any.
func asList(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}

	if list, ok := value.([]any); ok {
		return append([]any(nil), list...), true
	}

	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}

	list := make([]any, v.Len())
	for i := range list {
		list[i] = v.Index(i).Interface()
	}

	return list, true
}
