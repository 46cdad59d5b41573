package memoryengine

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

func matchesAll(record repository.Record, filters []filter.Serialized) (bool, error) {
	for _, f := range filters {
		ok, err := matches(record, f)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

//nolint:cyclop
func matches(record repository.Record, f filter.Serialized) (bool, error) {
	op, err := filter.OperatorOf(f)
	if err != nil {
		return false, err
	}

	field := fieldValue(record, f.Target)

	switch op {
	case filter.IsNull:
		return field == nil, nil
	case filter.IsNotNull:
		return field != nil, nil
	}

	if field == nil {
		return false, nil
	}

	switch op {
	case filter.Equal:
		return equalValues(field, f.Value), nil
	case filter.NotEqual:
		return !equalValues(field, f.Value), nil
	case filter.GreaterThan, filter.GreaterThanOrEqual, filter.LessThan, filter.LessThanOrEqual:
		return compareWith(op, field, f.Value), nil
	case filter.Between, filter.NotBetween:
		low, high, err := pair(f)
		if err != nil {
			return false, err
		}

		return between(field, low, high) == (op == filter.Between), nil
	case filter.BetweenColumns, filter.NotBetweenColumns:
		low, high, err := pair(f)
		if err != nil {
			return false, err
		}

		lowValue := fieldValue(record, fmt.Sprint(low))
		highValue := fieldValue(record, fmt.Sprint(high))
		if lowValue == nil || highValue == nil {
			return false, nil
		}

		return between(field, lowValue, highValue) == (op == filter.BetweenColumns), nil
	case filter.In, filter.NotIn:
		values, ok := f.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%w: %s needs a list value", repository.ErrUnsupportedFilter, f.Type)
		}

		found := false
		for _, value := range values {
			if equalValues(field, value) {
				found = true
				break
			}
		}

		return found == (op == filter.In), nil
	case filter.Like, filter.NotLike:
		pattern, err := likePattern(fmt.Sprint(f.Value))
		if err != nil {
			return false, err
		}

		return pattern.MatchString(fmt.Sprint(field)) == (op == filter.Like), nil
	default:
		return false, fmt.Errorf("%w: %s", repository.ErrUnsupportedFilter, f.Type)
	}
}

// fieldValue resolves a filter target. Missing data keys and a zero updated_at are nil.
func fieldValue(record repository.Record, target string) any {
	switch target {
	case repository.TargetID:
		return record.ID
	case repository.TargetVersion:
		return float64(record.Version)
	case repository.TargetCreatedAt:
		return record.CreatedAt
	case repository.TargetUpdatedAt:
		if record.UpdatedAt.IsZero() {
			return nil
		}

		return record.UpdatedAt
	default:
		return record.Data[target]
	}
}

func pair(f filter.Serialized) (any, any, error) {
	values, ok := f.Value.([]any)
	if !ok || len(values) != 2 {
		return nil, nil, fmt.Errorf("%w: %s needs two values", repository.ErrUnsupportedFilter, f.Type)
	}

	return values[0], values[1], nil
}

func between(field, low, high any) bool {
	lowCompared, ok := compareValues(field, low)
	if !ok || lowCompared < 0 {
		return false
	}

	highCompared, ok := compareValues(field, high)

	return ok && highCompared <= 0
}

func compareWith(op filter.Operator, field, value any) bool {
	compared, ok := compareValues(field, value)
	if !ok {
		return false
	}

	switch op {
	case filter.GreaterThan:
		return compared > 0
	case filter.GreaterThanOrEqual:
		return compared >= 0
	case filter.LessThan:
		return compared < 0
	default:
		return compared <= 0
	}
}

func equalValues(left, right any) bool {
	if compared, ok := compareValues(left, right); ok {
		return compared == 0
	}

	return fmt.Sprint(left) == fmt.Sprint(right)
}

// compareValues orders a stored field against a filter value: times, numbers and strings.
// A numeric string in the field is compared as a number only if the filter value is a number,
// a string filter value always compares as text.
func compareValues(left, right any) (int, bool) {
	if leftTime, ok := left.(time.Time); ok {
		rightTime, ok := toTime(right)
		if !ok {
			return 0, false
		}

		return leftTime.Compare(rightTime), true
	}

	leftNumber, leftOK := fieldNumber(left)
	rightNumber, rightOK := toFloat(right)

	if leftOK && rightOK {
		return cmp.Compare(leftNumber, rightNumber), true
	}

	leftString, leftOK := left.(string)
	rightString, rightOK := right.(string)

	if leftOK && rightOK {
		return strings.Compare(leftString, rightString), true
	}

	return 0, false
}

func toTime(value any) (time.Time, bool) {
	switch typed := value.(type) {
	case time.Time:
		return typed, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, typed)
		return parsed, err == nil
	default:
		return time.Time{}, false
	}
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	default:
		return 0, false
	}
}

func fieldNumber(value any) (float64, bool) {
	if typed, ok := value.(string); ok {
		parsed, err := strconv.ParseFloat(typed, 64)
		return parsed, err == nil
	}

	return toFloat(value)
}

// likePattern translates an SQL LIKE pattern into an anchored regular expression.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var expression strings.Builder

	expression.WriteString("(?s)^")

	for _, r := range pattern {
		switch r {
		case '%':
			expression.WriteString(".*")
		case '_':
			expression.WriteString(".")
		default:
			expression.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	expression.WriteString("$")

	compiled, err := regexp.Compile(expression.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrUnsupportedFilter, err.Error())
	}

	return compiled, nil
}
