package postgresengine

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

const (
	dataText    = "data->>?"
	dataNumeric = "(data->>?)::numeric"
)

// column is what goqu identifiers and literals have in common.
type column interface {
	exp.Expression
	exp.Comparable
	exp.Inable
	exp.Isable
	exp.Likeable
	exp.Rangeable
}

var bookkeepingColumns = map[string]string{
	repository.TargetID:        colID,
	repository.TargetVersion:   colVersion,
	repository.TargetCreatedAt: colCreatedAt,
	repository.TargetUpdatedAt: colUpdatedAt,
}

// fieldExpression addresses a bookkeeping column or a key of the data document.
// Data keys are compared as text unless numeric is set.
func fieldExpression(target string, numeric bool) column {
	if name, ok := bookkeepingColumns[target]; ok {
		return goqu.C(name)
	}

	if numeric {
		return goqu.L(dataNumeric, target)
	}

	return goqu.L(dataText, target)
}

// whereExpressions translates serialized filters into goqu expressions that are joined with AND.
//
//nolint:cyclop
func whereExpressions(filters []filter.Serialized) ([]exp.Expression, error) {
	expressions := make([]exp.Expression, 0, len(filters))

	for _, f := range filters {
		op, err := filter.OperatorOf(f)
		if err != nil {
			return nil, errors.Join(repository.ErrUnsupportedFilter, err)
		}

		var expression exp.Expression

		switch op {
		case filter.Equal:
			expression = fieldExpression(f.Target, isNumber(f.Value)).Eq(f.Value)
		case filter.NotEqual:
			expression = fieldExpression(f.Target, isNumber(f.Value)).Neq(f.Value)
		case filter.GreaterThan:
			expression = fieldExpression(f.Target, true).Gt(f.Value)
		case filter.GreaterThanOrEqual:
			expression = fieldExpression(f.Target, true).Gte(f.Value)
		case filter.LessThan:
			expression = fieldExpression(f.Target, true).Lt(f.Value)
		case filter.LessThanOrEqual:
			expression = fieldExpression(f.Target, true).Lte(f.Value)
		case filter.Like:
			expression = fieldExpression(f.Target, false).Like(fmt.Sprint(f.Value))
		case filter.NotLike:
			expression = fieldExpression(f.Target, false).NotLike(fmt.Sprint(f.Value))
		case filter.IsNull:
			expression = fieldExpression(f.Target, false).IsNull()
		case filter.IsNotNull:
			expression = fieldExpression(f.Target, false).IsNotNull()
		case filter.Between, filter.NotBetween:
			low, high, pairErr := pair(f)
			if pairErr != nil {
				return nil, pairErr
			}

			field := fieldExpression(f.Target, isNumber(low) && isNumber(high))
			if op == filter.Between {
				expression = field.Between(goqu.Range(low, high))
			} else {
				expression = field.NotBetween(goqu.Range(low, high))
			}
		case filter.BetweenColumns, filter.NotBetweenColumns:
			low, high, pairErr := pair(f)
			if pairErr != nil {
				return nil, pairErr
			}

			field := fieldExpression(f.Target, true)
			bounds := goqu.Range(fieldExpression(fmt.Sprint(low), true), fieldExpression(fmt.Sprint(high), true))
			if op == filter.BetweenColumns {
				expression = field.Between(bounds)
			} else {
				expression = field.NotBetween(bounds)
			}
		case filter.In, filter.NotIn:
			values, ok := f.Value.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s needs a list value", repository.ErrUnsupportedFilter, f.Type)
			}

			field := fieldExpression(f.Target, allNumbers(values))
			if op == filter.In {
				expression = field.In(values...)
			} else {
				expression = field.NotIn(values...)
			}
		default:
			return nil, fmt.Errorf("%w: %s", repository.ErrUnsupportedFilter, f.Type)
		}

		expressions = append(expressions, expression)
	}

	return expressions, nil
}

func pair(f filter.Serialized) (any, any, error) {
	values, ok := f.Value.([]any)
	if !ok || len(values) != 2 {
		return nil, nil, fmt.Errorf("%w: %s needs exactly two values", repository.ErrUnsupportedFilter, f.Type)
	}

	return values[0], values[1], nil
}

func isNumber(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

func allNumbers(values []any) bool {
	for _, value := range values {
		if !isNumber(value) {
			return false
		}
	}

	return len(values) > 0
}
