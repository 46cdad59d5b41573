package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrStructural      = errors.New("structural error")
	ErrEmptyIdentifier = errors.New("empty identifier supplied")
	ErrNilEvent        = errors.New("nil domain event supplied")
	ErrEmptyEventName  = errors.New("empty event name supplied")
)

// StructuralError reports a programmer error in the way fields of an entity are addressed,
// e.g. an unknown field name or a value of the wrong type. It is never retried.
type StructuralError struct {
	Field  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error on field %q: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrStructural) match.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

func unknownFieldError(field string) error {
	return &StructuralError{Field: field, Reason: "field does not exist"}
}

func invalidFieldValueError(field string, value any) error {
	return &StructuralError{Field: field, Reason: fmt.Sprintf("value of type %T can not be assigned", value)}
}

// ValidationError is returned by value objects and entity validation.
type ValidationError struct {
	Subject string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is not valid: %s", e.Subject, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for the given subject.
func NewValidationError(subject, reason string) error {
	return &ValidationError{Subject: subject, Reason: reason}
}
