// Package valueobject contains immutable, self-validating value types.
//
// Every constructor either returns a valid value or an error matching domain.ErrValidation.
// All types implement fmt.Stringer with their canonical text form, which is what entity
// change detection compares.
package valueobject
