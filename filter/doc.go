// Package filter provides a small, storage independent DSL to describe which records a
// query should return.
//
// A Filter is an immutable triple of operator, target field and value. A Builder collects
// filters in insertion order; all filters of a Builder are combined with AND by the stores.
//
//	filters, err := filter.Build().
//		Eq("status", "active").
//		Between("age", 18, 65).
//		IsNotNull("email").
//		ToArray()
//
// Values are validated lazily: ToArray validates every filter before it produces any output,
// and the first invalid value fails with an *InvalidValueError.
package filter
