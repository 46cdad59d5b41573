// Package customer is a small bounded context built on the toolkit.
//
// A Customer aggregate owns its Addresses. Both are persisted as records of their own kind,
// linked through the "addresses" relation on the customer_id data key, so loading a customer
// deep brings its addresses along. Every state change of a customer is announced with a
// domain event that the Repository publishes after the write succeeded.
package customer
