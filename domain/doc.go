// Package domain provides the building blocks of a domain model: identifiers, entities with
// change tracking and optimistic locking versions, aggregate roots that buffer domain events,
// and the default domain event implementation.
//
// Entities expose their mutable fields through a FieldRegistry that is built once per type,
// so changes can be applied by field name without runtime reflection:
//
//	var productFields = domain.NewFieldRegistry(
//		domain.Field("name",
//			func(p *Product) string { return p.name },
//			func(p *Product, v string) { p.name = v }),
//	)
//
//	func (p *Product) Rename(name string) error {
//		return p.UpdateAggregateRoot(
//			productFields.Bind(p),
//			domain.Changes{"name": name},
//			domain.ChangesetEventFactory("ProductRenamed"),
//		)
//	}
//
// A successful non-empty update bumps the version by exactly one, sets updatedAt and, for
// aggregates, records one event. No-op updates change nothing.
package domain
