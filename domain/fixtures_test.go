package domain_test

import (
	"time"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

const (
	productRenamedEventName   = "ProductRenamed"
	productRepricedEventName  = "ProductRepriced"
	productDiscontinuedEvName = "ProductDiscontinued"
)

type sku string

func (s sku) String() string {
	return "SKU-" + string(s)
}

type product struct {
	domain.Aggregate
	name      string
	sku       sku
	tags      []string
	priceCent int
	launched  time.Time
	note      *string
}

var productFields = domain.NewFieldRegistry(
	domain.Field("name",
		func(p *product) string { return p.name },
		func(p *product, v string) { p.name = v }),
	domain.Field("sku",
		func(p *product) sku { return p.sku },
		func(p *product, v sku) { p.sku = v }),
	domain.Field("tags",
		func(p *product) []string { return p.tags },
		func(p *product, v []string) { p.tags = v }),
	domain.Field("priceCent",
		func(p *product) int { return p.priceCent },
		func(p *product, v int) { p.priceCent = v }),
	domain.Field("launched",
		func(p *product) time.Time { return p.launched },
		func(p *product, v time.Time) { p.launched = v }),
	domain.Field("note",
		func(p *product) *string { return p.note },
		func(p *product, v *string) { p.note = v }),
)

func newProduct(id string, clock func() time.Time) *product {
	aggregate, err := domain.NewAggregate(domain.StringID(id), domain.WithClock(clock))
	if err != nil {
		panic(err)
	}

	return &product{Aggregate: aggregate, name: "old", sku: "1", priceCent: 100}
}

func (p *product) fields() domain.FieldAccessor {
	return productFields.Bind(p)
}

func (p *product) rename(name string) error {
	return p.UpdateAggregateRoot(
		p.fields(),
		domain.Changes{"name": name},
		domain.ChangesetEventFactory(productRenamedEventName),
	)
}

func (p *product) reprice(cents int) error {
	return p.UpdateAggregateRoot(
		p.fields(),
		domain.Changes{"priceCent": cents},
		domain.ChangesetEventFactory(productRepricedEventName),
	)
}

// fakeClock advances by one second on every call.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}
