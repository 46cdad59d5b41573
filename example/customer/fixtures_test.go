package customer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain/valueobject"
	"github.com/AntonStoeckl/ddd-toolkit-go/example/customer"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/memoryengine"
	"github.com/AntonStoeckl/ddd-toolkit-go/testutil/testdoubles"
)

// fakeClock advances by one minute on every call.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.current = c.current.Add(time.Minute)
	return c.current
}

func mustEmail(t *testing.T, value string) valueobject.Email {
	t.Helper()

	email, err := valueobject.ParseEmail(value)
	require.NoError(t, err)

	return email
}

func mustPhone(t *testing.T, value string) valueobject.Phonenumber {
	t.Helper()

	phone, err := valueobject.ParsePhonenumber(value)
	require.NoError(t, err)

	return phone
}

func newUUID(t *testing.T) valueobject.UUID {
	t.Helper()

	id, err := valueobject.NewUUID()
	require.NoError(t, err)

	return id
}

func registerJane(t *testing.T, clock *fakeClock) *customer.Customer {
	t.Helper()

	c, err := customer.Register(newUUID(t), "Jane Doe", mustEmail(t, "jane.doe@example.com"), clock.now)
	require.NoError(t, err)

	return c
}

func newBerlinAddress(t *testing.T, c *customer.Customer, clock *fakeClock) *customer.Address {
	t.Helper()

	address, err := customer.NewAddress(newUUID(t), c.CustomerID(), "Unter den Linden 1", "10117", "Berlin", "de", clock.now)
	require.NoError(t, err)

	return address
}

func eventNames(c *customer.Customer) []string {
	names := make([]string, 0)
	for _, event := range c.UncommittedEvents() {
		names = append(names, event.EventName())
	}

	return names
}

type fixture struct {
	clock     *fakeClock
	store     *memoryengine.RecordStore
	publisher *testdoubles.EventPublisherSpy
	repo      *customer.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store, err := memoryengine.NewRecordStore()
	require.NoError(t, err)

	clock := newFakeClock()
	publisher := testdoubles.NewEventPublisherSpy()

	repo, err := customer.NewRepository(store, publisher, clock.now)
	require.NoError(t, err)

	return fixture{clock: clock, store: store, publisher: publisher, repo: repo}
}
