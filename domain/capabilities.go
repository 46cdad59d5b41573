package domain

// Identifiable exposes identity.
type Identifiable interface {
	ID() Identifier
}

// Versioned exposes the optimistic locking versions.
type Versioned interface {
	Version() uint
	PersistedVersion() uint
}

// ChangeTracker exposes dirty tracking and the persisted bookkeeping state.
type ChangeTracker interface {
	IsDirty() bool
	State() State
	Hydrate(state State)
}

// EventRecorder is implemented by aggregates that buffer domain events until they are committed.
type EventRecorder interface {
	UncommittedEvents() []DomainEvent
	HasUncommittedEvents() bool
	MarkEventsAsCommitted()
}

// Persistable is what a repository needs from an entity.
type Persistable interface {
	Identifiable
	Versioned
	ChangeTracker
}

// Validatable entities are validated by a repository before they are written.
type Validatable interface {
	Validate() error
}

var (
	_ Persistable   = (*Entity)(nil)
	_ Persistable   = (*Aggregate)(nil)
	_ EventRecorder = (*Aggregate)(nil)
)
