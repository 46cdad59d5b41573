package domain

import (
	"time"
)

// eventBuffer is owned by exactly one Aggregate. A struct copy of an aggregate carries the
// pointer but not the ownership, so copies never see the original's pending events.
type eventBuffer struct {
	owner  *Aggregate
	events []DomainEvent
}

// Aggregate is an Entity that is the consistency boundary and records domain events.
// Handle aggregates through pointers: a copied aggregate starts with an empty event buffer.
type Aggregate struct {
	Entity
	buffer *eventBuffer
}

// EventSummary is a compact description of a pending event, for debugging.
type EventSummary struct {
	EventName   string
	AggregateID string
	OccurredOn  time.Time
}

// NewAggregate creates a fresh aggregate root without pending events.
func NewAggregate(id Identifier, options ...EntityOption) (Aggregate, error) {
	entity, err := NewEntity(id, options...)
	if err != nil {
		return Aggregate{}, err
	}

	return Aggregate{Entity: entity}, nil
}

// AggregateFromState reconstructs an aggregate from persisted state without pending events.
func AggregateFromState(state State, options ...EntityOption) (Aggregate, error) {
	entity, err := EntityFromState(state, options...)
	if err != nil {
		return Aggregate{}, err
	}

	return Aggregate{Entity: entity}, nil
}

func (a *Aggregate) pending() []DomainEvent {
	if a.buffer == nil || a.buffer.owner != a {
		return nil
	}

	return a.buffer.events
}

func (a *Aggregate) ownedBuffer() *eventBuffer {
	if a.buffer == nil || a.buffer.owner != a {
		a.buffer = &eventBuffer{owner: a}
	}

	return a.buffer
}

// RecordEvent appends an event to the uncommitted events.
func (a *Aggregate) RecordEvent(event DomainEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	buffer := a.ownedBuffer()
	buffer.events = append(buffer.events, event)

	return nil
}

// UpdateAggregateRoot applies changes like UpdateEntity and, if anything changed, records the
// event built by factory from the aggregate id and the changeset. A nil factory applies the
// changes without recording an event. When the factory fails, nothing is applied.
func (a *Aggregate) UpdateAggregateRoot(fields FieldAccessor, changes Changes, factory EventFactory) error {
	if factory == nil {
		return a.updateAndRecord(fields, changes, nil)
	}

	return a.updateAndRecord(fields, changes, func(changeset Changeset) (DomainEvent, error) {
		return factory(a.ID(), changeset.Clone())
	})
}

// UpdateAggregateRootWithEvent applies changes like UpdateEntity and, if anything changed,
// records the given event.
func (a *Aggregate) UpdateAggregateRootWithEvent(fields FieldAccessor, changes Changes, event DomainEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	return a.updateAndRecord(fields, changes, func(Changeset) (DomainEvent, error) {
		return event, nil
	})
}

func (a *Aggregate) updateAndRecord(
	fields FieldAccessor,
	changes Changes,
	buildEvent func(Changeset) (DomainEvent, error),
) error {

	changeset, err := a.collectChanges(fields, changes)
	if err != nil {
		return err
	}

	if changeset.IsEmpty() {
		return nil
	}

	var event DomainEvent

	if buildEvent != nil {
		if event, err = buildEvent(changeset); err != nil {
			return err
		}

		if event == nil {
			return ErrNilEvent
		}
	}

	if err = a.applyChanges(fields, changeset); err != nil {
		return err
	}

	a.Touch()
	a.dirty = changeset

	if event == nil {
		return nil
	}

	return a.RecordEvent(event)
}

// UncommittedEvents returns an independent copy of the pending events in recording order.
func (a *Aggregate) UncommittedEvents() []DomainEvent {
	events := a.pending()
	copied := make([]DomainEvent, len(events))

	for i, event := range events {
		if cloner, ok := event.(Cloner); ok {
			copied[i] = cloner.CloneEvent()
			continue
		}

		copied[i] = event
	}

	return copied
}

func (a *Aggregate) HasUncommittedEvents() bool {
	return len(a.pending()) > 0
}

// MarkEventsAsCommitted drops all pending events.
func (a *Aggregate) MarkEventsAsCommitted() {
	a.ownedBuffer().events = nil
}

// Clone returns a copy of the aggregate with no pending events. The original is untouched.
func (a *Aggregate) Clone() Aggregate {
	clone := Aggregate{Entity: a.Entity}
	clone.dirty = a.dirty.Clone()

	return clone
}

// EventByType returns the first pending event with the given name.
func (a *Aggregate) EventByType(name string) (DomainEvent, bool) {
	for _, event := range a.UncommittedEvents() {
		if event.EventName() == name {
			return event, true
		}
	}

	return nil, false
}

// EventsOfType returns copies of all pending events with the given name.
func (a *Aggregate) EventsOfType(name string) []DomainEvent {
	matching := make([]DomainEvent, 0)

	for _, event := range a.UncommittedEvents() {
		if event.EventName() == name {
			matching = append(matching, event)
		}
	}

	return matching
}

func (a *Aggregate) CountEventsOfType(name string) int {
	count := 0

	for _, event := range a.pending() {
		if event.EventName() == name {
			count++
		}
	}

	return count
}

// ClearEventsOfType removes all pending events with the given name and keeps the order of the rest.
func (a *Aggregate) ClearEventsOfType(name string) {
	events := a.pending()
	if len(events) == 0 {
		return
	}

	kept := make([]DomainEvent, 0, len(events))

	for _, event := range events {
		if event.EventName() != name {
			kept = append(kept, event)
		}
	}

	a.ownedBuffer().events = kept
}

func (a *Aggregate) EventSummary() []EventSummary {
	events := a.pending()
	summary := make([]EventSummary, 0, len(events))

	for _, event := range events {
		summary = append(summary, EventSummary{
			EventName:   event.EventName(),
			AggregateID: event.AggregateID().String(),
			OccurredOn:  event.OccurredOn(),
		})
	}

	return summary
}

// Metadata extends the entity metadata with the state of the event buffer.
func (a *Aggregate) Metadata() map[string]any {
	metadata := a.Entity.Metadata()
	metadata["is_aggregate_root"] = true
	metadata["has_uncommitted_events"] = a.HasUncommittedEvents()
	metadata["uncommitted_events_count"] = len(a.pending())

	return metadata
}
