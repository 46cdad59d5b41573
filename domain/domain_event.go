package domain

import (
	"time"
)

// DefaultEventVersion is the schema version of an event unless set otherwise.
const DefaultEventVersion = 1

// DomainEvent is an immutable fact about a state change of one aggregate.
type DomainEvent interface {
	EventName() string
	AggregateID() Identifier
	OccurredOn() time.Time
	EventData() map[string]any
	EventVersion() int
}

// Cloner is implemented by events that need a deep copy when handed out of an aggregate.
type Cloner interface {
	CloneEvent() DomainEvent
}

// EventFactory builds the event recorded for a non-empty changeset.
type EventFactory func(aggregateID Identifier, changes Changeset) (DomainEvent, error)

// Event is the default DomainEvent implementation.
type Event struct {
	name         string
	aggregateID  Identifier
	occurredOn   time.Time
	data         map[string]any
	eventVersion int
}

// EventOption configures an Event at construction time.
type EventOption func(*Event)

// WithEventVersion sets the schema version of the event.
func WithEventVersion(version int) EventOption {
	return func(e *Event) {
		e.eventVersion = version
	}
}

// WithOccurredOn sets the time the event happened instead of now.
func WithOccurredOn(occurredOn time.Time) EventOption {
	return func(e *Event) {
		e.occurredOn = occurredOn
	}
}

// NewEvent builds an immutable Event. The payload is copied.
func NewEvent(name string, aggregateID Identifier, data map[string]any, options ...EventOption) (Event, error) {
	if name == "" {
		return Event{}, ErrEmptyEventName
	}

	if aggregateID == nil || aggregateID.IsEmpty() {
		return Event{}, ErrEmptyIdentifier
	}

	e := Event{
		name:         name,
		aggregateID:  aggregateID,
		occurredOn:   time.Now().UTC(),
		data:         copyPayload(data),
		eventVersion: DefaultEventVersion,
	}

	for _, option := range options {
		option(&e)
	}

	if e.eventVersion < 1 {
		return Event{}, NewValidationError("event version", "must be at least 1")
	}

	return e, nil
}

// ChangesetEventFactory returns an EventFactory that builds an Event with the given name and
// the changeset as payload.
func ChangesetEventFactory(name string, options ...EventOption) EventFactory {
	return func(aggregateID Identifier, changes Changeset) (DomainEvent, error) {
		event, err := NewEvent(name, aggregateID, changes, options...)
		if err != nil {
			return nil, err
		}

		return event, nil
	}
}

func (e Event) EventName() string {
	return e.name
}

func (e Event) AggregateID() Identifier {
	return e.aggregateID
}

func (e Event) OccurredOn() time.Time {
	return e.occurredOn
}

// EventData returns a copy of the payload.
func (e Event) EventData() map[string]any {
	return copyPayload(e.data)
}

func (e Event) EventVersion() int {
	return e.eventVersion
}

// CloneEvent returns a deep copy.
func (e Event) CloneEvent() DomainEvent {
	e.data = copyPayload(e.data)
	return e
}

// EventToMap serializes any DomainEvent into its flat wire shape.
func EventToMap(event DomainEvent) map[string]any {
	return map[string]any{
		"event_name":    event.EventName(),
		"aggregate_id":  event.AggregateID().String(),
		"event_data":    event.EventData(),
		"event_version": event.EventVersion(),
		"occurred_on":   event.OccurredOn().Format(time.RFC3339Nano),
	}
}

func copyPayload(data map[string]any) map[string]any {
	payload := make(map[string]any, len(data))

	for key, value := range data {
		payload[key] = copyPayloadValue(value)
	}

	return payload
}

func copyPayloadValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyPayload(v)
	case Changeset:
		return copyPayload(v)
	case []any:
		copied := make([]any, len(v))
		for i, item := range v {
			copied[i] = copyPayloadValue(item)
		}

		return copied
	default:
		return v
	}
}

var (
	_ DomainEvent = Event{}
	_ Cloner      = Event{}
)
