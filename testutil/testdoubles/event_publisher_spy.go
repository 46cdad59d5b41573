package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

// EventPublisherSpy records every published batch. Configured failures are returned before
// anything is recorded.
type EventPublisherSpy struct {
	batches  [][]domain.DomainEvent
	failures []error
	calls    int
	mu       sync.Mutex
}

func NewEventPublisherSpy() *EventPublisherSpy {
	return &EventPublisherSpy{}
}

// FailNext makes the next call fail with err. Calls queue up in order.
func (s *EventPublisherSpy) FailNext(err error) *EventPublisherSpy {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, err)

	return s
}

func (s *EventPublisherSpy) PublishEvents(_ context.Context, events []domain.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]

		return err
	}

	s.batches = append(s.batches, append([]domain.DomainEvent(nil), events...))

	return nil
}

// Calls returns how often PublishEvents was invoked, failed calls included.
func (s *EventPublisherSpy) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

// Batches returns the successfully published batches in call order.
func (s *EventPublisherSpy) Batches() [][]domain.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]domain.DomainEvent(nil), s.batches...)
}

// Events returns all successfully published events flattened in publishing order.
func (s *EventPublisherSpy) Events() []domain.DomainEvent {
	events := make([]domain.DomainEvent, 0)

	for _, batch := range s.Batches() {
		events = append(events, batch...)
	}

	return events
}

// EventNames returns the names of Events().
func (s *EventPublisherSpy) EventNames() []string {
	events := s.Events()
	names := make([]string, 0, len(events))

	for _, event := range events {
		names = append(names, event.EventName())
	}

	return names
}

var _ repository.EventPublisher = (*EventPublisherSpy)(nil)
