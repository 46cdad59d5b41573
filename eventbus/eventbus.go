package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

var (
	ErrDispatchingEventFailed = errors.New("dispatching domain event failed")
	ErrNilDispatcher          = errors.New("nil dispatcher supplied")
	ErrNilHandler             = errors.New("nil event handler supplied")
)

const (
	logMsgEventDispatched = "domain event dispatched"
	logMsgDispatchFailed  = "dispatching domain event failed"
	logAttrEventName      = "event_name"
	logAttrAggregateID    = "aggregate_id"
	logAttrPosition       = "position"
	logAttrError          = "error"
)

// Logger interface for dispatch logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Dispatcher delivers a single domain event.
type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.DomainEvent) error
}

// DispatcherFunc adapts a function to a Dispatcher.
type DispatcherFunc func(ctx context.Context, event domain.DomainEvent) error

func (f DispatcherFunc) Dispatch(ctx context.Context, event domain.DomainEvent) error {
	return f(ctx, event)
}

// Publisher dispatches batches of events in order.
type Publisher struct {
	dispatcher Dispatcher
	logger     Logger
}

// Option defines a functional option for configuring a Publisher.
type Option func(*Publisher) error

// WithLogger sets the logger; dispatched events are logged at debug level, failures at error level.
func WithLogger(logger Logger) Option {
	return func(p *Publisher) error {
		p.logger = logger
		return nil
	}
}

func NewPublisher(dispatcher Dispatcher, options ...Option) (*Publisher, error) {
	if dispatcher == nil {
		return nil, ErrNilDispatcher
	}

	publisher := &Publisher{dispatcher: dispatcher}

	for _, option := range options {
		if err := option(publisher); err != nil {
			return nil, err
		}
	}

	return publisher, nil
}

// PublishEvents dispatches the events in the given order. The first failure aborts the rest
// and is returned wrapped in ErrDispatchingEventFailed. There are no retries.
func (p *Publisher) PublishEvents(ctx context.Context, events []domain.DomainEvent) error {
	for i, event := range events {
		if event == nil {
			return errors.Join(ErrDispatchingEventFailed, domain.ErrNilEvent)
		}

		if err := ctx.Err(); err != nil {
			return errors.Join(ErrDispatchingEventFailed, err)
		}

		if err := p.dispatcher.Dispatch(ctx, event); err != nil {
			p.logError(event, i, err)
			return errors.Join(ErrDispatchingEventFailed, fmt.Errorf("event %s: %w", event.EventName(), err))
		}

		if p.logger != nil {
			p.logger.Debug(logMsgEventDispatched,
				logAttrEventName, event.EventName(),
				logAttrAggregateID, event.AggregateID().String(),
				logAttrPosition, i,
			)
		}
	}

	return nil
}

func (p *Publisher) logError(event domain.DomainEvent, position int, err error) {
	if p.logger == nil {
		return
	}

	p.logger.Error(logMsgDispatchFailed,
		logAttrError, err.Error(),
		logAttrEventName, event.EventName(),
		logAttrPosition, position,
	)
}

// Handler reacts to a dispatched event.
type Handler func(ctx context.Context, event domain.DomainEvent) error

// Bus is an in-process Dispatcher. Handlers subscribed to an event name run before catch-all
// handlers, each group in subscription order. The first handler error stops the dispatch.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	catchAll []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(eventName string, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventName] = append(b.handlers[eventName], handler)

	return nil
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.catchAll = append(b.catchAll, handler)

	return nil
}

func (b *Bus) Dispatch(ctx context.Context, event domain.DomainEvent) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[event.EventName()])+len(b.catchAll))
	handlers = append(handlers, b.handlers[event.EventName()]...)
	handlers = append(handlers, b.catchAll...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

// Fanout dispatches every event to all dispatchers in order and stops at the first failure.
type Fanout []Dispatcher

func (f Fanout) Dispatch(ctx context.Context, event domain.DomainEvent) error {
	for _, dispatcher := range f {
		if err := dispatcher.Dispatch(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

var (
	_ Dispatcher = DispatcherFunc(nil)
	_ Dispatcher = (*Bus)(nil)
	_ Dispatcher = Fanout(nil)
)
