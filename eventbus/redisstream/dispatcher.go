// Package redisstream provides an eventbus.Dispatcher that appends domain events to a Redis stream.
//
// Every event becomes one stream entry with the fields event_name, aggregate_id, and payload.
// The payload is the JSON form of domain.EventToMap.
package redisstream

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus"
)

const (
	defaultStreamName = "domain-events"

	FieldEventName   = "event_name"
	FieldAggregateID = "aggregate_id"
	FieldPayload     = "payload"
)

var (
	ErrNilRedisClient       = errors.New("nil redis client supplied")
	ErrEmptyStreamName      = errors.New("empty stream name supplied")
	ErrNegativeMaxLen       = errors.New("negative stream max length supplied")
	ErrEncodingEventFailed  = errors.New("encoding domain event failed")
	ErrAppendingEventFailed = errors.New("appending domain event to stream failed")
)

// Dispatcher appends events to one Redis stream.
type Dispatcher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// Option defines a functional option for configuring a Dispatcher.
type Option func(*Dispatcher) error

// WithStreamName sets the stream key, "domain-events" by default.
func WithStreamName(stream string) Option {
	return func(d *Dispatcher) error {
		if stream == "" {
			return ErrEmptyStreamName
		}

		d.stream = stream

		return nil
	}
}

// WithMaxLen caps the stream at maxLen entries; 0 keeps all entries.
func WithMaxLen(maxLen int64) Option {
	return func(d *Dispatcher) error {
		if maxLen < 0 {
			return ErrNegativeMaxLen
		}

		d.maxLen = maxLen

		return nil
	}
}

func NewDispatcher(client redis.Cmdable, options ...Option) (*Dispatcher, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}

	dispatcher := &Dispatcher{client: client, stream: defaultStreamName}

	for _, option := range options {
		if err := option(dispatcher); err != nil {
			return nil, err
		}
	}

	return dispatcher, nil
}

func (d *Dispatcher) Stream() string {
	return d.stream
}

// Dispatch appends the event and returns once Redis acknowledged the entry.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.DomainEvent) error {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(domain.EventToMap(event))
	if err != nil {
		return errors.Join(ErrEncodingEventFailed, err)
	}

	args := &redis.XAddArgs{
		Stream: d.stream,
		MaxLen: d.maxLen,
		Values: map[string]any{
			FieldEventName:   event.EventName(),
			FieldAggregateID: event.AggregateID().String(),
			FieldPayload:     payload,
		},
	}

	if err = d.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Join(ErrAppendingEventFailed, err)
	}

	return nil
}

var _ eventbus.Dispatcher = (*Dispatcher)(nil)
