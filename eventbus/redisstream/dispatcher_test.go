package redisstream_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus"
	"github.com/AntonStoeckl/ddd-toolkit-go/eventbus/redisstream"
)

func newRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, server
}

func newEvent(t *testing.T, name string, data map[string]any) domain.DomainEvent {
	t.Helper()

	event, err := domain.NewEvent(
		name,
		domain.StringID("cus-1"),
		data,
		domain.WithOccurredOn(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)),
	)
	require.NoError(t, err)

	return event
}

func Test_Dispatch_AppendsOneEntryPerEventInOrder(t *testing.T) {
	ctx := context.Background()
	client, _ := newRedisClient(t)

	dispatcher, err := redisstream.NewDispatcher(client, redisstream.WithStreamName("customers"))
	require.NoError(t, err)

	publisher, err := eventbus.NewPublisher(dispatcher)
	require.NoError(t, err)

	require.NoError(t, publisher.PublishEvents(ctx, []domain.DomainEvent{
		newEvent(t, "CustomerRegistered", map[string]any{"name": "Jane"}),
		newEvent(t, "CustomerRenamed", map[string]any{"old_name": "Jane", "new_name": "Joan"}),
	}))

	entries, err := client.XRange(ctx, "customers", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "CustomerRegistered", entries[0].Values[redisstream.FieldEventName])
	assert.Equal(t, "CustomerRenamed", entries[1].Values[redisstream.FieldEventName])
	assert.Equal(t, "cus-1", entries[1].Values[redisstream.FieldAggregateID])

	var payload map[string]any
	require.NoError(t, jsoniter.UnmarshalFromString(entries[1].Values[redisstream.FieldPayload].(string), &payload))
	assert.Equal(t, "CustomerRenamed", payload["event_name"])
	assert.Equal(t, "2025-06-01T09:30:00Z", payload["occurred_on"])
	assert.Equal(t, map[string]any{"old_name": "Jane", "new_name": "Joan"}, payload["event_data"])
	assert.Equal(t, float64(1), payload["event_version"])
}

func Test_Dispatch_TrimsToMaxLen(t *testing.T) {
	ctx := context.Background()
	client, _ := newRedisClient(t)

	dispatcher, err := redisstream.NewDispatcher(client, redisstream.WithMaxLen(2))
	require.NoError(t, err)
	assert.Equal(t, "domain-events", dispatcher.Stream())

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, dispatcher.Dispatch(ctx, newEvent(t, name, nil)))
	}

	entries, err := client.XRange(ctx, "domain-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "B", entries[0].Values[redisstream.FieldEventName])
}

func Test_Dispatch_FailsWhenRedisIsDown(t *testing.T) {
	client, server := newRedisClient(t)

	dispatcher, err := redisstream.NewDispatcher(client)
	require.NoError(t, err)

	server.Close()

	err = dispatcher.Dispatch(context.Background(), newEvent(t, "A", nil))
	assert.ErrorIs(t, err, redisstream.ErrAppendingEventFailed)
}

func Test_NewDispatcher_InvalidOptions(t *testing.T) {
	client, _ := newRedisClient(t)

	_, err := redisstream.NewDispatcher(nil)
	assert.ErrorIs(t, err, redisstream.ErrNilRedisClient)

	_, err = redisstream.NewDispatcher(client, redisstream.WithStreamName(""))
	assert.ErrorIs(t, err, redisstream.ErrEmptyStreamName)

	_, err = redisstream.NewDispatcher(client, redisstream.WithMaxLen(-1))
	assert.ErrorIs(t, err, redisstream.ErrNegativeMaxLen)
}
