package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────────────────────

type testEvent struct {
	eventType   shared.EventType
	aggregateID string
	occurredAt  time.Time
}

func (e testEvent) EventType() shared.EventType { return e.eventType }
func (e testEvent) AggregateID() string         { return e.aggregateID }
func (e testEvent) OccurredAt() time.Time       { return e.occurredAt }
func (e testEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"id": e.aggregateID}
}

func newTestEvent(et shared.EventType, aggregateID string) testEvent {
	return testEvent{eventType: et, aggregateID: aggregateID, occurredAt: time.Now()}
}

type fakeRedisClient struct {
	mu        sync.Mutex
	published []json.RawMessage
	incoming  chan RedisMessage
	closed    bool
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{incoming: make(chan RedisMessage, 8)}
}

func (c *fakeRedisClient) Publish(_ context.Context, _ string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.published = append(c.published, data)
	c.mu.Unlock()
	return nil
}

func (c *fakeRedisClient) Subscribe(context.Context, ...string) (<-chan RedisMessage, error) {
	return c.incoming, nil
}

func (c *fakeRedisClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeRedisClient) publishedEnvelopes(t *testing.T) []eventEnvelope {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	envelopes := make([]eventEnvelope, 0, len(c.published))
	for _, raw := range c.published {
		var env eventEnvelope
		require.NoError(t, json.Unmarshal(raw, &env))
		envelopes = append(envelopes, env)
	}
	return envelopes
}

func syncBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{AsyncMode: false}
}

// ─────────────────────────────────────────────────────────────────────────────
// In-memory bus
// ─────────────────────────────────────────────────────────────────────────────

func TestInMemoryEventBus_DeliversToTypeAndCatchAllSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	var typed, all []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventBadgeAwarded, func(e shared.Event) error {
		typed = append(typed, e.EventType())
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(newTestEvent(shared.EventBadgeAwarded, "profile-1")))
	require.NoError(t, bus.Publish(newTestEvent(shared.EventRatingSubmitted, "profile-1")))

	assert.Equal(t, []shared.EventType{shared.EventBadgeAwarded}, typed)
	assert.Equal(t, []shared.EventType{shared.EventBadgeAwarded, shared.EventRatingSubmitted}, all)
}

func TestInMemoryEventBus_PublishAfterCloseFails(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	require.NoError(t, bus.Close())

	err := bus.Publish(newTestEvent(shared.EventBadgeAwarded, "profile-1"))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis bus
// ─────────────────────────────────────────────────────────────────────────────

func TestRedisEventBus_PublishesEnvelopeAndDeliversLocally(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "worker-1",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer bus.Close()

	var delivered []string
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		delivered = append(delivered, e.AggregateID())
		return nil
	}))

	require.NoError(t, bus.Publish(newTestEvent(shared.EventLeaderboardRebuilt, "lb_total_xp")))

	assert.Equal(t, []string{"lb_total_xp"}, delivered)

	envelopes := client.publishedEnvelopes(t)
	require.Len(t, envelopes, 1)
	assert.Equal(t, "worker-1", envelopes[0].InstanceID)
	assert.Equal(t, shared.EventLeaderboardRebuilt, envelopes[0].EventType)
	assert.Equal(t, "lb_total_xp", envelopes[0].AggregateID)
}

func TestRedisEventBus_DeliversRemoteEventsAndSkipsOwn(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "api-1",
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)
	defer bus.Close()

	received := make(chan string, 2)
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		received <- e.AggregateID()
		return nil
	}))

	send := func(instanceID, aggregateID string) {
		data, marshalErr := json.Marshal(eventEnvelope{
			InstanceID:  instanceID,
			EventType:   shared.EventMilestoneAwarded,
			AggregateID: aggregateID,
			OccurredAt:  time.Now(),
			Payload:     map[string]interface{}{"id": aggregateID},
		})
		require.NoError(t, marshalErr)
		client.incoming <- RedisMessage{Channel: "plat-pursuit:events", Payload: string(data)}
	}

	// The bus drops its own message and delivers the remote one.
	send("api-1", "self")
	send("worker-1", "remote")

	select {
	case got := <-received:
		assert.Equal(t, "remote", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for remote event")
	}
	assert.Empty(t, received)
}

func TestRedisEventBus_CloseClosesClient(t *testing.T) {
	client := newFakeRedisClient()
	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		LocalBusConfig: syncBusConfig(),
	})
	require.NoError(t, err)

	require.NoError(t, bus.Close())

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.True(t, client.closed)
}

func TestRedisEventBus_RequiresClient(t *testing.T) {
	_, err := NewRedisEventBus(RedisEventBusConfig{})
	assert.Error(t, err)
}
