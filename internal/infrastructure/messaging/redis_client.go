package messaging

import (
	"context"
	"io"
	"sync"

	"github.com/HuntedCode/plat-pursuit/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS CLIENT ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

// CacheRedisClient adapts *redis.Cache to the RedisClient interface, letting
// the Redis event bus share one connection pool with the snapshot and
// key-value caches. Close tears down the Pub/Sub subscriptions only; the
// underlying cache stays open for its owner to close.
type CacheRedisClient struct {
	cache *redis.Cache

	mu      sync.Mutex
	pubsubs []io.Closer
}

// NewCacheRedisClient wraps an established Redis cache connection.
func NewCacheRedisClient(cache *redis.Cache) *CacheRedisClient {
	return &CacheRedisClient{cache: cache}
}

// Publish sends a message to the given channel.
func (c *CacheRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.cache.Publish(ctx, channel, message)
}

// Subscribe opens a Pub/Sub subscription and pumps incoming messages into
// a RedisMessage channel. The channel is closed when the subscription ends
// or the context is cancelled.
func (c *CacheRedisClient) Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error) {
	pubsub := c.cache.Subscribe(ctx, channels...)

	// Wait for the subscription confirmation so messages published right
	// after this call are not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	c.mu.Lock()
	c.pubsubs = append(c.pubsubs, pubsub)
	c.mu.Unlock()

	out := make(chan RedisMessage)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close terminates every open subscription.
func (c *CacheRedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for _, ps := range c.pubsubs {
		if err := ps.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.pubsubs = nil

	return firstErr
}

var _ RedisClient = (*CacheRedisClient)(nil)
