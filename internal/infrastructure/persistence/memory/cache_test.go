package memory

import (
	"context"
	"testing"
	"time"

	"github.com/HuntedCode/plat-pursuit/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheSetGet(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", payload{Name: "alpha", Count: 3}, 0))

	var got payload
	require.NoError(t, c.Get(ctx, "key", &got))
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestCacheMiss(t *testing.T) {
	c := NewCache()

	var got payload
	err := c.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, shared.ErrCacheMiss)
}

func TestCacheSetReplaces(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", payload{Name: "old"}, 0))
	require.NoError(t, c.Set(ctx, "key", payload{Name: "new"}, 0))

	var got payload
	require.NoError(t, c.Get(ctx, "key", &got))
	assert.Equal(t, "new", got.Name)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "key", payload{Name: "ttl"}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "key", &got))

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	err := c.Get(ctx, "key", &got)
	assert.ErrorIs(t, err, shared.ErrCacheMiss)
}

func TestCacheDelete(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", payload{}, 0))
	require.NoError(t, c.Set(ctx, "b", payload{}, 0))
	require.NoError(t, c.Delete(ctx, "a", "missing"))

	var got payload
	assert.ErrorIs(t, c.Get(ctx, "a", &got), shared.ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "b", &got))
	assert.Equal(t, 1, c.Len())
}
