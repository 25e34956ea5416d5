package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientIsEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	// nothing listens on port 1
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	data, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.Error(t, c.Ping(ctx))
}

func newRedisClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_RoundTrip(t *testing.T) {
	c, mr := newRedisClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "user:1", []byte(`{"id":1}`), time.Minute))

	data, err := c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":1}`), data)
	assert.Equal(t, time.Minute, mr.TTL("user:1"))

	require.NoError(t, c.Delete(ctx, "user:1"))
	data, err = c.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.False(t, mr.Exists("user:1"))
}

func TestClient_SetSkipsNonPositiveTTL(t *testing.T) {
	c, mr := newRedisClient(t)
	ctx := context.Background()

	for _, ttl := range []time.Duration{0, -time.Second} {
		require.NoError(t, c.Set(ctx, "k", []byte("v"), ttl))
		assert.False(t, mr.Exists("k"), "ttl %v", ttl)
	}
}

func TestClient_EntriesExpire(t *testing.T) {
	c, mr := newRedisClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}
