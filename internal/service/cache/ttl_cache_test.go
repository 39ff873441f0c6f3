package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "forecast:AAPL", []byte("x"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("y"), 0))

	b, ok, err := c.GetBytes(ctx, "forecast:AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("x"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "forecast:AAPL")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)

	_, ok, _ = c.GetBytes(ctx, "missing")
	assert.False(t, ok)
}

var (
	_ BytesCache = (*TTLCache)(nil)
	_ BytesCache = (*RedisCache)(nil)
)
