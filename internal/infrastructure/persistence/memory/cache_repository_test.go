package memory

import (
	"context"
	"testing"
	"time"

	"github.com/recipewiz/backend/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRepository(t *testing.T) {
	ctx := context.Background()

	newCache := func() (*CacheRepository, *time.Time) {
		now := time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC)
		c := NewCacheRepository(0)
		c.now = func() time.Time { return now }
		return c, &now
	}

	t.Run("SetThenGet_ShouldReturnValue", func(t *testing.T) {
		c, _ := newCache()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		got, err := c.Get(ctx, "k")

		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("MissingKey_ShouldReturnCacheMiss", func(t *testing.T) {
		c, _ := newCache()

		_, err := c.Get(ctx, "absent")

		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
	})

	t.Run("ExpiredKey_ShouldMissAndBeSwept", func(t *testing.T) {
		c, now := newCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		*now = now.Add(2 * time.Minute)

		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, outbound.ErrCacheMiss)
		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, exists)

		c.removeExpired()
		assert.Zero(t, c.Len())
	})

	t.Run("StoredValue_ShouldBeIsolatedFromCaller", func(t *testing.T) {
		c, _ := newCache()
		value := []byte("abc")
		require.NoError(t, c.Set(ctx, "k", value, 0))

		value[0] = 'z'

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("Delete_ShouldRemoveKey", func(t *testing.T) {
		c, _ := newCache()
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		require.NoError(t, c.Delete(ctx, "k"))

		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Close_ShouldBeIdempotent", func(t *testing.T) {
		c := NewCacheRepository(time.Millisecond)

		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})
}
