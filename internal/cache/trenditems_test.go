package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welltrend/internal/cache"
	"welltrend/internal/catalog"
)

func TestTTL(t *testing.T) {
	t.Parallel()

	items := []catalog.TrendItem{{StandardType: 10, Address: 100, Description: "A"}}

	t.Run("get returns a copy", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTL(cache.Config{})
		defer c.Close()

		key := cache.Key{NodeID: "W-1", Backend: "relational"}
		_, ok := c.Get(key)
		assert.False(t, ok)

		c.Set(key, items)
		got, ok := c.Get(key)
		require.True(t, ok)
		got[0].Description = "mutated"

		again, ok := c.Get(key)
		require.True(t, ok)
		assert.Equal(t, "A", again[0].Description)
	})

	t.Run("backend is part of the key", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTL(cache.Config{})
		defer c.Close()

		c.Set(cache.Key{NodeID: "W-1", Backend: "relational"}, items)
		_, ok := c.Get(cache.Key{NodeID: "W-1", Backend: "external"})
		assert.False(t, ok)
	})

	t.Run("capacity evicts", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTL(cache.Config{Capacity: 2})
		defer c.Close()

		for i := range 3 {
			c.Set(cache.Key{NodeID: fmt.Sprintf("W-%d", i)}, items)
		}
		assert.Equal(t, 2, c.Len())
		_, ok := c.Get(cache.Key{NodeID: "W-0"})
		assert.False(t, ok)
	})

	t.Run("ttl expires", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTL(cache.Config{TTL: 20 * time.Millisecond})
		defer c.Close()

		key := cache.Key{NodeID: "W-1"}
		c.Set(key, items)
		require.Eventually(t, func() bool {
			_, ok := c.Get(key)
			return !ok
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("delete and purge", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTL(cache.Config{})
		defer c.Close()

		c.Set(cache.Key{NodeID: "W-1"}, items)
		c.Set(cache.Key{NodeID: "W-2"}, items)
		c.Delete(cache.Key{NodeID: "W-1"})
		assert.Equal(t, 1, c.Len())
		c.Purge()
		assert.Equal(t, 0, c.Len())
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()

		c := cache.NewTTL(cache.Config{})
		defer c.Close()

		var wg sync.WaitGroup
		for i := range 32 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := cache.Key{NodeID: fmt.Sprintf("W-%d", i%4)}
				c.Set(key, items)
				_, _ = c.Get(key)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 4, c.Len())
	})
}
