package conflictcache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordinate-io/sequencer/internal/conflictcache"
)

func TestReduceKey_Deterministic(t *testing.T) {
	k1 := conflictcache.ReduceKey([]byte("account-42"))
	k2 := conflictcache.ReduceKey([]byte("account-42"))
	assert.Equal(t, k1, k2)
}

func TestReduceKey_DifferentInputsUsuallyDiffer(t *testing.T) {
	k1 := conflictcache.ReduceKey([]byte("account-42"))
	k2 := conflictcache.ReduceKey([]byte("account-43"))
	assert.NotEqual(t, k1, k2)
}

func runCacheContract(t *testing.T, newCache func() conflictcache.Cache) {
	t.Run("miss on empty cache", func(t *testing.T) {
		c := newCache()
		_, found := c.Lookup(conflictcache.Key(1))
		assert.False(t, found)
	})

	t.Run("record then lookup", func(t *testing.T) {
		c := newCache()
		c.RecordWrite(conflictcache.Key(1), 100)

		pos, found := c.Lookup(conflictcache.Key(1))
		require.True(t, found)
		assert.Equal(t, int64(100), pos)
	})

	t.Run("record only raises, never lowers", func(t *testing.T) {
		c := newCache()
		c.RecordWrite(conflictcache.Key(1), 100)
		c.RecordWrite(conflictcache.Key(1), 50)

		pos, found := c.Lookup(conflictcache.Key(1))
		require.True(t, found)
		assert.Equal(t, int64(100), pos)
	})

	t.Run("record raises on strictly greater", func(t *testing.T) {
		c := newCache()
		c.RecordWrite(conflictcache.Key(1), 100)
		c.RecordWrite(conflictcache.Key(1), 150)

		pos, found := c.Lookup(conflictcache.Key(1))
		require.True(t, found)
		assert.Equal(t, int64(150), pos)
	})
}

func TestAdaptiveCache_Contract(t *testing.T) {
	runCacheContract(t, func() conflictcache.Cache {
		return conflictcache.NewAdaptiveCache(10, 0.5, 0.5, zap.NewNop())
	})
}

func TestAdaptiveCache_EvictsWhenFull(t *testing.T) {
	c := conflictcache.NewAdaptiveCache(2, 0.5, 0.5, zap.NewNop())

	c.RecordWrite(conflictcache.Key(1), 1)
	c.RecordWrite(conflictcache.Key(2), 2)
	c.RecordWrite(conflictcache.Key(3), 3)

	assert.Equal(t, 2, c.Len())
}

func TestAdaptiveCache_WeightsAreConfigurable(t *testing.T) {
	// frequencyWeight=1, recencyWeight=0 makes access count the only signal:
	// whichever entry was touched least gets evicted, regardless of timing.
	c := conflictcache.NewAdaptiveCache(2, 1.0, 0.0, zap.NewNop())

	c.RecordWrite(conflictcache.Key(1), 1)
	c.RecordWrite(conflictcache.Key(1), 2)
	c.RecordWrite(conflictcache.Key(1), 3)
	c.RecordWrite(conflictcache.Key(2), 1)

	c.RecordWrite(conflictcache.Key(3), 1)

	_, found1 := c.Lookup(conflictcache.Key(1))
	_, found2 := c.Lookup(conflictcache.Key(2))
	assert.True(t, found1, "frequently accessed entry should survive eviction")
	assert.False(t, found2, "rarely accessed entry should be evicted first")
}

func TestLRUCache_Contract(t *testing.T) {
	runCacheContract(t, func() conflictcache.Cache {
		c, err := conflictcache.NewLRUCache(10)
		require.NoError(t, err)
		return c
	})
}

func TestLRUCache_EvictsWhenFull(t *testing.T) {
	c, err := conflictcache.NewLRUCache(2)
	require.NoError(t, err)

	c.RecordWrite(conflictcache.Key(1), 1)
	c.RecordWrite(conflictcache.Key(2), 2)
	c.RecordWrite(conflictcache.Key(3), 3)

	assert.Equal(t, 2, c.Len())
}
