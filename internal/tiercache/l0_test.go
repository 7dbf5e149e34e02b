package tiercache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/tiercache"
)

func TestSessionCacheRoundTripsAValue(t *testing.T) {
	t.Parallel()

	c := tiercache.NewSessionCache(16)
	c.Put("k1", []byte("v1"))

	v, ok := c.Get("k1")
	require.True(t, ok)
	require.Equal(t, "v1", string(v))
}

func TestSessionCacheMissesOnUnknownKey(t *testing.T) {
	t.Parallel()

	c := tiercache.NewSessionCache(16)

	_, ok := c.Get("nope")
	require.False(t, ok)
}

func TestSessionCacheEvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	t.Parallel()

	c := tiercache.NewSessionCache(2)
	c.Put("a", []byte("1"))
	c.Put("b", []byte("2"))

	// Touch "a" so "b" becomes the least recently used entry.
	_, _ = c.Get("a")

	c.Put("c", []byte("3"))

	_, bOK := c.Get("b")
	_, aOK := c.Get("a")
	_, cOK := c.Get("c")

	require.False(t, bOK)
	require.True(t, aOK)
	require.True(t, cOK)
}

func TestSessionCacheClearResetsLen(t *testing.T) {
	t.Parallel()

	c := tiercache.NewSessionCache(16)
	c.Put("a", []byte("1"))
	require.Equal(t, 1, c.Len())

	c.Clear()
	require.Equal(t, 0, c.Len())
}
