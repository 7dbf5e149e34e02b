package tiercache_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/tiercache"
)

func newTestTieredCache(t *testing.T) *tiercache.TieredCache {
	t.Helper()

	l0 := tiercache.NewSessionCache(16)
	l1 := tiercache.NewAdaptiveCache(tiercache.AdaptiveCacheOptions{})

	dc, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dc.Close() })

	return tiercache.NewTieredCache(l0, l1, dc)
}

func TestGetOrComputeCallsComputeExactlyOnceOnMiss(t *testing.T) {
	t.Parallel()

	c := newTestTieredCache(t)

	calls := 0
	compute := func() ([]byte, error) {
		calls++

		return []byte("computed"), nil
	}

	v, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	require.Equal(t, "computed", string(v))

	v2, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	require.Equal(t, "computed", string(v2))

	require.Equal(t, 1, calls)
}

func TestGetOrComputePropagatesComputeError(t *testing.T) {
	t.Parallel()

	c := newTestTieredCache(t)

	wantErr := errors.New("compute failed")

	_, err := c.GetOrCompute("k", func() ([]byte, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr)

	_, ok := c.Get("k")
	require.False(t, ok, "a failed compute must not populate the cache")
}

func TestGetBackfillsL0FromL1(t *testing.T) {
	t.Parallel()

	l0 := tiercache.NewSessionCache(16)
	l1 := tiercache.NewAdaptiveCache(tiercache.AdaptiveCacheOptions{})
	c := tiercache.NewTieredCache(l0, l1, nil)

	l1.Put("k", []byte("from l1"))

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "from l1", string(v))

	v0, ok := l0.Get("k")
	require.True(t, ok, "L0 must be backfilled on an L1 hit")
	require.Equal(t, "from l1", string(v0))
}

func TestTieredCacheWithoutL2DegradesGracefully(t *testing.T) {
	t.Parallel()

	l0 := tiercache.NewSessionCache(16)
	l1 := tiercache.NewAdaptiveCache(tiercache.AdaptiveCacheOptions{})
	c := tiercache.NewTieredCache(l0, l1, nil)

	c.Put("k", []byte("v"))

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", string(v))
}
