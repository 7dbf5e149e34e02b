package tiercache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/tiercache"
)

func TestDiskCacheRoundTripsAValueAfterFlush(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dc, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dc.Close() })

	dc.Put("k1", []byte("hello disk cache"))
	require.NoError(t, dc.Flush())

	v, ok := dc.Get("k1")
	require.True(t, ok)
	require.Equal(t, "hello disk cache", string(v))
}

func TestDiskCacheMissesOnUnknownKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dc, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dc.Close() })

	_, ok := dc.Get("nope")
	require.False(t, ok)
}

func TestDiskCacheSurvivesReopenViaCompanionIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dc, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: dir})
	require.NoError(t, err)

	dc.Put("k1", []byte("persisted across reopen"))
	require.NoError(t, dc.Flush())
	require.NoError(t, dc.Close())

	reopened, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	v, ok := reopened.Get("k1")
	require.True(t, ok)
	require.Equal(t, "persisted across reopen", string(v))
}

func TestDiskCacheDedupSkipsReappendingAnAlreadyPersistedFingerprint(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dc, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: dir, DedupCapacity: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dc.Close() })

	dc.Put("k1", []byte("same content every time"))
	require.NoError(t, dc.Flush())

	dc.Put("k1", []byte("same content every time"))
	require.NoError(t, dc.Flush())

	v, ok := dc.Get("k1")
	require.True(t, ok)
	require.Equal(t, "same content every time", string(v))
}

func TestDiskCacheLaterWriteSupersedesEarlierForSameKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	dc, err := tiercache.NewDiskCache(tiercache.DiskCacheOptions{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dc.Close() })

	dc.Put("k1", []byte("first"))
	dc.Put("k1", []byte("second, and longer"))
	require.NoError(t, dc.Flush())

	v, ok := dc.Get("k1")
	require.True(t, ok)
	require.Equal(t, "second, and longer", string(v))
}
