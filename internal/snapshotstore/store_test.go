package snapshotstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/orchestrator"
	"github.com/codeintel-engine/engine/internal/snapshotstore"
)

func newTestStore(t *testing.T) *snapshotstore.Store {
	t.Helper()

	store, err := snapshotstore.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store
}

func TestSaveSnapshotRoundTripsWholeFiles(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	id, err := store.SaveSnapshot("", snapshotstore.Files{
		"a.go": []byte("package a"),
		"b.go": []byte("package b"),
	})
	require.NoError(t, err)

	chunks, err := store.GetChunks(id, "a.go")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, "package a", string(chunks[0].Data))
}

func TestSaveSnapshotUnchangedFileSharesContentHash(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	id1, err := store.SaveSnapshot("", snapshotstore.Files{"a.go": []byte("package a")})
	require.NoError(t, err)

	id2, err := store.SaveSnapshot("", snapshotstore.Files{
		"a.go": []byte("package a"),
		"b.go": []byte("package b"),
	})
	require.NoError(t, err)

	require.NotEqual(t, id1, id2, "snapshots with different file sets must differ")

	chunksFromID1, err := store.GetChunks(id1, "a.go")
	require.NoError(t, err)
	chunksFromID2, err := store.GetChunks(id2, "a.go")
	require.NoError(t, err)
	require.Equal(t, chunksFromID1, chunksFromID2, "unchanged a.go content must round-trip identically")
}

func TestSaveChunkStagesContentAcrossMultipleCalls(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	reservation := store.ReserveSnapshot()
	require.NoError(t, store.SaveChunk(reservation, "big.txt", snapshotstore.Chunk{Index: 0, Data: []byte("hello ")}))
	require.NoError(t, store.SaveChunk(reservation, "big.txt", snapshotstore.Chunk{Index: 1, Data: []byte("world")}))

	id, err := store.SaveSnapshot(reservation, nil)
	require.NoError(t, err)

	chunks, err := store.GetChunks(id, "big.txt")
	require.NoError(t, err)
	require.Equal(t, "hello world", string(chunks[0].Data))
}

func TestSaveChunkRejectsUnknownReservation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.SaveChunk("nope", "big.txt", snapshotstore.Chunk{Index: 0, Data: []byte("x")})
	require.Error(t, err)
}

func TestGetChunksSplitsLargeContentIntoMultipleChunks(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	large := make([]byte, 3<<20) // 3 MiB, over the 1 MiB chunk size
	for i := range large {
		large[i] = byte(i % 251)
	}

	id, err := store.SaveSnapshot("", snapshotstore.Files{"big.bin": large})
	require.NoError(t, err)

	chunks, err := store.GetChunks(id, "big.bin")
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var reassembled []byte
	for _, c := range chunks {
		reassembled = append(reassembled, c.Data...)
	}

	require.Equal(t, large, reassembled)
}

func TestReplaceFileLeavesOtherFilesUntouched(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	oldID, err := store.SaveSnapshot("", snapshotstore.Files{
		"a.go": []byte("package a"),
		"b.go": []byte("package b, unchanged"),
	})
	require.NoError(t, err)

	depGraph := orchestrator.NewDependencyGraph()

	newID, err := store.ReplaceFile(
		"repo", oldID, "newcommit", "a.go",
		[]snapshotstore.Chunk{{Index: 0, Data: []byte("package a; func F(){}")}},
		[]string{"b.go"},
		depGraph,
	)
	require.NoError(t, err)
	require.NotEqual(t, oldID, newID)

	aChunks, err := store.GetChunks(newID, "a.go")
	require.NoError(t, err)
	require.Contains(t, string(aChunks[0].Data), "func F")

	bOldChunks, err := store.GetChunks(oldID, "b.go")
	require.NoError(t, err)
	bNewChunks, err := store.GetChunks(newID, "b.go")
	require.NoError(t, err)
	require.Equal(t, bOldChunks, bNewChunks, "untouched file must keep identical content across snapshots")

	// a.go now depends on b.go, so a change to b.go reaches a.go.
	affected := depGraph.AffectedBy([]string{"b.go"})
	require.Contains(t, affected, "a.go")
}
