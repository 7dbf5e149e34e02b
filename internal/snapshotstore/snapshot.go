package snapshotstore

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/codeintel-engine/engine/pkg/gitlib"
)

// Chunk is one piece of a file's content as it streams in to or out
// of the store, in the order spec.md §4.K's save_chunk/get_chunks
// contract expects.
type Chunk struct {
	Index int
	Data  []byte
}

// defaultChunkSize bounds the size of chunks GetChunks splits a
// file's content into.
const defaultChunkSize = 1 << 20 // 1 MiB

// ReserveSnapshot allocates a provisional reservation id that
// SaveChunk stages content against before SaveSnapshot finalizes it
// into an immutable, content-addressed ID. The reservation id is
// never itself a snapshot identity: a snapshot's real ID only exists
// once its tree has been built, since that is the first point its
// content hash is known.
func (s *Store) ReserveSnapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	reservation := fmt.Sprintf("staging-%d", s.counter)
	s.staging[reservation] = make(map[string][][]byte)

	return reservation
}

// SaveChunk appends chunk to the staged content for path under an
// in-progress reservation (see ReserveSnapshot). Chunks for the same
// path must arrive in Index order; SaveSnapshot concatenates them as
// staged.
func (s *Store) SaveChunk(reservation, path string, chunk Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, ok := s.staging[reservation]
	if !ok {
		return fmt.Errorf("snapshotstore: unknown reservation %q", reservation)
	}

	files[path] = append(files[path], chunk.Data)
	s.staging[reservation] = files

	return nil
}

// Files is a file path to full content mapping; SaveSnapshot accepts
// these alongside any content staged via SaveChunk so a caller may
// mix whole-file and chunked uploads in the same snapshot.
type Files map[string][]byte

// SaveSnapshot finalizes reservation (if nonempty) plus any whole
// files supplied directly in extra, writing a content-addressed git
// blob per file and a tree over all of them, and returns the new
// snapshot's ID. The reservation, if given, is discarded afterward:
// its staged content has no further identity of its own once folded
// into the returned tree.
func (s *Store) SaveSnapshot(reservation string, extra Files) (ID, error) {
	s.mu.Lock()
	staged := s.staging[reservation]
	delete(s.staging, reservation)
	s.mu.Unlock()

	builder, err := s.repo.TreeBuilder()
	if err != nil {
		return ID{}, fmt.Errorf("snapshotstore: new tree builder: %w", err)
	}
	defer builder.Free()

	for path, chunks := range staged {
		if err := s.writeEntry(builder, path, concatChunks(chunks)); err != nil {
			return ID{}, err
		}
	}

	for path, content := range extra {
		if err := s.writeEntry(builder, path, content); err != nil {
			return ID{}, err
		}
	}

	treeOid, err := builder.Write()
	if err != nil {
		return ID{}, fmt.Errorf("snapshotstore: write tree: %w", err)
	}

	return gitlib.HashFromOid(treeOid), nil
}

// writeEntry creates a content-addressed blob for content and
// registers it under path in builder. Flat paths only: path becomes a
// single tree entry name and is not expanded into nested subtrees, and
// libgit2 rejects an entry name containing "/", so such a path fails
// with an error.
func (s *Store) writeEntry(builder *git2go.TreeBuilder, path string, content []byte) error {
	oid, err := s.repo.CreateBlobFromBuffer(content)
	if err != nil {
		return fmt.Errorf("snapshotstore: write blob for %q: %w", path, err)
	}

	if err := builder.Insert(path, oid, git2go.FilemodeBlob); err != nil {
		return fmt.Errorf("snapshotstore: insert tree entry for %q: %w", path, err)
	}

	return nil
}

func concatChunks(chunks [][]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}

	return out
}

// GetChunks returns path's content within snapshot id, split into
// fixed-size chunks in order.
func (s *Store) GetChunks(id ID, path string) ([]Chunk, error) {
	content, err := s.fileContent(id, path)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk

	for offset, idx := 0, 0; offset < len(content); idx++ {
		end := offset + defaultChunkSize
		if end > len(content) {
			end = len(content)
		}

		chunks = append(chunks, Chunk{Index: idx, Data: content[offset:end]})
		offset = end
	}

	if len(content) == 0 {
		chunks = []Chunk{{Index: 0, Data: nil}}
	}

	return chunks, nil
}

// fileContent looks up path's blob within snapshot id's tree.
func (s *Store) fileContent(id ID, path string) ([]byte, error) {
	tree, err := s.repo.LookupTree(id.ToOid())
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: lookup snapshot %s: %w", id.String(), err)
	}
	defer tree.Free()

	entry, err := tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: %q not present in snapshot %s: %w", path, id.String(), err)
	}

	blob, err := s.repo.LookupBlob(entry.Id)
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: lookup blob for %q: %w", path, err)
	}
	defer blob.Free()

	content := make([]byte, blob.Size())
	copy(content, blob.Contents())

	return content, nil
}
