// Package snapshotstore implements the minimal core contract spec.md
// §4.K names for the Snapshot Store external collaborator:
// save_snapshot, save_chunk, get_chunks, replace_file. Snapshots are
// immutable once finalized, and unchanged files across snapshots
// share identity by content hash — both invariants fall out directly
// from backing the store with libgit2's object database, where a
// blob's id already is its content hash and a tree is already an
// immutable, structurally-shared manifest of path-to-blob-id entries.
package snapshotstore

import (
	"fmt"
	"sync"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/codeintel-engine/engine/pkg/gitlib"
)

// ID identifies a finalized, immutable snapshot: the git tree object
// id whose entries are the snapshot's files.
type ID = gitlib.Hash

// Store is the backing object database for snapshots: every blob and
// tree it writes is content-addressed by libgit2, so two snapshots
// that share a file's content share that file's blob id too.
type Store struct {
	repo *git2go.Repository

	mu      sync.Mutex
	staging map[string]map[string][][]byte // reservation id -> path -> ordered chunks
	counter uint64
}

// NewStore opens the bare git object database rooted at dir,
// initializing one there if none exists yet.
func NewStore(dir string) (*Store, error) {
	repo, err := git2go.OpenRepository(dir)
	if err != nil {
		repo, err = git2go.InitRepository(dir, true)
		if err != nil {
			return nil, fmt.Errorf("snapshotstore: init backing repository: %w", err)
		}
	}

	return &Store{
		repo:    repo,
		staging: make(map[string]map[string][][]byte),
	}, nil
}

// Close releases the backing repository's resources.
func (s *Store) Close() {
	if s.repo != nil {
		s.repo.Free()
		s.repo = nil
	}
}
