package snapshotstore

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/codeintel-engine/engine/internal/orchestrator"
	"github.com/codeintel-engine/engine/pkg/gitlib"
)

// ReplaceFile implements spec.md §4.K's replace_file: given the
// snapshot for oldCommit, produce a new snapshot with path's content
// replaced by the concatenation of newChunks, leaving every other
// file's blob untouched (and so, by content-addressing, unchanged
// files keep their existing blob id rather than being rewritten).
// newDeps is registered in depGraph as the files path depends on, so
// DependencyGraph.AffectedBy on a later change to one of them reaches
// path. repo and newCommit are not used: the store is commit-agnostic,
// since its own identity for a snapshot is always its tree's content
// hash rather than any particular commit that happened to produce it.
func (s *Store) ReplaceFile(
	_ string, // repo: not used by the store
	oldCommit ID,
	_ string, // newCommit: not used by the store
	path string,
	newChunks []Chunk,
	newDeps []string,
	depGraph *orchestrator.DependencyGraph,
) (ID, error) {
	oldTree, err := s.repo.LookupTree(oldCommit.ToOid())
	if err != nil {
		return ID{}, fmt.Errorf("snapshotstore: lookup snapshot %s: %w", oldCommit.String(), err)
	}
	defer oldTree.Free()

	builder, err := s.repo.TreeBuilder()
	if err != nil {
		return ID{}, fmt.Errorf("snapshotstore: new tree builder: %w", err)
	}
	defer builder.Free()

	if err := copyTreeEntries(builder, oldTree, path); err != nil {
		return ID{}, err
	}

	content := make([]byte, 0, len(newChunks)*defaultChunkSize)
	for _, c := range newChunks {
		content = append(content, c.Data...)
	}

	if err := s.writeEntry(builder, path, content); err != nil {
		return ID{}, err
	}

	newTreeOid, err := builder.Write()
	if err != nil {
		return ID{}, fmt.Errorf("snapshotstore: write replaced tree: %w", err)
	}

	if depGraph != nil {
		depGraph.Register(path, newDeps)
	}

	return gitlib.HashFromOid(newTreeOid), nil
}

// copyTreeEntries copies every entry of oldTree into builder except
// skipPath, which the caller overwrites separately with its new
// content.
func copyTreeEntries(builder *git2go.TreeBuilder, oldTree *git2go.Tree, skipPath string) error {
	var copyErr error

	walkErr := oldTree.Walk(func(_ string, entry *git2go.TreeEntry) int {
		if entry.Name == skipPath {
			return 0
		}

		if err := builder.Insert(entry.Name, entry.Id, entry.Filemode); err != nil {
			copyErr = fmt.Errorf("snapshotstore: copy entry %q: %w", entry.Name, err)

			return -1
		}

		return 0
	})

	if walkErr != nil {
		return fmt.Errorf("snapshotstore: walk tree: %w", walkErr)
	}

	return copyErr
}
