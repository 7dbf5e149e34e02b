package orchestrator

import "sync"

// Snapshot is the orchestrator's immutable view of a repository at one
// point in time: file paths mapped to their content. A Snapshot is never
// mutated after construction; per-agent changes accumulate in an Overlay
// instead (spec.md §4.I, "Snapshot & transactions").
type Snapshot struct {
	Commit string
	Files  map[string][]byte
}

// NewSnapshot returns a Snapshot over files, copying nothing: callers must
// not mutate the passed map or its byte slices afterward.
func NewSnapshot(commit string, files map[string][]byte) *Snapshot {
	return &Snapshot{Commit: commit, Files: files}
}

// File returns the content of path in the snapshot proper, ignoring any
// overlay.
func (s *Snapshot) File(path string) ([]byte, bool) {
	b, ok := s.Files[path]

	return b, ok
}

// Overlay accumulates pending per-agent changes as an ordered list of
// writes/deletes over a base Snapshot, applying merge-on-read rather than
// ever cloning the base. Multiple overlays may share one Snapshot safely;
// an Overlay's own state is guarded by a mutex since orchestrator stages
// run concurrently.
type Overlay struct {
	base    *Snapshot
	mu      sync.RWMutex
	writes  map[string][]byte
	deletes map[string]bool
	order   []string // paths touched, in write order, for replay determinism
}

// NewOverlay returns an empty Overlay on top of base.
func NewOverlay(base *Snapshot) *Overlay {
	return &Overlay{base: base, writes: make(map[string][]byte), deletes: make(map[string]bool)}
}

// Put records a pending write. It does not touch the base Snapshot.
func (o *Overlay) Put(path string, content []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.deletes[path] {
		if _, exists := o.writes[path]; !exists {
			o.order = append(o.order, path)
		}
	} else {
		delete(o.deletes, path)
		o.order = append(o.order, path)
	}

	o.writes[path] = content
}

// Delete records a pending delete, masking any base content for path.
func (o *Overlay) Delete(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.writes, path)
	o.deletes[path] = true
}

// File resolves path through the overlay first, falling back to the base
// Snapshot. Returns ok=false if path is deleted in the overlay or absent
// from both.
func (o *Overlay) File(path string) ([]byte, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.deletes[path] {
		return nil, false
	}

	if b, ok := o.writes[path]; ok {
		return b, true
	}

	return o.base.File(path)
}

// PendingPaths returns every path this overlay has written or deleted, in
// the order first touched.
func (o *Overlay) PendingPaths() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]string, len(o.order))
	copy(out, o.order)

	return out
}

// Watermark distinguishes the consistency boundary an overlay has fully
// applied (AppliedUpTo) from what a reader may currently observe
// (Health) — spec.md §4.I's transaction watermark.
type Watermark struct {
	AppliedUpTo int64
	Health      int64
}

// Advance bumps AppliedUpTo to to, which must be >= the current value.
// Health is left untouched: it only moves once readers are known to have
// caught up, via ObserveHealth.
func (w *Watermark) Advance(to int64) {
	if to > w.AppliedUpTo {
		w.AppliedUpTo = to
	}
}

// ObserveHealth records that readers have observed state up to to.
func (w *Watermark) ObserveHealth(to int64) {
	if to > w.Health {
		w.Health = to
	}
}

// Lagging reports whether Health trails AppliedUpTo, i.e. some applied
// change has not yet been observed by any reader.
func (w *Watermark) Lagging() bool { return w.Health < w.AppliedUpTo }
