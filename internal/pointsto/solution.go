package pointsto

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// locationTable interns Location ids to the dense uint32 ids a
// roaring.Bitmap stores, and back. Roaring's containers defer sorting
// internally, matching the "sparse bitmap with deferred sorting"
// representation spec.md §3 calls for.
type locationTable struct {
	mu     sync.RWMutex
	byID   map[Location]uint32
	byUint []Location
}

func newLocationTable() *locationTable {
	return &locationTable{byID: make(map[Location]uint32)}
}

func (t *locationTable) intern(loc Location) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id, ok := t.byID[loc]; ok {
		return id
	}

	id := uint32(len(t.byUint))
	t.byID[loc] = id
	t.byUint = append(t.byUint, loc)

	return id
}

func (t *locationTable) lookup(id uint32) Location {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.byUint[id]
}

// Solution is a solved points-to graph: the set of abstract locations each
// Var may refer to.
type Solution struct {
	table *locationTable
	sets  map[Var]*roaring.Bitmap
}

func newSolution(table *locationTable) *Solution {
	return &Solution{table: table, sets: make(map[Var]*roaring.Bitmap)}
}

func (s *Solution) setFor(v Var) *roaring.Bitmap {
	bm, ok := s.sets[v]
	if !ok {
		bm = roaring.New()
		s.sets[v] = bm
	}

	return bm
}

// PointsTo returns the locations v may refer to, in ascending id order
// (roaring iterates sorted). A nil/empty result means v was never
// constrained, not that it provably points nowhere.
func (s *Solution) PointsTo(v Var) []Location {
	bm, ok := s.sets[v]
	if !ok {
		return nil
	}

	out := make([]Location, 0, bm.GetCardinality())

	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, s.table.lookup(it.Next()))
	}

	return out
}

// MayAlias reports whether v and w's points-to sets intersect.
func (s *Solution) MayAlias(v, w Var) bool {
	a, aok := s.sets[v]
	b, bok := s.sets[w]

	if !aok || !bok {
		return false
	}

	return a.Intersects(b)
}

// Vars returns every variable the solution has a points-to set for. Order
// is unspecified; callers that need determinism should sort the result.
func (s *Solution) Vars() []Var {
	out := make([]Var, 0, len(s.sets))
	for v := range s.sets {
		out = append(out, v)
	}

	return out
}
