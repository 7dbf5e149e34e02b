package pointsto

import "github.com/RoaringBitmap/roaring/v2"

// Steensgaard is the equality-based points-to solver (spec.md §4.F): every
// copy, load and store constraint unifies two representatives in a
// union-find partition, and every member of a partition shares its
// representative's points-to set. Solution.MayAlias reports two variables
// as aliases when their sets intersect, so members of one partition with a
// non-empty set always alias. It
// trades Andersen's precision for near-linear O(n·α(n)) running time, the
// union-find structure unioned by rank with path compression in the same
// disjoint-set idiom as a minimum-spanning-tree solver.
type Steensgaard struct {
	table *locationTable

	parent map[Var]Var
	rank   map[Var]int

	// pts holds the points-to set of each partition's representative; it
	// is the union of everything ever unified into that partition.
	pts map[Var]*roaring.Bitmap

	order []Var
	seen  map[Var]bool
}

// NewSteensgaard returns an empty Steensgaard solver.
func NewSteensgaard() *Steensgaard {
	return &Steensgaard{
		table:  newLocationTable(),
		parent: make(map[Var]Var),
		rank:   make(map[Var]int),
		pts:    make(map[Var]*roaring.Bitmap),
		seen:   make(map[Var]bool),
	}
}

func (s *Steensgaard) touch(v Var) {
	if s.seen[v] {
		return
	}

	s.seen[v] = true
	s.order = append(s.order, v)
	s.parent[v] = v
	s.rank[v] = 0
}

// find walks up to the partition root, compressing the path so future
// finds are O(1) amortized.
func (s *Steensgaard) find(v Var) Var {
	s.touch(v)

	for s.parent[v] != v {
		s.parent[v] = s.parent[s.parent[v]]
		v = s.parent[v]
	}

	return v
}

// union merges the partitions of u and v by rank, keeping the points-to
// set of whichever representative survives as the union of both (equality
// means "these two may denote the same memory", so their targets must be
// merged too — Steensgaard's one-pass unification of pointed-to types).
func (s *Steensgaard) union(u, v Var) Var {
	ru, rv := s.find(u), s.find(v)
	if ru == rv {
		return ru
	}

	if s.rank[ru] < s.rank[rv] {
		ru, rv = rv, ru
	}

	s.parent[rv] = ru

	if s.rank[ru] == s.rank[rv] {
		s.rank[ru]++
	}

	merged := s.ptsSet(ru)
	merged.Or(s.ptsSet(rv))
	s.pts[ru] = merged
	delete(s.pts, rv)

	return ru
}

func (s *Steensgaard) ptsSet(v Var) *roaring.Bitmap {
	bm, ok := s.pts[v]
	if !ok {
		bm = roaring.New()
		s.pts[v] = bm
	}

	return bm
}

// AddAlloc implements Analyzer.
func (s *Steensgaard) AddAlloc(v Var, loc Location) {
	r := s.find(v)
	s.ptsSet(r).Add(s.table.intern(loc))
}

// AddCopy implements Analyzer. Steensgaard treats copy as equality: after
// "v = w", v and w may alias the same things in either direction, so their
// partitions unify rather than one merely including the other's set.
func (s *Steensgaard) AddCopy(v, w Var) {
	s.union(v, w)
}

// AddLoad implements Analyzer: v = *w. The location w points to and the
// location v holds are unified (one-level type unification), matching
// Steensgaard's treatment of load/store as "the pointee of w equals v".
func (s *Steensgaard) AddLoad(v, w Var) {
	s.touch(v)
	s.touch(w)
	s.union(v, contentsVar(s.pointeePlaceholder(w)))
}

// AddStore implements Analyzer: *v = w, unifying w with whatever v's
// pointee partition is.
func (s *Steensgaard) AddStore(v, w Var) {
	s.touch(v)
	s.touch(w)
	s.union(contentsVar(s.pointeePlaceholder(v)), w)
}

// pointeePlaceholder gives Load/Store a single synthetic location standing
// for "whatever v's partition points to", so it can be unified like any
// other var via contentsVar. Using v's own partition root as that
// location's identity keeps the scheme stable under later unions:
// everything unified into v's partition shares the same pointee
// placeholder.
func (s *Steensgaard) pointeePlaceholder(v Var) Location {
	return s.find(v)
}

// AddConstraint implements Analyzer.
func (s *Steensgaard) AddConstraint(c Constraint) {
	dispatchConstraint(s, c)
}

// Solve implements Analyzer: Steensgaard's partitions are already the
// fixpoint once every constraint has been applied, so this just reads them
// out into a Solution (every var in a partition shares its representative's
// points-to set).
func (s *Steensgaard) Solve() (*Solution, error) {
	sol := newSolution(s.table)

	for _, v := range s.order {
		sol.sets[v] = s.ptsSet(s.find(v))
	}

	return sol, nil
}
