package pointsto

import "github.com/RoaringBitmap/roaring/v2"

// DemandDriven answers single-variable points-to queries without running a
// full Andersen fixpoint: it expands the same constraint graph Andersen
// would build, but only along the edges reachable backward from the
// queried variable, and memoizes each variable's result so repeated or
// overlapping queries reuse prior work (spec.md §4.F).
type DemandDriven struct {
	table *locationTable

	alloc       map[Var][]Location
	copyFrom    map[Var][]Var // v's copy predecessors: w such that v ⊇ w
	loadFrom    map[Var][]Var // v's load predecessors: w such that v ⊇ *w
	storeInto   map[Var][]storeEdge
	memo        map[Var]*roaring.Bitmap
	inProgress  map[Var]bool
}

type storeEdge struct {
	via Var // the pointer (v in "*v ⊇ w")
	src Var // the value stored (w)
}

// NewDemandDriven returns an empty demand-driven solver. Constraints are
// recorded exactly as Andersen would see them; only the query strategy
// differs.
func NewDemandDriven() *DemandDriven {
	return &DemandDriven{
		table:      newLocationTable(),
		alloc:      make(map[Var][]Location),
		copyFrom:   make(map[Var][]Var),
		loadFrom:   make(map[Var][]Var),
		storeInto:  make(map[Var][]storeEdge),
		memo:       make(map[Var]*roaring.Bitmap),
		inProgress: make(map[Var]bool),
	}
}

// AddAlloc implements Analyzer.
func (d *DemandDriven) AddAlloc(v Var, loc Location) {
	d.alloc[v] = append(d.alloc[v], loc)
	delete(d.memo, v)
}

// AddCopy implements Analyzer: v ⊇ w.
func (d *DemandDriven) AddCopy(v, w Var) {
	d.copyFrom[v] = append(d.copyFrom[v], w)
	delete(d.memo, v)
}

// AddLoad implements Analyzer: v ⊇ *w.
func (d *DemandDriven) AddLoad(v, w Var) {
	d.loadFrom[v] = append(d.loadFrom[v], w)
	delete(d.memo, v)
}

// AddStore implements Analyzer: *v ⊇ w. Stores don't affect v's own
// points-to set, only whatever v points to, so they're indexed by the
// pointer var and consulted when expanding a load through it.
func (d *DemandDriven) AddStore(v, w Var) {
	d.storeInto[v] = append(d.storeInto[v], storeEdge{via: v, src: w})
}

// AddConstraint implements Analyzer.
func (d *DemandDriven) AddConstraint(c Constraint) {
	dispatchConstraint(d, c)
}

// Solve implements Analyzer by computing every variable that has been
// mentioned in a constraint; this is the "full expansion" fallback. Query
// is the entry point demand-driven callers should prefer.
func (d *DemandDriven) Solve() (*Solution, error) {
	sol := newSolution(d.table)

	seen := make(map[Var]bool)
	for v := range d.alloc {
		seen[v] = true
	}

	for v := range d.copyFrom {
		seen[v] = true
	}

	for v := range d.loadFrom {
		seen[v] = true
	}

	for v := range seen {
		sol.sets[v] = d.Query(v)
	}

	return sol, nil
}

// Query returns v's points-to set, expanding only the part of the
// constraint graph reachable backward from v, memoizing the result. A
// variable currently being expanded (a cycle in copy/load edges) is
// treated as contributing the empty set to its own computation; the cycle
// converges to the right answer once every member's contribution from
// outside the cycle has been folded in, because the demand-driven result
// is defined to be subset-equivalent to the full Andersen solution, not an
// exact per-step replica of its propagation order.
func (d *DemandDriven) Query(v Var) *roaring.Bitmap {
	if bm, ok := d.memo[v]; ok {
		return bm
	}

	if d.inProgress[v] {
		return roaring.New()
	}

	d.inProgress[v] = true
	defer delete(d.inProgress, v)

	result := roaring.New()

	for _, loc := range d.alloc[v] {
		result.Add(d.table.intern(loc))
	}

	for _, w := range d.copyFrom[v] {
		result.Or(d.Query(w))
	}

	for _, w := range d.loadFrom[v] {
		pointees := d.Query(w)

		it := pointees.Iterator()
		for it.HasNext() {
			loc := d.table.lookup(it.Next())
			result.Or(d.Query(contentsVar(loc)))
		}
	}

	// contentsVar(v) may itself be the target of stores through some
	// pointer var: fold those in too, since a load through w above may
	// have just asked for contentsVar(loc) == v.
	for _, edge := range d.storesTargeting(v) {
		result.Or(d.Query(edge.src))
	}

	d.memo[v] = result

	return result
}

// PointsTo is the convenience form of Query for callers that want Location
// ids back rather than the raw roaring.Bitmap.
func (d *DemandDriven) PointsTo(v Var) []Location {
	bm := d.Query(v)

	out := make([]Location, 0, bm.GetCardinality())

	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, d.table.lookup(it.Next()))
	}

	return out
}

// storesTargeting returns every store edge whose pointer's points-to set
// may include the location v stands in for, i.e. every store that could
// be writing into v when v is itself a contentsVar placeholder.
func (d *DemandDriven) storesTargeting(v Var) []storeEdge {
	var out []storeEdge

	for via, edges := range d.storeInto {
		pointees := d.Query(via)

		it := pointees.Iterator()
		for it.HasNext() {
			loc := d.table.lookup(it.Next())
			if contentsVar(loc) == v {
				out = append(out, edges...)

				break
			}
		}
	}

	return out
}
