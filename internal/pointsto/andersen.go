package pointsto

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Andersen is the inclusion-based points-to solver (spec.md §4.F). It
// builds a constraint graph of simple inclusion edges (from Copy
// constraints, and the edges Load/Store constraints materialize once the
// locations they range over are known) and propagates points-to sets to a
// fixpoint with a worklist, differential propagation, and periodic SCC
// collapse.
type Andersen struct {
	table *locationTable

	// succ[v] is the set of vars whose points-to set must include v's
	// points-to set (v -> succ, i.e. pts(v) ⊆ pts(succ)).
	succ map[Var]map[Var]bool

	// loadBy[w] holds every u such that "u ⊇ *w" was asserted: when w
	// gains a location ℓ, an edge contentsVar(ℓ) -> u is materialized.
	loadBy map[Var][]Var
	// storeBy[v] holds every w such that "*v ⊇ w" was asserted: when v
	// gains a location ℓ, an edge w -> contentsVar(ℓ) is materialized.
	storeBy map[Var][]Var

	pts  map[Var]*roaring.Bitmap
	diff map[Var]*roaring.Bitmap

	// materialized avoids re-adding the same dynamic edge on every wave a
	// location is already known to have produced.
	materialized map[[2]Var]bool

	order []Var
	seen  map[Var]bool

	rep map[Var]Var // union-find representative after SCC collapse

	queue  []Var
	queued map[Var]bool
}

// NewAndersen returns an empty Andersen solver.
func NewAndersen() *Andersen {
	return &Andersen{
		table:        newLocationTable(),
		succ:         make(map[Var]map[Var]bool),
		loadBy:       make(map[Var][]Var),
		storeBy:      make(map[Var][]Var),
		pts:          make(map[Var]*roaring.Bitmap),
		diff:         make(map[Var]*roaring.Bitmap),
		materialized: make(map[[2]Var]bool),
		seen:         make(map[Var]bool),
		rep:          make(map[Var]Var),
		queued:       make(map[Var]bool),
	}
}

func (a *Andersen) touch(v Var) {
	if !a.seen[v] {
		a.seen[v] = true
		a.order = append(a.order, v)
	}
}

func (a *Andersen) push(v Var) {
	if bm := a.diff[v]; bm == nil || bm.IsEmpty() {
		return
	}

	if !a.queued[v] {
		a.queued[v] = true
		a.queue = append(a.queue, v)
	}
}

// AddAlloc implements Analyzer.
func (a *Andersen) AddAlloc(v Var, loc Location) {
	a.touch(v)

	id := a.table.intern(loc)
	bm := a.ptsSet(v)

	if !bm.Contains(id) {
		bm.Add(id)
		a.diffSet(v).Add(id)
		a.push(v)
	}
}

// AddCopy implements Analyzer: pts(w) ⊆ pts(v).
func (a *Andersen) AddCopy(v, w Var) {
	a.touch(v)
	a.touch(w)
	a.addEdge(w, v)

	if existing, ok := a.pts[w]; ok {
		a.mergeInto(v, existing)
		a.push(v)
	}
}

// AddLoad implements Analyzer: v ⊇ *w.
func (a *Andersen) AddLoad(v, w Var) {
	a.touch(v)
	a.touch(w)
	a.loadBy[w] = append(a.loadBy[w], v)
	a.materializeLoad(w, v, a.ptsSet(w))
}

// AddStore implements Analyzer: *v ⊇ w.
func (a *Andersen) AddStore(v, w Var) {
	a.touch(v)
	a.touch(w)
	a.storeBy[v] = append(a.storeBy[v], w)
	a.materializeStore(v, w, a.ptsSet(v))
}

// AddConstraint implements Analyzer.
func (a *Andersen) AddConstraint(c Constraint) {
	dispatchConstraint(a, c)
}

func (a *Andersen) ptsSet(v Var) *roaring.Bitmap {
	bm, ok := a.pts[v]
	if !ok {
		bm = roaring.New()
		a.pts[v] = bm
	}

	return bm
}

func (a *Andersen) diffSet(v Var) *roaring.Bitmap {
	bm, ok := a.diff[v]
	if !ok {
		bm = roaring.New()
		a.diff[v] = bm
	}

	return bm
}

func (a *Andersen) addEdge(from, to Var) {
	m, ok := a.succ[from]
	if !ok {
		m = make(map[Var]bool)
		a.succ[from] = m
	}

	m[to] = true
}

// mergeInto adds every location in add not already in v's points-to set,
// recording the delta in v's diff for the next propagation wave.
func (a *Andersen) mergeInto(v Var, add *roaring.Bitmap) {
	bm := a.ptsSet(v)

	fresh := roaring.AndNot(add, bm)
	if fresh.IsEmpty() {
		return
	}

	bm.Or(fresh)
	a.diffSet(v).Or(fresh)
}

// materializeLoad handles "u ⊇ *w": for every location ℓ in locs, wire
// contentsVar(ℓ) -> u and propagate what contentsVar(ℓ) already points to
// into u.
func (a *Andersen) materializeLoad(w, u Var, locs *roaring.Bitmap) {
	it := locs.Iterator()
	for it.HasNext() {
		loc := a.table.lookup(it.Next())
		cv := contentsVar(loc)

		key := [2]Var{cv, u}
		if a.materialized[key] {
			continue
		}

		a.materialized[key] = true
		a.touch(cv)
		a.addEdge(cv, u)
		a.mergeInto(u, a.ptsSet(cv))
		a.push(u)
	}
}

// materializeStore handles "*v ⊇ w": for every location ℓ in locs, wire
// w -> contentsVar(ℓ) and propagate w's current points-to set into it.
func (a *Andersen) materializeStore(v, w Var, locs *roaring.Bitmap) {
	it := locs.Iterator()
	for it.HasNext() {
		loc := a.table.lookup(it.Next())
		cv := contentsVar(loc)

		key := [2]Var{w, cv}
		if a.materialized[key] {
			continue
		}

		a.materialized[key] = true
		a.touch(cv)
		a.addEdge(w, cv)
		a.mergeInto(cv, a.ptsSet(w))
		a.push(cv)
	}
}

const sccCollapseInterval = 64

// Solve runs the fixpoint: a worklist of vars with pending diffs,
// propagated along simple edges and used to re-materialize load/store
// edges whenever the var they range over gains fresh locations, with a
// periodic SCC collapse of the simple-edge graph (lazy cycle detection,
// spec.md §4.F) so cyclic copy chains converge in O(cycle size) instead of
// bouncing the same elements around the cycle once per member.
func (a *Andersen) Solve() (*Solution, error) {
	for _, v := range a.order {
		a.push(v)
	}

	rounds := 0

	for len(a.queue) > 0 {
		v := a.queue[0]
		a.queue = a.queue[1:]
		a.queued[v] = false

		d := a.diff[v]
		if d == nil || d.IsEmpty() {
			continue
		}

		fresh := d.Clone()
		d.Clear()

		for _, u := range a.loadBy[v] {
			a.materializeLoad(v, u, fresh)
		}

		for _, w := range a.storeBy[v] {
			a.materializeStore(v, w, fresh)
		}

		for succ := range a.succ[v] {
			a.mergeInto(succ, fresh)
			a.push(succ)
		}

		rounds++
		if rounds%sccCollapseInterval == 0 {
			a.collapseCycles()
		}
	}

	a.collapseCycles()

	return a.toSolution(), nil
}

// collapseCycles finds strongly connected components of the simple-edge
// graph and unions each into one representative, merging their points-to
// sets. Copy-constraint cycles (common with loop-carried aliases) would
// otherwise keep producing "new" diffs as elements bounce around the
// cycle; collapsing them to a single representative bounds the work to
// the cycle's total element count instead of its length times that count.
func (a *Andersen) collapseCycles() {
	sccs := tarjanSCC(a.order, a.succ)

	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}

		sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
		rep := scc[0]

		merged := a.ptsSet(rep)
		for _, v := range scc[1:] {
			merged.Or(a.ptsSet(v))
			a.rep[v] = rep
		}

		for _, v := range scc[1:] {
			for succ := range a.succ[v] {
				if succ != rep {
					a.addEdge(rep, succ)
				}
			}

			for pred := range a.succ {
				if a.succ[pred][v] {
					a.addEdge(pred, rep)
				}
			}

			delete(a.succ, v)
			a.pts[v] = merged
		}
	}
}

func (a *Andersen) resolve(v Var) Var {
	for {
		r, ok := a.rep[v]
		if !ok {
			return v
		}

		v = r
	}
}

func (a *Andersen) toSolution() *Solution {
	sol := newSolution(a.table)

	for _, v := range a.order {
		sol.sets[v] = a.ptsSet(a.resolve(v))
	}

	return sol
}

// tarjanSCC computes strongly connected components of the graph given by
// succ over the vertex set order (recursive; constraint graphs built from
// a single function's syntax are shallow enough not to need an explicit
// stack).
func tarjanSCC(order []Var, succ map[Var]map[Var]bool) [][]Var {
	index := make(map[Var]int)
	low := make(map[Var]int)
	onStack := make(map[Var]bool)

	var stack []Var

	var sccs [][]Var

	counter := 0

	var strongconnect func(v Var)

	strongconnect = func(v Var) {
		index[v] = counter
		low[v] = counter
		counter++

		stack = append(stack, v)
		onStack[v] = true

		for w := range succ[v] {
			if _, ok := index[w]; !ok {
				strongconnect(w)

				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var scc []Var

			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false

				scc = append(scc, w)

				if w == v {
					break
				}
			}

			sccs = append(sccs, scc)
		}
	}

	for _, v := range order {
		if _, ok := index[v]; !ok {
			strongconnect(v)
		}
	}

	return sccs
}
