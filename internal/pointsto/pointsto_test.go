package pointsto_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/pointsto"
)

func id(s string) ir.ID { return ir.NewID("pointsto-test", s) }

func TestAndersenCopyPropagatesAllocation(t *testing.T) {
	t.Parallel()

	a := pointsto.NewAndersen()
	v, w, l := id("v"), id("w"), id("l")

	a.AddAlloc(w, l)
	a.AddCopy(v, w)

	sol, err := a.Solve()
	require.NoError(t, err)
	require.ElementsMatch(t, []ir.ID{l}, sol.PointsTo(v))
}

func TestAndersenLoadStoreRoundTrip(t *testing.T) {
	t.Parallel()

	a := pointsto.NewAndersen()
	p, q, x, l := id("p"), id("q"), id("x"), id("l")

	// p -> l; *p = x (store x through p); q = *p (load through p).
	a.AddAlloc(x, l)
	a.AddAlloc(p, id("cell"))
	a.AddStore(p, x)
	a.AddLoad(q, p)

	sol, err := a.Solve()
	require.NoError(t, err)
	require.Contains(t, sol.PointsTo(q), l)
}

func TestAndersenPropagatesAllocationAddedAfterCopy(t *testing.T) {
	t.Parallel()

	// The copy edge is wired before the allocation exists, so v only sees
	// l once Solve's worklist propagates it along the edge — unlike the
	// other tests above, where the allocation already exists by the time
	// the copy constraint is added and propagation happens eagerly.
	a := pointsto.NewAndersen()
	v, w, l := id("v"), id("w"), id("l")

	a.AddCopy(v, w)
	a.AddAlloc(w, l)

	sol, err := a.Solve()
	require.NoError(t, err)
	require.Contains(t, sol.PointsTo(v), l)
}

func TestAndersenMonotoneUnderMoreConstraints(t *testing.T) {
	t.Parallel()

	v, w, l1, l2 := id("v"), id("w"), id("l1"), id("l2")

	a1 := pointsto.NewAndersen()
	a1.AddAlloc(w, l1)
	a1.AddCopy(v, w)
	sol1, err := a1.Solve()
	require.NoError(t, err)

	a2 := pointsto.NewAndersen()
	a2.AddAlloc(w, l1)
	a2.AddAlloc(w, l2)
	a2.AddCopy(v, w)
	sol2, err := a2.Solve()
	require.NoError(t, err)

	// Adding an ALLOC must never remove an element already in v's
	// points-to set (spec.md §7's points-to monotonicity property).
	for _, loc := range sol1.PointsTo(v) {
		require.Contains(t, sol2.PointsTo(v), loc)
	}
}

func TestAndersenCyclicCopyConverges(t *testing.T) {
	t.Parallel()

	a := pointsto.NewAndersen()
	x, y, z, l := id("x"), id("y"), id("z"), id("l")

	a.AddAlloc(x, l)
	a.AddCopy(y, x)
	a.AddCopy(z, y)
	a.AddCopy(x, z) // cycle x -> y -> z -> x

	sol, err := a.Solve()
	require.NoError(t, err)

	for _, v := range []ir.ID{x, y, z} {
		require.Contains(t, sol.PointsTo(v), l, "member %s of the cycle should see the allocation", v)
	}
}

func TestSteensgaardUnificationIsEquivalenceRelation(t *testing.T) {
	t.Parallel()

	s := pointsto.NewSteensgaard()
	a, b, c, l := id("a"), id("b"), id("c"), id("l")

	s.AddAlloc(a, l)
	s.AddCopy(b, a)
	s.AddCopy(c, b)

	sol, err := s.Solve()
	require.NoError(t, err)

	require.True(t, sol.MayAlias(a, b))
	require.True(t, sol.MayAlias(b, c))
	require.True(t, sol.MayAlias(a, c), "equality-based aliasing must be transitive")
}

func TestHybridFallsBackToSteensgaardAboveThreshold(t *testing.T) {
	t.Parallel()

	h := pointsto.NewHybrid()
	h.Threshold = 2

	v, w, l := id("v"), id("w"), id("l")
	h.AddAlloc(w, l)
	h.AddCopy(v, w)

	sol, err := h.Solve()
	require.NoError(t, err)
	require.Contains(t, sol.PointsTo(v), l)
}

func TestHybridUsesAndersenBelowThreshold(t *testing.T) {
	t.Parallel()

	h := pointsto.NewHybrid()
	h.Threshold = pointsto.DefaultHybridThreshold

	v, w, l := id("v"), id("w"), id("l")
	h.AddAlloc(w, l)
	h.AddCopy(v, w)

	sol, err := h.Solve()
	require.NoError(t, err)
	require.Contains(t, sol.PointsTo(v), l)
}

func TestFlowSensitiveStrongUpdateReplacesSingleton(t *testing.T) {
	t.Parallel()

	fs := pointsto.NewFlowSensitive()
	entry := id("entry")
	p, x, y, l1, l2 := id("p"), id("x"), id("y"), id("l1"), id("l2")

	fs.Seed(entry)
	fs.Alloc(entry, p, l1) // p is a singleton, non-summary location
	fs.Alloc(entry, x, l1)
	fs.Store(entry, p, x, func(ir.ID) bool { return false })

	mid := id("mid")
	fs.Seed(mid, entry)
	fs.Alloc(mid, y, l2)
	fs.Store(mid, p, y, func(ir.ID) bool { return false })

	// The second store is a strong update through the same singleton
	// pointer, so it replaces rather than joins the first store's effect:
	// the cell p points to (l1, since contentsVar and Location share an id
	// space) should hold only l2's contents (y's set) now.
	contents := fs.PointsTo(mid, l1)
	require.ElementsMatch(t, []ir.ID{l2}, contents)
}

func TestFlowSensitiveWeakUpdateJoinsOnSummaryLocation(t *testing.T) {
	t.Parallel()

	fs := pointsto.NewFlowSensitive()
	entry := id("entry")
	p, x, y, l1, l2 := id("p"), id("x"), id("y"), id("l1"), id("l2")

	fs.Seed(entry)
	fs.Alloc(entry, p, l1)
	fs.Alloc(entry, p, l2) // p is not a singleton: any store through it is weak
	fs.Alloc(entry, x, l1)
	fs.Alloc(entry, y, l2)

	fs.Store(entry, p, x, func(ir.ID) bool { return true })
	fs.Store(entry, p, y, func(ir.ID) bool { return true })

	// Weak updates join rather than replace: both l1's and l2's cells
	// should end up holding the union of everything ever stored into p.
	c1 := fs.PointsTo(entry, l1)
	c2 := fs.PointsTo(entry, l2)
	require.ElementsMatch(t, []ir.ID{l1, l2}, c1)
	require.ElementsMatch(t, []ir.ID{l1, l2}, c2)
}

func TestContextSensitiveDistinguishesCallPaths(t *testing.T) {
	t.Parallel()

	cs := pointsto.NewContextSensitive(1)

	base := pointsto.NewContext(1)
	siteA, siteB := id("siteA"), id("siteB")

	param, arg1, arg2, l1, l2 := id("param"), id("arg1"), id("arg2"), id("l1"), id("l2")

	ctxA := base.Push(siteA)
	ctxB := base.Push(siteB)

	cs.AddAlloc(arg1, ctxA, l1)
	cs.AddAlloc(arg2, ctxB, l2)
	cs.BindCallArgument(arg1, ctxA, param, siteA)
	cs.BindCallArgument(arg2, ctxB, param, siteB)

	sol, err := cs.Solve()
	require.NoError(t, err)

	merged := pointsto.Merge(sol, param)
	require.Contains(t, merged, l1)
	require.Contains(t, merged, l2)
}

func TestDemandDrivenMatchesAndersenForQueriedVar(t *testing.T) {
	t.Parallel()

	v, w, l := id("v"), id("w"), id("l")

	a := pointsto.NewAndersen()
	a.AddAlloc(w, l)
	a.AddCopy(v, w)
	full, err := a.Solve()
	require.NoError(t, err)

	d := pointsto.NewDemandDriven()
	d.AddAlloc(w, l)
	d.AddCopy(v, w)

	require.ElementsMatch(t, full.PointsTo(v), d.PointsTo(v))
}

func TestIncrementalAddMatchesFromScratch(t *testing.T) {
	t.Parallel()

	v, w, l := id("v"), id("w"), id("l")

	inc := pointsto.NewIncremental()
	inc.Add(
		pointsto.Constraint{Kind: pointsto.AllocConstraint, V: w, Loc: l},
		pointsto.Constraint{Kind: pointsto.CopyConstraint, V: v, W: w},
	)

	sol, err := inc.Solve()
	require.NoError(t, err)
	require.Contains(t, sol.PointsTo(v), l)

	fresh := pointsto.NewAndersen()
	fresh.AddAlloc(w, l)
	fresh.AddCopy(v, w)
	freshSol, err := fresh.Solve()
	require.NoError(t, err)

	require.ElementsMatch(t, freshSol.PointsTo(v), sol.PointsTo(v))
}

func TestIncrementalRemoveRecomputesFromSurvivingConstraints(t *testing.T) {
	t.Parallel()

	v, w1, w2, l1, l2 := id("v"), id("w1"), id("w2"), id("l1"), id("l2")

	allocW1 := pointsto.Constraint{Kind: pointsto.AllocConstraint, V: w1, Loc: l1}
	allocW2 := pointsto.Constraint{Kind: pointsto.AllocConstraint, V: w2, Loc: l2}
	copyFromW1 := pointsto.Constraint{Kind: pointsto.CopyConstraint, V: v, W: w1}
	copyFromW2 := pointsto.Constraint{Kind: pointsto.CopyConstraint, V: v, W: w2}

	inc := pointsto.NewIncremental()
	inc.Add(allocW1, allocW2, copyFromW1, copyFromW2)

	sol, err := inc.Solve()
	require.NoError(t, err)
	require.Contains(t, sol.PointsTo(v), l1)
	require.Contains(t, sol.PointsTo(v), l2)

	inc.Remove(copyFromW2)

	sol2, err := inc.Solve()
	require.NoError(t, err)
	require.Contains(t, sol2.PointsTo(v), l1)
	require.NotContains(t, sol2.PointsTo(v), l2)
}

func TestNullSafetyDetectsNullInPointsToSet(t *testing.T) {
	t.Parallel()

	a := pointsto.NewAndersen()
	v := id("v")

	a.AddAlloc(v, pointsto.NullLocation)

	sol, err := a.Solve()
	require.NoError(t, err)

	ns := pointsto.NewNullSafety(sol)
	require.True(t, ns.MayBeNull(v))
	require.False(t, ns.SafeDereference(v))
}

func TestNullSafetySafeWhenNeverNull(t *testing.T) {
	t.Parallel()

	a := pointsto.NewAndersen()
	v, l := id("v"), id("l")

	a.AddAlloc(v, l)

	sol, err := a.Solve()
	require.NoError(t, err)

	ns := pointsto.NewNullSafety(sol)
	require.False(t, ns.MayBeNull(v))
	require.True(t, ns.SafeDereference(v))
}
