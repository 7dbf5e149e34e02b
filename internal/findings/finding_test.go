package findings_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/analyses/concurrency"
	"github.com/codeintel-engine/engine/internal/analyses/cost"
	"github.com/codeintel-engine/engine/internal/analyses/typestate"
	"github.com/codeintel-engine/engine/internal/findings"
	"github.com/codeintel-engine/engine/internal/ifds"
	"github.com/codeintel-engine/engine/internal/ifds/taint"
	"github.com/codeintel-engine/engine/internal/ir"
)

type fakeLocator struct {
	nodes map[ir.ID]*ir.Node
}

func (f fakeLocator) NodeByID(id ir.ID) *ir.Node { return f.nodes[id] }

func newFakeLocator(nodes ...*ir.Node) fakeLocator {
	idx := make(map[ir.ID]*ir.Node, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}

	return fakeLocator{nodes: idx}
}

func TestCanonicalizeDropsDuplicateNodeFactPairs(t *testing.T) {
	t.Parallel()

	path := []findings.PathNode{
		{Node: "n1", Fact: "tainted"},
		{Node: "n2", Fact: "tainted"},
		{Node: "n1", Fact: "tainted"},
	}

	got := findings.Canonicalize(path)
	require.Len(t, got, 2)
	require.Equal(t, ir.ID("n1"), got[0].Node)
	require.Equal(t, ir.ID("n2"), got[1].Node)
}

func TestFromTaintResolvesPathLocations(t *testing.T) {
	t.Parallel()

	sink := &ir.Node{ID: "sink", FilePath: "a.go", Span: ir.Span{Start: ir.Position{Line: 10, Col: 2}}}
	loc := newFakeLocator(sink)

	f := taint.Finding{
		Sink:    "sink",
		Tainted: "src",
		Rule:    taint.Rule{Name: "sql-injection", CWE: "CWE-89"},
		Path:    []ifds.Step[taint.Fact]{{Node: "sink", Fact: taint.TaintOf("src", taint.Tainted), Kind: "tainted"}},
	}

	got := findings.FromTaint(loc, f)
	require.Equal(t, "taint", got.Stage)
	require.Equal(t, "sql-injection", got.Kind)
	require.Equal(t, "CWE-89", got.CWE)
	require.Len(t, got.Path, 1)
	require.Equal(t, "a.go", got.Path[0].File)
	require.EqualValues(t, 10, got.Path[0].Line)
}

func TestFromDeadlockReportsCycle(t *testing.T) {
	t.Parallel()

	got := findings.FromDeadlock(concurrency.Deadlock{Cycle: []string{"mu1", "mu2"}})
	require.Equal(t, "deadlock", got.Kind)
	require.Equal(t, findings.Critical, got.Severity)
	require.Len(t, got.Path, 2)
}

func TestFromRaceReportsBothAccesses(t *testing.T) {
	t.Parallel()

	varNode := &ir.Node{ID: "v", FilePath: "b.go", Span: ir.Span{Start: ir.Position{Line: 3}}}
	loc := newFakeLocator(varNode)

	race := concurrency.Race{
		A: concurrency.Access{Var: "v", Goroutine: 1, Write: true},
		B: concurrency.Access{Var: "v", Goroutine: 2, Write: false},
	}

	got := findings.FromRace(loc, race)
	require.Equal(t, "data-race", got.Kind)
	require.Equal(t, "CWE-362", got.CWE)
	require.Len(t, got.Path, 2)
	require.Equal(t, "write", got.Path[0].Fact)
	require.Equal(t, "read", got.Path[1].Fact)
}

func TestFromTypestateViolationClassifiesUseAfterClose(t *testing.T) {
	t.Parallel()

	stmt := &ir.Node{ID: "s", FilePath: "c.go"}
	loc := newFakeLocator(stmt)

	v := typestate.Violation{Kind: typestate.UseAfterClose, Var: "f", Stmt: "s", State: "closed", Event: "Read"}

	got := findings.FromTypestateViolation(loc, v)
	require.Equal(t, "use-after-close", got.Kind)
	require.Equal(t, findings.Critical, got.Severity)
}

func TestFromComplexityReportsOnlyWhenThresholdExceeded(t *testing.T) {
	t.Parallel()

	_, ok := findings.FromComplexity("fn", "d.go", 1, 1, cost.Linear(), cost.Polynomial(2))
	require.False(t, ok)

	got, ok := findings.FromComplexity("fn", "d.go", 1, 1, cost.Polynomial(3), cost.Polynomial(2))
	require.True(t, ok)
	require.Equal(t, "excessive-complexity", got.Kind)
	require.Equal(t, "d.go", got.Path[0].File)
}

func TestSortOrdersByStageKindThenLocation(t *testing.T) {
	t.Parallel()

	fs := []findings.Finding{
		{Stage: "taint", Kind: "xss", Path: []findings.PathNode{{File: "b.go", Line: 5}}},
		{Stage: "concurrency", Kind: "deadlock"},
		{Stage: "taint", Kind: "sql-injection", Path: []findings.PathNode{{File: "a.go", Line: 1}}},
	}

	findings.Sort(fs)

	require.Equal(t, "concurrency", fs[0].Stage)
	require.Equal(t, "sql-injection", fs[1].Kind)
	require.Equal(t, "xss", fs[2].Kind)
}
