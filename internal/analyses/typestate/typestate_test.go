package typestate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/analyses/typestate"
	"github.com/codeintel-engine/engine/internal/ir"
)

// fileProtocol is Open --Close--> Closed, with Closed terminal and every
// other state (including Closed, for a second Close) producing a
// violation on Read/Close.
func fileProtocol() *typestate.Protocol {
	proto := typestate.NewProtocol("Open")
	proto.AddTransition("Open", "Close", "Closed")
	proto.MarkTerminal("Closed")

	return proto
}

func linearGraph(ids ...ir.ID) typestate.Graph {
	preds := make(map[ir.ID][]ir.ID, len(ids))
	for i := 1; i < len(ids); i++ {
		preds[ids[i]] = []ir.ID{ids[i-1]}
	}

	return typestate.Graph{Order: ids, Predecessors: preds, Exits: []ir.ID{ids[len(ids)-1]}}
}

func TestAnalyzeCleanOpenCloseHasNoViolations(t *testing.T) {
	t.Parallel()

	f := ir.NewID("f")
	b1, b2 := ir.NewID("b1"), ir.NewID("b2")
	g := linearGraph(b1, b2)

	ops := map[ir.ID][]typestate.Operation{
		b2: {{Var: f, Event: "Close", Stmt: b2}},
	}

	violations := typestate.Analyze(g, ops, fileProtocol())
	require.Empty(t, violations)
}

func TestAnalyzeDetectsUseAfterClose(t *testing.T) {
	t.Parallel()

	f := ir.NewID("f")
	b1, b2, b3 := ir.NewID("b1"), ir.NewID("b2"), ir.NewID("b3")
	g := linearGraph(b1, b2, b3)

	ops := map[ir.ID][]typestate.Operation{
		b2: {{Var: f, Event: "Close", Stmt: b2}},
		b3: {{Var: f, Event: "Close", Stmt: b3}},
	}

	violations := typestate.Analyze(g, ops, fileProtocol())
	require.Len(t, violations, 1)
	require.Equal(t, typestate.UseAfterClose, violations[0].Kind)
}

func TestAnalyzeDetectsResourceLeak(t *testing.T) {
	t.Parallel()

	f := ir.NewID("f")
	b1 := ir.NewID("b1")
	g := linearGraph(b1)

	ops := map[ir.ID][]typestate.Operation{
		b1: {{Var: f, Event: "open-marker", Stmt: b1}},
	}

	// The protocol has no transition for "open-marker", so this triggers an
	// InvalidTransition that leaves f in its Start state ("Open", not
	// terminal) for the leak check to also catch at the exit block.
	violations := typestate.Analyze(g, ops, fileProtocol())

	var kinds []typestate.ViolationKind
	for _, v := range violations {
		kinds = append(kinds, v.Kind)
	}

	require.Contains(t, kinds, typestate.ResourceLeak)
}

func TestAnalyzeMergesStatesAtJoinPoint(t *testing.T) {
	t.Parallel()

	f := ir.NewID("f")
	entry, left, right, join := ir.NewID("entry"), ir.NewID("left"), ir.NewID("right"), ir.NewID("join")

	g := typestate.Graph{
		Order: []ir.ID{entry, left, right, join},
		Predecessors: map[ir.ID][]ir.ID{
			left:  {entry},
			right: {entry},
			join:  {left, right},
		},
		Exits: []ir.ID{join},
	}

	ops := map[ir.ID][]typestate.Operation{
		left: {{Var: f, Event: "Close", Stmt: left}},
		// right never closes f.
		join: {{Var: f, Event: "Close", Stmt: join}},
	}

	violations := typestate.Analyze(g, ops, fileProtocol())

	require.Len(t, violations, 1, "the branch that already closed f must report use-after-close at the join's second Close")
	require.Equal(t, typestate.UseAfterClose, violations[0].Kind)
}
