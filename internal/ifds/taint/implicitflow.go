package taint

import "github.com/codeintel-engine/engine/internal/ir"

// markerLoc derives the synthetic location id standing in for "control
// dependent on branch" — a region marker fact rather than a real program
// variable, so it can never collide with one.
func markerLoc(branch ir.ID) ir.ID {
	return ir.NewID("ifds-taint", "implicit-region", string(branch))
}

// ImplicitFlow wraps a forward Problem with a coarse control-dependence
// tracker (SPEC_FULL.md §3, from original_source/infrastructure/
// implicit_flow.rs): when a branch's condition becomes tainted, every
// assignment within the branch's dominated region is conservatively
// marked tainted too, since which branch executed depends on a secret.
//
// The region is tracked intraprocedurally only: the marker fact never
// enters a callee (CallFlow inherited from Problem has no binding for its
// synthetic location id), while CallToReturnFlow carries it past the call
// within the caller, a deliberate scope limit rather than an attempt at
// interprocedural control-dependence tracking.
type ImplicitFlow struct {
	*Problem

	branchCond   map[ir.ID]ir.ID            // branch node -> its condition's location
	dominated    map[ir.ID]map[ir.ID]bool   // branch node -> nodes in its dominated region
	markerBranch map[ir.ID]ir.ID            // marker location -> owning branch node
}

// NewImplicitFlow builds the wrapper. dominated maps each branch node to
// the set of nodes it dominates (ordinarily computed once per function by
// internal/dataflow.BuildDominatorTree and walked into descendant sets);
// branchCond maps each branch node to the location its condition reads.
func NewImplicitFlow(base *Problem, branchCond map[ir.ID]ir.ID, dominated map[ir.ID][]ir.ID) *ImplicitFlow {
	domSet := make(map[ir.ID]map[ir.ID]bool, len(dominated))
	markerBranch := make(map[ir.ID]ir.ID, len(dominated))

	for b, nodes := range dominated {
		set := make(map[ir.ID]bool, len(nodes))
		for _, n := range nodes {
			set[n] = true
		}

		domSet[b] = set
		markerBranch[markerLoc(b)] = b
	}

	return &ImplicitFlow{Problem: base, branchCond: branchCond, dominated: domSet, markerBranch: markerBranch}
}

// NormalFlow overrides Problem.NormalFlow: it starts a region marker when
// a branch's condition fact is tainted, and while that marker is active,
// taints every Defines it reaches and keeps propagating it only within
// the branch's dominated region.
func (f *ImplicitFlow) NormalFlow(n ir.ID, fact Fact) []Fact {
	out := f.Problem.NormalFlow(n, fact)

	if cond, isBranch := f.branchCond[n]; isBranch && !fact.Zero && fact.Loc == cond && fact.State == Tainted {
		out = append(out, TaintOf(markerLoc(n), Tainted))
	}

	if branch, ok := f.markerBranch[fact.Loc]; ok && !fact.Zero {
		if !f.dominated[branch][n] {
			// Outside the region: drop the marker the base flow passed on.
			kept := out[:0]
			for _, o := range out {
				if o != fact {
					kept = append(kept, o)
				}
			}

			return kept
		}

		if st, ok := f.stmts[n]; ok && st.Defines != "" {
			out = append(out, TaintOf(st.Defines, Tainted))
		}
	}

	return out
}
