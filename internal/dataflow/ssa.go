package dataflow

import (
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/ir"
)

// entryVersion is the reserved SSA version for function-entry pseudo-
// definitions (spec.md §4.E's invariant 3).
const entryVersion = 0

// Phi is a φ-node: at Block, Var takes on Args[pred] depending on which
// predecessor control arrived from. Arity always equals the block's
// predecessor count (spec.md §4.E's invariant 1).
type Phi struct {
	Block ir.ID
	Var   string
	Args  map[ir.ID]int
}

// Use is a read of Var at a given version, recorded against the block it
// occurs in so later passes (points-to, IFDS) can map a use back to its
// reaching definition.
type Use struct {
	Block   ir.ID
	Var     string
	Version int
}

// Form is a function's minimal SSA form: the φ-nodes the construction
// placed, and the version each read resolved to.
type Form struct {
	FunctionID ir.ID
	Phis       []Phi
	Uses       []Use
	// Versions records, for every (block, var) pair, the version live at
	// the end of that block — the value renaming leaves behind for
	// successors (and for φ-args at successor blocks).
	Versions map[ir.ID]map[string]int
}

// Build constructs minimal SSA form for g, following spec.md §4.E's
// four-step algorithm: dominator tree and dominance frontiers are
// supplied by the caller (BuildDominatorTree/DominanceFrontier), since
// most callers need them for other passes too and recomputing per call
// would be wasteful.
func Build(g *flowgraph.Graph, dt *DomTree, df map[ir.ID][]ir.ID, defuse map[ir.ID]DefUse) *Form {
	form := &Form{FunctionID: g.FunctionID, Versions: make(map[ir.ID]map[string]int)}

	placePhis(g, df, defuse, form)
	rename(g, dt, defuse, form)

	return form
}

// placePhis is the classic Cytron et al. iterated-dominance-frontier
// worklist: for every block that writes var, every block in its
// dominance frontier needs a φ for var, and if that block didn't already
// write var, it joins the worklist too (the φ is itself a new "write").
func placePhis(g *flowgraph.Graph, df map[ir.ID][]ir.ID, defuse map[ir.ID]DefUse, form *Form) {
	hasPhi := make(map[string]map[ir.ID]bool)

	vars := collectVars(defuse)

	for _, v := range vars {
		worklist := defBlocks(g, defuse, v)
		queued := make(map[ir.ID]bool, len(worklist))

		for _, b := range worklist {
			queued[b] = true
		}

		hasPhi[v] = make(map[ir.ID]bool)

		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]

			for _, d := range df[b] {
				if hasPhi[v][d] {
					continue
				}

				hasPhi[v][d] = true
				form.Phis = append(form.Phis, Phi{Block: d, Var: v, Args: make(map[ir.ID]int)})

				if !queued[d] {
					queued[d] = true

					worklist = append(worklist, d)
				}
			}
		}
	}
}

func collectVars(defuse map[ir.ID]DefUse) []string {
	seen := make(map[string]bool)

	var out []string

	for _, du := range defuse {
		for _, w := range du.Writes {
			if !seen[w] {
				seen[w] = true

				out = append(out, w)
			}
		}
	}

	return out
}

func defBlocks(g *flowgraph.Graph, defuse map[ir.ID]DefUse, v string) []ir.ID {
	var out []ir.ID

	for _, b := range g.Order {
		for _, w := range defuse[b].Writes {
			if w == v {
				out = append(out, b)

				break
			}
		}
	}

	return out
}

// rename walks the dominator tree in pre-order, threading a per-variable
// version counter and a current-version map that's restored on return
// from each subtree (the stack-of-scopes renaming from Cytron et al.,
// implemented with explicit save/restore instead of a literal stack).
func rename(g *flowgraph.Graph, dt *DomTree, defuse map[ir.ID]DefUse, form *Form) {
	counters := make(map[string]int)
	current := make(map[string]int)

	var walk func(b ir.ID)

	walk = func(b ir.ID) {
		saved := make(map[string]int, len(current))
		for k, v := range current {
			saved[k] = v
		}

		for i := range form.Phis {
			p := &form.Phis[i]
			if p.Block != b {
				continue
			}

			counters[p.Var]++
			current[p.Var] = counters[p.Var]
		}

		for _, v := range defuse[b].Reads {
			version, ok := current[v]
			if !ok {
				// A read without a reaching definition is an implicit
				// parameter-origin definition, not an error.
				version = entryVersion
				current[v] = version
			}

			form.Uses = append(form.Uses, Use{Block: b, Var: v, Version: version})
		}

		for _, v := range defuse[b].Writes {
			counters[v]++
			current[v] = counters[v]
		}

		snapshot := make(map[string]int, len(current))
		for k, v := range current {
			snapshot[k] = v
		}

		form.Versions[b] = snapshot

		for _, e := range g.Successors(b) {
			fillPhiArgs(form, e.To, b, current)
		}

		for _, child := range dt.Children(b) {
			walk(child)
		}

		current = saved
	}

	walk(g.Entry)
}

func fillPhiArgs(form *Form, block, pred ir.ID, current map[string]int) {
	for i := range form.Phis {
		p := &form.Phis[i]
		if p.Block != block {
			continue
		}

		if version, ok := current[p.Var]; ok {
			p.Args[pred] = version
		} else {
			p.Args[pred] = entryVersion
		}
	}
}
