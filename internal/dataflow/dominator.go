// Package dataflow computes def/use information and minimal SSA form over
// an internal/flowgraph.Graph (spec.md §4.E): dominator tree, dominance
// frontiers, φ-placement and renaming.
package dataflow

import (
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/ir"
)

// DomTree is a function's dominator tree: IDom maps a block to its
// immediate dominator (empty for the entry block).
type DomTree struct {
	Entry ir.ID
	IDom  map[ir.ID]ir.ID
	// order is reverse-postorder over the CFG, the iteration order the
	// iterative dominator algorithm converges fastest in.
	order []ir.ID
}

// Dominates reports whether a dominates b (reflexively: every block
// dominates itself).
func (t *DomTree) Dominates(a, b ir.ID) bool {
	for cur := b; ; {
		if cur == a {
			return true
		}

		parent, ok := t.IDom[cur]
		if !ok || parent == cur {
			return cur == a
		}

		cur = parent
	}
}

// Children returns every block whose immediate dominator is id.
func (t *DomTree) Children(id ir.ID) []ir.ID {
	var out []ir.ID

	for _, b := range t.order {
		if t.IDom[b] == id && b != id {
			out = append(out, b)
		}
	}

	return out
}

// BuildDominatorTree computes g's dominator tree using the iterative
// Cooper-Harvey-Kennedy algorithm (a simpler fixpoint alternative to
// Lengauer-Tarjan, explicitly allowed by spec.md §4.E), over reverse
// postorder for fast convergence.
func BuildDominatorTree(g *flowgraph.Graph) *DomTree {
	rpo := reversePostorder(g)
	indexOf := make(map[ir.ID]int, len(rpo))

	for i, id := range rpo {
		indexOf[id] = i
	}

	idom := make(map[ir.ID]ir.ID, len(rpo))
	idom[g.Entry] = g.Entry

	changed := true
	for changed {
		changed = false

		for _, b := range rpo {
			if b == g.Entry {
				continue
			}

			preds := definedPreds(g, b, idom)
			if len(preds) == 0 {
				continue
			}

			newIdom := preds[0]

			for _, p := range preds[1:] {
				newIdom = intersect(newIdom, p, idom, indexOf)
			}

			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	idom[g.Entry] = ""

	return &DomTree{Entry: g.Entry, IDom: idom, order: rpo}
}

func definedPreds(g *flowgraph.Graph, b ir.ID, idom map[ir.ID]ir.ID) []ir.ID {
	var out []ir.ID

	for _, e := range g.Predecessors(b) {
		if _, ok := idom[e.From]; ok {
			out = append(out, e.From)
		}
	}

	return out
}

func intersect(a, b ir.ID, idom map[ir.ID]ir.ID, indexOf map[ir.ID]int) ir.ID {
	for a != b {
		for indexOf[a] > indexOf[b] {
			a = idom[a]
		}

		for indexOf[b] > indexOf[a] {
			b = idom[b]
		}
	}

	return a
}

func reversePostorder(g *flowgraph.Graph) []ir.ID {
	var post []ir.ID

	visited := make(map[ir.ID]bool, len(g.Order))

	var visit func(id ir.ID)

	visit = func(id ir.ID) {
		if visited[id] {
			return
		}

		visited[id] = true

		for _, e := range g.Successors(id) {
			visit(e.To)
		}

		post = append(post, id)
	}

	visit(g.Entry)

	// Include blocks unreachable from Entry (dead code, or a construction
	// gap) at the end so every block still gets an idom entry.
	for _, id := range g.Order {
		visit(id)
	}

	rpo := make([]ir.ID, len(post))
	for i, id := range post {
		rpo[len(post)-1-i] = id
	}

	return rpo
}

// DominanceFrontier computes the dominance frontier of every block: the
// set of blocks where this block's dominance "stops", i.e. the classic
// Cytron et al. algorithm.
func DominanceFrontier(g *flowgraph.Graph, dt *DomTree) map[ir.ID][]ir.ID {
	df := make(map[ir.ID][]ir.ID)

	for _, b := range g.Order {
		preds := g.Predecessors(b)
		if len(preds) < 2 {
			continue
		}

		for _, e := range preds {
			runner := e.From
			for runner != "" && runner != dt.IDom[b] {
				df[runner] = appendUnique(df[runner], b)
				runner = dt.IDom[runner]
			}
		}
	}

	return df
}

func appendUnique(set []ir.ID, id ir.ID) []ir.ID {
	for _, existing := range set {
		if existing == id {
			return set
		}
	}

	return append(set, id)
}
