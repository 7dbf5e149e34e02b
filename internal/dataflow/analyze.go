package dataflow

import (
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/ir"
)

// Analyze runs the full L4-L5 pipeline over g: def/use extraction,
// dominator tree, dominance frontiers, and SSA construction, returning
// everything downstream passes (points-to, IFDS) need.
func Analyze(g *flowgraph.Graph) *Form {
	defuse := make(map[ir.ID]DefUse, len(g.Order))
	for _, id := range g.Order {
		defuse[id] = ExtractDefUse(g.Blocks[id])
	}

	dt := BuildDominatorTree(g)
	df := DominanceFrontier(g, dt)

	return Build(g, dt, df, defuse)
}
