package flowgraph

import "github.com/codeintel-engine/engine/internal/ir"

// EdgeKind is the control-flow relation between two blocks.
type EdgeKind int

// Recognized CFG edge kinds (spec.md §4.D).
const (
	EdgeSequential EdgeKind = iota
	EdgeTrueBranch
	EdgeFalseBranch
	EdgeLoopBack
	EdgeLoopExit
	EdgeException
	EdgeFinallyFlow
)

// Edge is a directed control-flow relation between two blocks of the same
// function.
type Edge struct {
	From ir.ID
	To   ir.ID
	Kind EdgeKind
}

// Graph is one function's Basic Flow Graph / Control Flow Graph: a single
// entry block, one or more exit blocks, and the edges between them.
type Graph struct {
	FunctionID ir.ID
	Entry      ir.ID
	Exits      []ir.ID
	Blocks     map[ir.ID]*Block
	// Order preserves block discovery order (source order), the tie-break
	// the wire format and tests rely on.
	Order []ir.ID
	Edges []Edge
}

// BlockByID returns the block for id, or nil.
func (g *Graph) BlockByID(id ir.ID) *Block {
	return g.Blocks[id]
}

// Successors returns every block id reachable from id by one edge, with
// the edge kind that reaches it.
func (g *Graph) Successors(id ir.ID) []Edge {
	var out []Edge

	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}

	return out
}

// Predecessors returns every edge whose target is id.
func (g *Graph) Predecessors(id ir.ID) []Edge {
	var out []Edge

	for _, e := range g.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}

	return out
}
