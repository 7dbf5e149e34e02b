package cost

import (
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/ir"
)

// loopRegion approximates one loop's body as the intersection of the
// blocks forward-reachable from its header and the blocks that can reach
// its latch (the back-edge's source) — a coarser stand-in for the
// dominance-based natural loop test that does not require a dominator
// tree, adequate for estimating nesting depth rather than exact loop
// bounds.
type loopRegion struct {
	header ir.ID
	body   map[ir.ID]bool
}

// loopRegions finds one region per EdgeLoopBack edge in g.
func loopRegions(g *flowgraph.Graph) []loopRegion {
	var regions []loopRegion

	for _, e := range g.Edges {
		if e.Kind != flowgraph.EdgeLoopBack {
			continue
		}

		header, latch := e.To, e.From

		forward := reachableForward(g, header)
		backward := reachableBackward(g, latch)

		body := make(map[ir.ID]bool)

		for id := range forward {
			if backward[id] {
				body[id] = true
			}
		}

		regions = append(regions, loopRegion{header: header, body: body})
	}

	return regions
}

func reachableForward(g *flowgraph.Graph, start ir.ID) map[ir.ID]bool {
	seen := map[ir.ID]bool{start: true}
	queue := []ir.ID{start}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, e := range g.Successors(n) {
			if !seen[e.To] {
				seen[e.To] = true

				queue = append(queue, e.To)
			}
		}
	}

	return seen
}

func reachableBackward(g *flowgraph.Graph, start ir.ID) map[ir.ID]bool {
	seen := map[ir.ID]bool{start: true}
	queue := []ir.ID{start}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, e := range g.Predecessors(n) {
			if !seen[e.From] {
				seen[e.From] = true

				queue = append(queue, e.From)
			}
		}
	}

	return seen
}

// nestingDepth returns, per block id, the number of loopRegions whose body
// contains it — the CFG loop nesting depth the function's Class is built
// from.
func nestingDepth(g *flowgraph.Graph, regions []loopRegion) map[ir.ID]int {
	depth := make(map[ir.ID]int, len(g.Order))

	for _, id := range g.Order {
		d := 0

		for _, r := range regions {
			if r.body[id] {
				d++
			}
		}

		depth[id] = d
	}

	return depth
}

// maxNestingDepth is the deepest loop nesting anywhere in g.
func maxNestingDepth(depth map[ir.ID]int) int {
	max := 0

	for _, d := range depth {
		if d > max {
			max = d
		}
	}

	return max
}
