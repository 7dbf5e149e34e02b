package cost

import (
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// Analyze estimates g's function-level Class by combining, for every
// block, the block's loop nesting depth (as a polynomial factor) with the
// cost class of any call the block makes (per classifier), via Product —
// then takes the Max across every block in the function.
func Analyze(g *flowgraph.Graph, classifier *Classifier) Class {
	regions := loopRegions(g)
	depth := nestingDepth(g, regions)

	result := Constant()

	for _, id := range g.Order {
		blk := g.BlockByID(id)
		if blk == nil {
			continue
		}

		loopFactor := Polynomial(depth[id])
		blockClass := loopFactor

		for _, stmt := range blk.Nodes {
			for _, callClass := range callClasses(stmt, classifier) {
				blockClass = Max(blockClass, Product(loopFactor, callClass))
			}
		}

		result = Max(result, blockClass)
	}

	return result
}

// callClasses returns the classified cost of every call statement
// encountered within stmt's subtree.
func callClasses(stmt *node.Node, classifier *Classifier) []Class {
	var classes []Class

	stmt.VisitPreOrder(func(n *node.Node) {
		if n.Type != node.UASTCall {
			return
		}

		name := calleeName(n)
		if name == "" {
			return
		}

		if class, ok := classifier.Classify(name); ok {
			classes = append(classes, class)
		}
	})

	return classes
}

func calleeName(call *node.Node) string {
	for _, c := range call.Children {
		if c.Type == node.UASTIdentifier {
			return c.Token
		}
	}

	return ""
}
