package effects

import (
	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// Function is one analyzed function: its identity, and the UAST subtree of
// its body.
type Function struct {
	ID   ir.ID
	FQN  string
	Root *node.Node
}

// CallGraph is the caller -> callee edge set among a set of analyzed
// Functions, built by resolving each call site's callee name against the
// FQN index. A call that resolves to no known function is left out of the
// graph; its effect is instead picked up by Classifier during the
// intrinsic effect scan.
type CallGraph struct {
	edges map[ir.ID][]ir.ID
	ids   []ir.ID
}

// BuildCallGraph resolves every call site in each function's body against
// fqnIndex (typically built from the same Functions slice) and returns the
// resulting CallGraph.
func BuildCallGraph(funcs []Function) *CallGraph {
	fqnIndex := make(map[string]ir.ID, len(funcs))
	for _, f := range funcs {
		fqnIndex[f.FQN] = f.ID
	}

	g := &CallGraph{edges: make(map[ir.ID][]ir.ID, len(funcs))}

	for _, f := range funcs {
		g.ids = append(g.ids, f.ID)

		for _, callee := range calleeNames(f.Root) {
			if calleeID, ok := fqnIndex[callee]; ok && calleeID != f.ID {
				g.edges[f.ID] = append(g.edges[f.ID], calleeID)
			}
		}
	}

	return g
}

// Callees returns the functions caller directly calls that resolved to a
// node in this graph.
func (g *CallGraph) Callees(caller ir.ID) []ir.ID { return g.edges[caller] }

// IDs returns every function id in the graph, in build order.
func (g *CallGraph) IDs() []ir.ID { return g.ids }

// calleeNames walks root for call expressions and returns the callee
// identifier token of each, best-effort: it takes the first Identifier
// child of a Call node, the common shape a call's "function" or "name"
// grammar field lowers to.
func calleeNames(root *node.Node) []string {
	var names []string

	root.VisitPreOrder(func(n *node.Node) {
		if n.Type != node.UASTCall {
			return
		}

		if name := calleeName(n); name != "" {
			names = append(names, name)
		}
	})

	return names
}

func calleeName(call *node.Node) string {
	for _, c := range call.Children {
		if c.Type == node.UASTIdentifier {
			return c.Token
		}
	}

	return ""
}

// intrinsicEffect scans root for effects attributable to this function's
// own body, not to a callee's transitive behavior: Throws from a throw
// statement, and classifier-matched effects for every call whose callee is
// not itself one of resolvedCallees (an internal call; its contribution
// comes from call-graph propagation instead). A call matching neither the
// classifier nor an internal callee contributes ExternalCall, since its
// behavior is unknown.
func intrinsicEffect(root *node.Node, classifier *Classifier, resolvedCallees map[string]bool) Effect {
	var eff Effect

	root.VisitPreOrder(func(n *node.Node) {
		switch n.Type {
		case node.UASTThrow:
			eff = eff.Union(Throws)
		case node.UASTCall:
			name := calleeName(n)
			if resolvedCallees[name] {
				return
			}

			if matched, ok := classifier.Classify(name); ok {
				eff = eff.Union(matched)
			} else {
				eff = eff.Union(ExternalCall)
			}
		}
	})

	return eff
}
