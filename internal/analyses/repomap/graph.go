// Package repomap scores a repository's files and symbols by relevance,
// using PageRank over a calls/imports graph personalized toward a Context
// Provider's weights (e.g. recently changed files), with optional HITS
// hub/authority scores (spec.md §4.H).
package repomap

// Graph is a directed relevance graph: nodes are file paths or symbol
// FQNs, edges are derived from `calls` or `imports` relations (A calls B,
// or A imports B means an edge A -> B: "A's relevance should flow some of
// its weight to B").
type Graph struct {
	Nodes []string
	Edges map[string][]string
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{Edges: make(map[string][]string)}
}

// AddNode registers n if not already present.
func (g *Graph) AddNode(n string) {
	for _, existing := range g.Nodes {
		if existing == n {
			return
		}
	}

	g.Nodes = append(g.Nodes, n)
}

// AddEdge records a directed relevance edge from -> to, registering both
// endpoints as nodes if new.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)

	g.Edges[from] = append(g.Edges[from], to)
}
