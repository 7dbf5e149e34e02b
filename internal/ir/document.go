package ir

import "sort"

// Document is the per-file IR: a file path, the owning repo id, and the
// ordered nodes/edges discovered while lowering that file's syntax tree.
// A Document is immutable once built by the IR builder (internal/irbuild);
// an incremental re-index replaces it wholesale rather than mutating it in
// place.
type Document struct {
	FilePath string
	RepoID   string
	Nodes    []*Node
	Edges    []Edge
}

// NodeByID returns the node with the given id, or nil if absent. Call
// sites that run this in a hot loop should build an index via Index()
// instead of scanning repeatedly.
func (d *Document) NodeByID(id ID) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// Index builds a lookup table from node id to node, for repeated random
// access (e.g. by the flow-graph builder walking edges).
func (d *Document) Index() map[ID]*Node {
	idx := make(map[ID]*Node, len(d.Nodes))
	for _, n := range d.Nodes {
		idx[n.ID] = n
	}

	return idx
}

// SortedCopy returns a new Document whose nodes and edges are ordered per
// the wire-format contract: nodes by (file_path, kind, start_line,
// end_line, emission_sequence), edges by (source_id, target_id, kind,
// emission_sequence). The emission order (pre-order of the source tree,
// discovery order for edges) is preserved as the tie-break via a stable
// sort, satisfying the IR determinism testable property.
func (d *Document) SortedCopy() *Document {
	nodes := make([]*Node, len(d.Nodes))
	copy(nodes, d.Nodes)

	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}

		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}

		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}

		return a.Span.End.Line < b.Span.End.Line
	})

	edges := make([]Edge, len(d.Edges))
	copy(edges, d.Edges)

	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}

		if a.Target != b.Target {
			return a.Target < b.Target
		}

		return a.Kind < b.Kind
	})

	return &Document{FilePath: d.FilePath, RepoID: d.RepoID, Nodes: nodes, Edges: edges}
}

// FQNKey identifies a node by the (file_path, FQN, kind) triple that must
// be unique within a Document (the FQN-uniqueness testable property).
type FQNKey struct {
	FilePath string
	FQN      string
	Kind     Kind
}

// DuplicateFQNs returns every FQNKey that more than one node in the
// document shares, for use by validation and tests.
func (d *Document) DuplicateFQNs() []FQNKey {
	counts := make(map[FQNKey]int, len(d.Nodes))

	for _, n := range d.Nodes {
		counts[FQNKey{FilePath: n.FilePath, FQN: n.FQN, Kind: n.Kind}]++
	}

	var dups []FQNKey

	for k, c := range counts {
		if c > 1 {
			dups = append(dups, k)
		}
	}

	return dups
}
