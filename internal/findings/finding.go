// Package findings implements the finding record spec.md §6 names as the
// common output shape for every analysis that reports defects: taint,
// races, deadlocks, typestate, and complexity. Each analysis package
// (internal/ifds/taint, internal/analyses/concurrency,
// internal/analyses/typestate, internal/analyses/cost) keeps its own
// analysis-specific result type; this package's conversion functions
// adapt those into the shared Finding shape the orchestrator and wire
// format deal in, the same way
// pkg/analyzers/common/renderer.SectionToJSON adapts each analyzer's own
// ReportSection into one shared JSON shape without the analyzers
// themselves depending on the renderer.
package findings

import "github.com/codeintel-engine/engine/internal/ir"

// Severity classifies how serious a finding is.
type Severity int

// Recognized severities, low to high.
const (
	Info Severity = iota
	Warning
	Error
	Critical
)

// String renders a Severity the way it appears in finding output.
func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Critical:
		return "Critical"
	default:
		return "Info"
	}
}

// PathNode is one exploded-path step: the IR node it refers to, the fact
// it carried at that point (a taint state, a lock held, a typestate
// event — analysis-specific, opaque to this package), and the source
// location a reader can jump to.
type PathNode struct {
	Node ir.ID
	Fact string
	File string
	Line uint32
	Col  uint32
}

// Finding is the record spec.md §6 requires: "stage, kind, severity
// (Info|Warning|Error|Critical), CWE id where applicable, path (an
// ordered list of exploded nodes with file:line:col), message, and
// confidence ∈ [0,1]."
type Finding struct {
	Stage      string
	Kind       string
	Severity   Severity
	CWE        string
	Path       []PathNode
	Message    string
	Confidence float64
}

// Locator resolves an IR node id to the source location a PathNode
// reports. *ir.Document satisfies this via NodeByID; callers working
// across many documents should wrap a combined ir.ID -> *ir.Node index
// instead of scanning every document per lookup.
type Locator interface {
	NodeByID(id ir.ID) *ir.Node
}

// locate resolves id to a PathNode, falling back to an empty location if
// the node cannot be found (a defensive case for findings built from
// stale or cross-repo ids, not an expected path).
func locate(loc Locator, id ir.ID, fact string) PathNode {
	n := loc.NodeByID(id)
	if n == nil {
		return PathNode{Node: id, Fact: fact}
	}

	return PathNode{
		Node: id,
		Fact: fact,
		File: n.FilePath,
		Line: n.Span.Start.Line,
		Col:  n.Span.Start.Col,
	}
}

// Canonicalize drops duplicate (node, fact) steps from path, keeping the
// first occurrence of each, per spec.md §6's "path is canonicalized (no
// duplicates of (node,fact))".
func Canonicalize(path []PathNode) []PathNode {
	seen := make(map[[2]string]bool, len(path))
	out := make([]PathNode, 0, len(path))

	for _, p := range path {
		key := [2]string{string(p.Node), p.Fact}
		if seen[key] {
			continue
		}

		seen[key] = true

		out = append(out, p)
	}

	return out
}
