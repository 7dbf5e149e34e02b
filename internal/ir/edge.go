package ir

// EdgeKind is the semantic relation an Edge represents.
type EdgeKind string

// Recognized edge kinds (SPEC_FULL.md §3 Edge).
const (
	EdgeContains    EdgeKind = "contains"
	EdgeCalls       EdgeKind = "calls"
	EdgeDefines     EdgeKind = "defines"
	EdgeReads       EdgeKind = "reads"
	EdgeWrites      EdgeKind = "writes"
	EdgeImports     EdgeKind = "imports"
	EdgeInherits    EdgeKind = "inherits"
	EdgeControlFlow EdgeKind = "control_flow"
	EdgeDataFlow    EdgeKind = "data_flow"
	EdgePhi         EdgeKind = "phi"
)

// Edge is a directed relation between two nodes that exist in the same
// snapshot. Edges carry an optional span (the syntax that witnesses the
// relation, e.g. the call expression for an EdgeCalls) and free-form
// metadata (e.g. argument index for a call, or an import alias).
type Edge struct {
	Source ID
	Target ID
	Kind   EdgeKind
	Span   Span
	Meta   map[string]string

	// Seq is the order in which the edge was discovered by its producing
	// stage. It breaks ties when sorting edges for the wire format
	// ((source, target, kind, Seq), per SPEC_FULL.md §6) and is otherwise
	// not semantically meaningful.
	Seq int
}
