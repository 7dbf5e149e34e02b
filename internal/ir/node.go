package ir

// Kind is the semantic category of a Node.
type Kind string

// Recognized node kinds (SPEC_FULL.md §3 Node).
const (
	KindModule     Kind = "module"
	KindClass      Kind = "class"
	KindFunction   Kind = "function"
	KindMethod     Kind = "method"
	KindVariable   Kind = "variable"
	KindParameter  Kind = "parameter"
	KindField      Kind = "field"
	KindImport     Kind = "import"
	KindExpression Kind = "expression"
	KindBlock      Kind = "block"
	KindOther      Kind = "other"
)

// Visibility is a node's declared access level, when the source language
// has one. The zero value VisibilityUnspecified means the language has no
// such concept or the extractor could not determine it.
type Visibility string

// Recognized visibilities.
const (
	VisibilityUnspecified Visibility = ""
	VisibilityPublic      Visibility = "public"
	VisibilityProtected   Visibility = "protected"
	VisibilityPrivate     Visibility = "private"
	VisibilityInternal    Visibility = "internal"
)

// Sidecar carries kind-specific attributes off the hot Node struct so that
// common traversals (edges, spans, FQN lookups) stay cache-friendly. Only
// the fields relevant to a node's Kind are populated; the rest are left at
// their zero value. This replaces the distilled source's dynamic
// attribute bag (SPEC_FULL.md / spec.md §9 Design Notes) with a single
// typed side table shared across kinds, which is cheaper than one sum
// type per kind while keeping Node itself small and uniform.
type Sidecar struct {
	Decorators     []string
	Parameters     []string
	TypeAnnotation string
	IsAsync        bool
	IsGenerator    bool
	Visibility     Visibility
	Docstring      string
}

// Node is a semantic entity in the IR: a module, class, function, method,
// variable, parameter, field, import, expression, block, or other source
// construct. Nodes are owned by the IRDocument for their file and shared
// by reference across every later analysis stage.
type Node struct {
	ID       ID
	Kind     Kind
	FQN      string
	FilePath string
	Language string
	Span     Span
	BodySpan Span // zero if the node has no distinct body (e.g. a variable)
	ParentID ID   // zero ID if the node has no parent (file root)
	Side     *Sidecar
}

// HasParent reports whether the node has a recorded parent.
func (n *Node) HasParent() bool {
	return n.ParentID != ""
}

// HasBody reports whether the node has a non-empty body span distinct
// from its declaration span.
func (n *Node) HasBody() bool {
	return !n.BodySpan.IsZero()
}
