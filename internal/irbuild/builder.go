// Package irbuild lowers a parsed UAST tree into an internal/ir.Document:
// it assigns stable ids, composes fully-qualified names with a per-language
// scope stack, and emits the contains/imports edges that the rest of the
// pipeline (flow graphs, SSA, points-to, IFDS) walks.
package irbuild

import (
	"context"
	"fmt"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/langs"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// scopeSeparators gives the FQN join separator per language; languages not
// listed fall back to ".".
//
//nolint:gochecknoglobals // static per-language configuration.
var scopeSeparators = map[string]string{
	"rust": "::",
	"go":   ".",
}

func scopeSeparator(language string) string {
	if sep, ok := scopeSeparators[language]; ok {
		return sep
	}

	return "."
}

// Builder lowers one file's UAST tree into an ir.Document. A Builder is not
// safe for concurrent use; the orchestrator runs one per file per worker.
type Builder struct {
	registry *langs.Registry
	interner *ir.Interner
}

// NewBuilder constructs a Builder over reg, sharing interner across every
// file the caller builds with it (so FQN handles and node ids can later be
// compared cheaply across a whole repo snapshot).
func NewBuilder(reg *langs.Registry, interner *ir.Interner) *Builder {
	return &Builder{registry: reg, interner: interner}
}

// Build parses filename's content and lowers it into an ir.Document scoped
// to repoID. Nodes are emitted in pre-order of the source tree and edges in
// the order they are discovered, satisfying the IR determinism property
// (spec.md §4.C, §8).
func (b *Builder) Build(ctx context.Context, repoID, filename string, content []byte) (*ir.Document, error) {
	language := b.registry.Language(filename)

	root, err := b.registry.Parse(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("irbuild: %s: %w", filename, err)
	}

	w := &walker{
		repoID:   repoID,
		filePath: filename,
		language: language,
		scope:    ir.NewScopeStack(scopeSeparator(language)),
		doc:      &ir.Document{FilePath: filename, RepoID: repoID},
	}

	w.walk(root, "")

	return w.doc, nil
}

// walker carries the per-file state threaded through the pre-order descent:
// the current FQN scope, the id of the innermost enclosing definition (for
// "contains" edges), and the output document being assembled.
type walker struct {
	repoID   string
	filePath string
	language string
	scope    *ir.ScopeStack
	doc      *ir.Document
	edgeSeq  int
}

// walk visits n and its children in pre-order, emitting a Node (and a
// "contains" edge from parentID) for every definition, and imports/calls
// edges where the UAST marks them. parentID is "" at the file root.
func (w *walker) walk(n *node.Node, parentID ir.ID) {
	kind, recognized := langs.Classify(n)

	switch {
	case langs.IsImport(n):
		w.emitImport(n, parentID)

		return
	case recognized && langs.IsDefinition(n):
		parentID = w.emitDefinition(n, kind, parentID)
	case langs.IsCallSite(n) && parentID != "":
		w.emitCallEdge(n, parentID)
	}

	for _, child := range n.Children {
		w.walk(child, parentID)
	}

	if recognized && langs.IsDefinition(n) {
		w.scope.Pop()
	}
}

func (w *walker) emitDefinition(n *node.Node, kind ir.Kind, parentID ir.ID) ir.ID {
	name := n.Props["name"]
	if name == "" {
		name = n.Token
	}

	if name == "" {
		name = fmt.Sprintf("<anonymous:%d>", len(w.doc.Nodes))
	}

	fqn := w.scope.FQN(name)
	w.scope.Push(name)

	id := ir.NodeID(w.repoID, w.filePath, fqn, kind)

	side := &ir.Sidecar{
		Decorators:     langs.Decorators(n),
		IsAsync:        langs.IsAsync(n),
		IsGenerator:    langs.IsGenerator(n),
		Visibility:     langs.Visibility(n),
		Docstring:      langs.Docstring(n),
		TypeAnnotation: n.Props["type"],
	}

	nd := &ir.Node{
		ID:       id,
		Kind:     kind,
		FQN:      fqn,
		FilePath: w.filePath,
		Language: w.language,
		Span:     langs.SpanOf(n),
		ParentID: parentID,
		Side:     side,
	}

	w.doc.Nodes = append(w.doc.Nodes, nd)

	if parentID != "" {
		w.emitEdge(parentID, id, ir.EdgeContains, langs.SpanOf(n), nil)
	}

	return id
}

func (w *walker) emitImport(n *node.Node, parentID ir.ID) {
	name := n.Props["name"]
	if name == "" {
		name = n.Token
	}

	fqn := w.scope.FQN(name)
	id := ir.NodeID(w.repoID, w.filePath, fqn, ir.KindImport)

	nd := &ir.Node{
		ID:       id,
		Kind:     ir.KindImport,
		FQN:      fqn,
		FilePath: w.filePath,
		Language: w.language,
		Span:     langs.SpanOf(n),
		ParentID: parentID,
	}

	w.doc.Nodes = append(w.doc.Nodes, nd)

	if parentID != "" {
		w.emitEdge(parentID, id, ir.EdgeContains, langs.SpanOf(n), nil)
	}

	// The import's target may not be visible in this snapshot (external
	// package, or a file not yet indexed); target resolution against the
	// cross-file symbol table happens in a later pass, so we emit the edge
	// against a synthetic placeholder id keyed on the import name alone.
	// internal/orchestrator's linking stage replaces this with the real
	// target id when one exists in the same snapshot.
	placeholder := ir.NewID("import-placeholder", w.repoID, name)
	w.emitEdge(id, placeholder, ir.EdgeImports, langs.SpanOf(n), map[string]string{"unresolved": "true"})
}

func (w *walker) emitCallEdge(n *node.Node, callerID ir.ID) {
	callee := n.Props["name"]
	if callee == "" {
		return
	}

	target := ir.NewID("call-placeholder", w.repoID, callee)
	w.emitEdge(callerID, target, ir.EdgeCalls, langs.SpanOf(n), map[string]string{"callee_name": callee, "unresolved": "true"})
}

func (w *walker) emitEdge(source, target ir.ID, kind ir.EdgeKind, span ir.Span, meta map[string]string) {
	w.doc.Edges = append(w.doc.Edges, ir.Edge{
		Source: source,
		Target: target,
		Kind:   kind,
		Span:   span,
		Meta:   meta,
		Seq:    w.edgeSeq,
	})
	w.edgeSeq++
}
