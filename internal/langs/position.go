package langs

import (
	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// SpanOf converts a UAST node's position to an ir.Span. A node with no
// position (synthetic nodes inserted by a mapping rule) yields the zero
// Span; callers check ir.Span.IsZero before relying on it.
func SpanOf(n *node.Node) ir.Span {
	if n.Pos == nil {
		return ir.Span{}
	}

	// UAST columns are 1-based; ir.Position columns are 0-based.
	startCol, endCol := n.Pos.StartCol, n.Pos.EndCol
	if startCol > 0 {
		startCol--
	}

	if endCol > 0 {
		endCol--
	}

	return ir.Span{
		Start: ir.Position{Line: uint32(n.Pos.StartLine), Col: uint32(startCol)},
		End:   ir.Position{Line: uint32(n.Pos.EndLine), Col: uint32(endCol)},
	}
}
