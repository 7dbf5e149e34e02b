package langs

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// maxInternLen bounds which child tokens get deduplicated through the
// per-parse interner; longer tokens (string/number literals) are unlikely
// to repeat often enough to be worth the map lookup.
const maxInternLen = 32

// buildUAST lowers a tree-sitter parse tree into a generic UAST tree using
// g's node-type table, in the spirit of the teacher's DSLNode.ToCanonicalNode
// but driven by a static Go map instead of an interpreted DSL: every named
// tree-sitter node becomes one *node.Node (anonymous nodes such as
// punctuation and keywords are not carried over), and g supplies the
// UASTType/Roles/NameField for the node types analyses care about. Named
// node types absent from g keep their raw tree-sitter type string so the
// IR builder can still walk through them.
func buildUAST(ts sitter.Node, src []byte, g Grammar, interner map[string]string) *node.Node {
	rule, mapped := g[ts.Type()]

	n := node.NewBuilder().
		WithType(nodeType(ts, rule, mapped)).
		WithPosition(positionsOf(ts)).
		Build()

	if mapped {
		n.Roles = rule.Roles
	}

	if name := extractName(ts, src, rule, mapped, interner); name != "" {
		n.Props = map[string]string{"name": name}
	}

	if ts.NamedChildCount() == 0 {
		n.Token = internText(ts, src, interner)
	}

	children := make([]*node.Node, 0, ts.NamedChildCount())

	for idx := range ts.NamedChildCount() {
		child := ts.NamedChild(idx)
		children = append(children, buildUAST(child, src, g, interner))
	}

	n.Children = children

	return n
}

func nodeType(ts sitter.Node, rule Rule, mapped bool) node.Type {
	if mapped && rule.UASTType != "" {
		return rule.UASTType
	}

	return node.Type(ts.Type())
}

func extractName(ts sitter.Node, src []byte, rule Rule, mapped bool, interner map[string]string) string {
	if !mapped || rule.NameField == "" {
		return ""
	}

	field := ts.ChildByFieldName(rule.NameField)
	if field.IsNull() {
		return ""
	}

	return internText(field, src, interner)
}

func internText(ts sitter.Node, src []byte, interner map[string]string) string {
	start, end := ts.StartByte(), ts.EndByte()
	if int(end) > len(src) || start > end {
		return ""
	}

	s := string(src[start:end])

	if len(s) > maxInternLen || interner == nil {
		return s
	}

	if cached, ok := interner[s]; ok {
		return cached
	}

	interner[s] = s

	return s
}

func positionsOf(ts sitter.Node) *node.Positions {
	start, end := ts.StartPoint(), ts.EndPoint()

	return &node.Positions{
		StartLine:   start.Row + 1,
		StartCol:    start.Column + 1,
		StartOffset: ts.StartByte(),
		EndLine:     end.Row + 1,
		EndCol:      end.Column + 1,
		EndOffset:   ts.EndByte(),
	}
}
