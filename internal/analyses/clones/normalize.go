package clones

import (
	"crypto/sha1" //nolint:gosec // content fingerprinting, not security.
	"fmt"
	"strings"

	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// exactHash fingerprints a function body by its literal type+token stream
// in pre-order: two functions collide here only if they have the same node
// types and tokens in the same pre-order sequence, the Type-1 clone class.
func exactHash(root *node.Node) string {
	var b strings.Builder

	root.VisitPreOrder(func(n *node.Node) {
		b.WriteString(string(n.Type))
		b.WriteByte(0)
		b.WriteString(n.Token)
		b.WriteByte(0)
	})

	return hashString(b.String())
}

// renamedHash fingerprints a function body the same way as exactHash,
// except every identifier and literal token is replaced by a placeholder
// keyed to the order it was first seen within this function, so two
// functions with the same structure but consistently renamed identifiers
// (loop variable i vs idx, parameter name a vs x) collide — the Type-2
// clone class. Non-identifier, non-literal tokens (operators, keywords
// captured as Token on their own node) are kept literal, since those are
// structural, not naming, choices.
func renamedHash(root *node.Node) string {
	var b strings.Builder

	placeholders := make(map[string]int)

	root.VisitPreOrder(func(n *node.Node) {
		b.WriteString(string(n.Type))
		b.WriteByte(0)

		if isRenamableLeaf(n) {
			b.WriteString(placeholderFor(placeholders, n.Token))
		} else {
			b.WriteString(n.Token)
		}

		b.WriteByte(0)
	})

	return hashString(b.String())
}

func isRenamableLeaf(n *node.Node) bool {
	switch n.Type {
	case node.UASTIdentifier, node.UASTLiteral:
		return true
	default:
		return false
	}
}

func placeholderFor(seen map[string]int, token string) string {
	id, ok := seen[token]
	if !ok {
		id = len(seen)
		seen[token] = id
	}

	return fmt.Sprintf("$%d", id)
}

func hashString(s string) string {
	h := sha1.New() //nolint:gosec // content fingerprinting, not security.
	h.Write([]byte(s))

	return string(h.Sum(nil))
}
