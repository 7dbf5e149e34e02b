package clones

import (
	"strings"

	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// shingleSeparator joins the node types of one shingle so distinct k-grams
// never collide after concatenation (e.g. "I|f" vs "If" for k=2 types "I"
// and "f" next to a lone "If").
const shingleSeparator = "|"

// shingler extracts k-gram shingles over a pre-order walk of node types, the
// same windowing the MinHash/LSH semantic pass (Type-4) hashes into a
// similarity estimate.
type shingler struct {
	k int
}

func newShingler(k int) *shingler {
	if k < 1 {
		k = 1
	}

	return &shingler{k: k}
}

// shingles returns nil if root has fewer than k typed nodes.
func (s *shingler) shingles(root *node.Node) [][]byte {
	types := nodeTypes(root)
	if len(types) < s.k {
		return nil
	}

	out := make([][]byte, 0, len(types)-s.k+1)

	for i := 0; i+s.k <= len(types); i++ {
		out = append(out, []byte(strings.Join(types[i:i+s.k], shingleSeparator)))
	}

	return out
}

// nodeTypes collects every non-empty node type in pre-order.
func nodeTypes(root *node.Node) []string {
	if root == nil {
		return nil
	}

	var types []string

	root.VisitPreOrder(func(n *node.Node) {
		if n.Type != "" {
			types = append(types, string(n.Type))
		}
	})

	return types
}
