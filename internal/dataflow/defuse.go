package dataflow

import (
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/langs"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// DefUse is the set of variables a block reads and writes, per spec.md
// §4.E's reads/writes extraction contract.
type DefUse struct {
	Reads  []string
	Writes []string
}

// ExtractDefUse scans every statement in blk for variable reads and
// writes: reads come from identifier references that are not themselves
// an assignment target; writes come from assignment left-hand sides and
// variable/parameter declarations.
func ExtractDefUse(blk *flowgraph.Block) DefUse {
	var du DefUse

	seenRead := make(map[string]bool)
	seenWrite := make(map[string]bool)

	for _, stmt := range blk.Nodes {
		walkDefUse(stmt, &du, seenRead, seenWrite)
	}

	return du
}

func walkDefUse(n *node.Node, du *DefUse, seenRead, seenWrite map[string]bool) {
	switch {
	case n.Type == node.UASTVariable || n.Type == node.UASTParameter:
		if name := varName(n); name != "" && !seenWrite[name] {
			seenWrite[name] = true
			du.Writes = append(du.Writes, name)
		}
	case langs.IsAssignmentTarget(n):
		for _, target := range assignmentTargets(n) {
			if !seenWrite[target] {
				seenWrite[target] = true
				du.Writes = append(du.Writes, target)
			}
		}

		for _, child := range n.Children {
			if !langs.IsAssignmentTarget(child) {
				walkDefUse(child, du, seenRead, seenWrite)
			}
		}

		return
	case langs.IsReference(n):
		if name := varName(n); name != "" && !seenRead[name] {
			seenRead[name] = true
			du.Reads = append(du.Reads, name)
		}
	}

	for _, child := range n.Children {
		walkDefUse(child, du, seenRead, seenWrite)
	}
}

func varName(n *node.Node) string {
	if n.Props != nil && n.Props["name"] != "" {
		return n.Props["name"]
	}

	return n.Token
}

// assignmentTargets returns the variable names written by an assignment
// node, read from its left-hand side children (everything before the
// first non-target child in source order, per the common
// target...=...value shape most grammars share).
func assignmentTargets(n *node.Node) []string {
	var out []string

	for _, child := range n.Children {
		if child.Type == node.UASTIdentifier {
			if name := varName(child); name != "" {
				out = append(out, name)
			}

			continue
		}

		break
	}

	return out
}
