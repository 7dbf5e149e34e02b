// Package flowgraph builds per-function Basic Flow Graphs and Control Flow
// Graphs from an internal/ir.Document, including the exceptional-CFG
// semantics for Try/Catch/Finally (spec.md §4.D).
package flowgraph

import (
	"strconv"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// BlockKind classifies a flow block's role in the graph.
type BlockKind int

// Recognized block kinds.
const (
	BlockEntry BlockKind = iota
	BlockExit
	BlockStatement
	BlockCondition
	BlockLoopHeader
	BlockTry
	BlockCatch
	BlockFinally
	BlockSuspend
	BlockResume
	BlockDispatcher
	BlockYield
	BlockResumeYield
)

// Block is a maximal straight-line sequence of statements with a single
// entry and a single (structural) exit — a node of the CFG.
type Block struct {
	ID         ir.ID
	Kind       BlockKind
	FunctionID ir.ID
	Span       ir.Span
	// Stmts are the ir node ids of the statements this block executes, in
	// source order.
	Stmts []ir.ID
	// Nodes are the UAST statement nodes Stmts was derived from, same
	// order and length; internal/dataflow scans these for reads/writes.
	Nodes []*node.Node
}

// NewBlockID derives a block id from the owning function id and the
// block's position in source order, per spec.md §4.D's ordering rule.
func NewBlockID(functionID ir.ID, seq int) ir.ID {
	return ir.NewID("block", string(functionID), strconv.Itoa(seq))
}
