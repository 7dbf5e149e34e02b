package flowgraph

import (
	"strings"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/langs"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// Builder constructs one function's Basic Flow Graph / Control Flow Graph
// from its UAST body, per spec.md §4.D. A Builder is not safe for
// concurrent use; the orchestrator builds one CFG per function, possibly
// from multiple workers each owning their own Builder.
type Builder struct {
	functionID ir.ID
	g          *Graph
	seq        int

	// loopStack holds the (header, exit) pair of every loop we're
	// currently nested in, innermost last, for break/continue wiring.
	loopStack []loopFrame
	// catchTargets holds the catch/finally block ids every statement
	// inside the enclosing try should get an exception edge to.
	catchTargets [][]ir.ID
}

type loopFrame struct {
	header ir.ID
	exit   ir.ID
}

// BuildFunction builds the CFG for a function whose UAST body is body.
func BuildFunction(functionID ir.ID, body *node.Node) *Graph {
	b := &Builder{
		functionID: functionID,
		g: &Graph{
			FunctionID: functionID,
			Blocks:     make(map[ir.ID]*Block),
		},
	}

	entry := b.newBlock(BlockEntry, ir.Span{})
	exit := b.newBlock(BlockExit, ir.Span{})
	b.g.Entry = entry
	b.g.Exits = []ir.ID{exit}

	last := b.walkStatements(entry, body.Children)
	b.link(last, exit, EdgeSequential)

	return b.g
}

func (b *Builder) newBlock(kind BlockKind, span ir.Span) ir.ID {
	id := NewBlockID(b.functionID, b.seq)
	b.seq++

	blk := &Block{ID: id, Kind: kind, FunctionID: b.functionID, Span: span}
	b.g.Blocks[id] = blk
	b.g.Order = append(b.g.Order, id)

	return id
}

func (b *Builder) link(from, to ir.ID, kind EdgeKind) {
	if from == "" || to == "" {
		return
	}

	b.g.Edges = append(b.g.Edges, Edge{From: from, To: to, Kind: kind})
}

// attachExceptionEdges wires blk to every active catch/finally target, per
// spec.md §4.D's worst-case exceptional-propagation rule: every statement
// inside a Try has an edge to every compatible Catch and to Finally.
// Catch-type compatibility is not modeled at this layer (the UAST alone
// doesn't carry resolved exception types); every enclosing catch/finally
// is treated as reachable, which is the conservative over-approximation
// the rest of the pipeline (particularly points-to and IFDS) is built to
// tolerate.
func (b *Builder) attachExceptionEdges(blk ir.ID) {
	if len(b.catchTargets) == 0 {
		return
	}

	for _, target := range b.catchTargets[len(b.catchTargets)-1] {
		b.link(blk, target, EdgeException)
	}
}

// walkStatements threads current through stmts in source order, returning
// the block id execution falls off the end into (or "" if control never
// falls through, e.g. the last statement was a return).
func (b *Builder) walkStatements(current ir.ID, stmts []*node.Node) ir.ID {
	for _, stmt := range stmts {
		current = b.walkStatement(current, stmt)
		if current == "" {
			return ""
		}
	}

	return current
}

//nolint:cyclop // structural CFG dispatch over every statement kind is inherently a big switch.
func (b *Builder) walkStatement(current ir.ID, stmt *node.Node) ir.ID {
	switch stmt.Type {
	case node.UASTIf:
		return b.walkIf(current, stmt)
	case node.UASTLoop:
		return b.walkLoop(current, stmt)
	case node.UASTTry:
		return b.walkTry(current, stmt)
	case node.UASTReturn, node.UASTThrow:
		b.appendToBlock(current, stmt)
		b.link(current, b.g.Exits[0], EdgeSequential)

		return ""
	case node.UASTBreak:
		b.appendToBlock(current, stmt)

		if len(b.loopStack) > 0 {
			b.link(current, b.loopStack[len(b.loopStack)-1].exit, EdgeLoopExit)
		}

		return ""
	case node.UASTContinue:
		b.appendToBlock(current, stmt)

		if len(b.loopStack) > 0 {
			b.link(current, b.loopStack[len(b.loopStack)-1].header, EdgeLoopBack)
		}

		return ""
	case node.UASTBlock:
		return b.walkStatements(current, stmt.Children)
	default:
		b.appendToBlock(current, stmt)
		b.attachExceptionEdges(current)

		return current
	}
}

func (b *Builder) appendToBlock(blockID ir.ID, stmt *node.Node) {
	blk := b.g.Blocks[blockID]
	if blk == nil {
		return
	}

	if blk.Kind == BlockEntry && len(blk.Stmts) == 0 {
		blk.Kind = BlockStatement
	}

	span := langs.SpanOf(stmt)
	stmtID := ir.NewID("stmt", string(b.functionID), span.String())
	blk.Stmts = append(blk.Stmts, stmtID)
	blk.Nodes = append(blk.Nodes, stmt)
}

// splitElseBranch separates an if-statement's then-branch from its
// else/elif branch. Grammars vary in how they group these (a sibling
// "else_clause"/"else" node holding its own block, vs a flat list), so we
// treat a trailing child whose raw tree-sitter type names an else/elif
// production as the else branch and everything before it as the
// then-branch; grammars with no such child (a bare "if" with no else)
// leave elseChildren empty.
func splitElseBranch(children []*node.Node) (thenChildren, elseChildren []*node.Node) {
	if len(children) == 0 {
		return nil, nil
	}

	last := children[len(children)-1]
	if isElseLike(string(last.Type)) {
		return children[:len(children)-1], last.Children
	}

	return children, nil
}

func isElseLike(tsType string) bool {
	lower := strings.ToLower(tsType)

	return strings.Contains(lower, "else") || strings.Contains(lower, "elif")
}

func (b *Builder) walkIf(current ir.ID, stmt *node.Node) ir.ID {
	cond := b.newBlock(BlockCondition, langs.SpanOf(stmt))
	b.link(current, cond, EdgeSequential)
	b.attachExceptionEdges(cond)

	thenChildren, elseChildren := splitElseBranch(stmt.Children)

	trueBlock := b.newBlock(BlockStatement, ir.Span{})
	b.link(cond, trueBlock, EdgeTrueBranch)

	thenEnd := b.walkStatements(trueBlock, thenChildren)

	merge := b.newBlock(BlockStatement, ir.Span{})
	b.link(thenEnd, merge, EdgeSequential)

	if len(elseChildren) > 0 {
		elseBlock := b.newBlock(BlockStatement, ir.Span{})
		b.link(cond, elseBlock, EdgeFalseBranch)

		elseEnd := b.walkStatements(elseBlock, elseChildren)
		b.link(elseEnd, merge, EdgeSequential)
	} else {
		b.link(cond, merge, EdgeFalseBranch)
	}

	return merge
}

func (b *Builder) walkLoop(current ir.ID, stmt *node.Node) ir.ID {
	header := b.newBlock(BlockLoopHeader, langs.SpanOf(stmt))
	b.link(current, header, EdgeSequential)
	b.attachExceptionEdges(header)

	after := b.newBlock(BlockStatement, ir.Span{})

	b.loopStack = append(b.loopStack, loopFrame{header: header, exit: after})

	body := b.newBlock(BlockStatement, ir.Span{})
	b.link(header, body, EdgeTrueBranch)

	bodyEnd := b.walkStatements(body, stmt.Children)
	b.link(bodyEnd, header, EdgeLoopBack)
	b.link(header, after, EdgeLoopExit)

	b.loopStack = b.loopStack[:len(b.loopStack)-1]

	return after
}

func (b *Builder) walkTry(current ir.ID, stmt *node.Node) ir.ID {
	var bodyChildren []*node.Node

	var catchTargets []ir.ID

	var catchBodies [][]*node.Node

	var finallyChildren []*node.Node

	for _, child := range stmt.Children {
		switch child.Type {
		case node.UASTCatch:
			blk := b.newBlock(BlockCatch, langs.SpanOf(child))
			catchTargets = append(catchTargets, blk)
			catchBodies = append(catchBodies, child.Children)
		case node.UASTFinally:
			finallyChildren = child.Children
		default:
			bodyChildren = append(bodyChildren, child)
		}
	}

	tryBlock := b.newBlock(BlockTry, langs.SpanOf(stmt))
	b.link(current, tryBlock, EdgeSequential)

	b.catchTargets = append(b.catchTargets, catchTargets)

	bodyEnd := b.walkStatements(tryBlock, bodyChildren)

	b.catchTargets = b.catchTargets[:len(b.catchTargets)-1]

	merge := b.newBlock(BlockStatement, ir.Span{})
	b.link(bodyEnd, merge, EdgeSequential)

	for i, catchID := range catchTargets {
		catchEnd := b.walkStatements(catchID, catchBodies[i])
		b.link(catchEnd, merge, EdgeSequential)
	}

	if len(finallyChildren) > 0 {
		finallyBlock := b.newBlock(BlockFinally, ir.Span{})
		b.link(merge, finallyBlock, EdgeFinallyFlow)

		for _, catchID := range catchTargets {
			b.link(catchID, finallyBlock, EdgeFinallyFlow)
		}

		return b.walkStatements(finallyBlock, finallyChildren)
	}

	return merge
}
