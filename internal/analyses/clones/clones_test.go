package clones_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/analyses/clones"
	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

func leaf(typ node.Type, token string) *node.Node {
	return &node.Node{Type: typ, Token: token}
}

func withChildren(n *node.Node, children ...*node.Node) *node.Node {
	n.Children = children

	return n
}

// absFunc builds:
//
//	if (a > 0) { return a } else { return -a }
//
// varying only the identifier name across callers, so exact callers
// collide on Type-1 and renamed callers collide on Type-2.
func absFunc(paramName string) *node.Node {
	cond := withChildren(leaf(node.UASTBinaryOp, ">"),
		leaf(node.UASTIdentifier, paramName),
		leaf(node.UASTLiteral, "0"),
	)

	thenRet := withChildren(leaf(node.UASTReturn, ""), leaf(node.UASTIdentifier, paramName))
	elseRet := withChildren(leaf(node.UASTReturn, ""),
		withChildren(leaf(node.UASTUnaryOp, "-"), leaf(node.UASTIdentifier, paramName)),
	)

	return withChildren(leaf(node.UASTIf, ""), cond, thenRet, elseRet)
}

func TestDetectFindsExactClones(t *testing.T) {
	t.Parallel()

	d := clones.NewDetector(clones.DefaultConfig())

	funcs := []clones.Func{
		{ID: ir.NewID("f1"), Name: "absA", Root: absFunc("a")},
		{ID: ir.NewID("f2"), Name: "absB", Root: absFunc("a")},
	}

	pairs, err := d.Detect(funcs)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, clones.Type1, pairs[0].Type)
	require.InDelta(t, 1.0, pairs[0].Similarity, 1e-9)
}

func TestDetectFindsRenamedClones(t *testing.T) {
	t.Parallel()

	d := clones.NewDetector(clones.DefaultConfig())

	funcs := []clones.Func{
		{ID: ir.NewID("f1"), Name: "absA", Root: absFunc("a")},
		{ID: ir.NewID("f2"), Name: "absX", Root: absFunc("x")},
	}

	pairs, err := d.Detect(funcs)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, clones.Type2, pairs[0].Type)
}

func TestDetectIgnoresUnrelatedFunctions(t *testing.T) {
	t.Parallel()

	d := clones.NewDetector(clones.DefaultConfig())

	unrelated := withChildren(leaf(node.UASTLoop, ""),
		withChildren(leaf(node.UASTCall, ""), leaf(node.UASTIdentifier, "fmt"), leaf(node.UASTIdentifier, "Println")),
	)

	funcs := []clones.Func{
		{ID: ir.NewID("f1"), Name: "absA", Root: absFunc("a")},
		{ID: ir.NewID("f2"), Name: "printLoop", Root: unrelated},
	}

	pairs, err := d.Detect(funcs)
	require.NoError(t, err)
	require.Empty(t, pairs)
}

func TestDetectDeduplicatesAcrossTiers(t *testing.T) {
	t.Parallel()

	d := clones.NewDetector(clones.DefaultConfig())

	funcs := []clones.Func{
		{ID: ir.NewID("f1"), Name: "absA", Root: absFunc("a")},
		{ID: ir.NewID("f2"), Name: "absB", Root: absFunc("a")},
		{ID: ir.NewID("f3"), Name: "absC", Root: absFunc("a")},
	}

	pairs, err := d.Detect(funcs)
	require.NoError(t, err)
	require.Len(t, pairs, 3, "three mutually identical functions must report exactly C(3,2) pairs, never double-counted across tiers")
}
