package dataflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/dataflow"
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/langs"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

func buildGraph(t *testing.T, src string) *flowgraph.Graph {
	t.Helper()

	reg := langs.NewDefaultRegistry()

	root, err := reg.Parse(context.Background(), "f.go", []byte(src))
	require.NoError(t, err)

	var fn *node.Node

	root.VisitPreOrder(func(n *node.Node) {
		if n.Type == node.UASTFunctionDecl && fn == nil {
			fn = n
		}
	})

	require.NotNil(t, fn)

	return flowgraph.BuildFunction(ir.NewID("F"), fn)
}

func TestDominatorTreeEntryHasNoParent(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, "package main\n\nfunc F() {\n\tx := 1\n\t_ = x\n}\n")
	dt := dataflow.BuildDominatorTree(g)

	require.Equal(t, ir.ID(""), dt.IDom[g.Entry])
	require.True(t, dt.Dominates(g.Entry, g.Entry))
}

func TestSSAPhiArityMatchesPredecessorCount(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, "package main\n\nfunc F(c bool) int {\n\tx := 1\n\tif c {\n\t\tx = 2\n\t}\n\treturn x\n}\n")

	form := dataflow.Analyze(g)

	for _, phi := range form.Phis {
		preds := g.Predecessors(phi.Block)
		require.Len(t, phi.Args, len(preds), "phi at %s for %s", phi.Block, phi.Var)
	}
}

func TestUseWithoutReachingDefinitionIsParameterOrigin(t *testing.T) {
	t.Parallel()

	g := buildGraph(t, "package main\n\nfunc F(p int) int {\n\treturn p\n}\n")

	form := dataflow.Analyze(g)

	var found bool

	for _, u := range form.Uses {
		if u.Var == "p" {
			found = true

			require.GreaterOrEqual(t, u.Version, 0)
		}
	}

	require.True(t, found)
}
