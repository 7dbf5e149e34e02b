package irbuild_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/irbuild"
	"github.com/codeintel-engine/engine/internal/langs"
)

func TestBuildEmitsFunctionAndContainsEdge(t *testing.T) {
	t.Parallel()

	reg := langs.NewDefaultRegistry()
	b := irbuild.NewBuilder(reg, ir.NewInterner())

	src := []byte("package main\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n")

	doc, err := b.Build(context.Background(), "repo1", "add.go", src)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Nodes)

	var fn *ir.Node

	for _, n := range doc.Nodes {
		if n.Kind == ir.KindFunction && n.FQN == "Add" {
			fn = n
		}
	}

	require.NotNil(t, fn, "expected a KindFunction node with FQN \"Add\"")

	var hasContains bool

	for _, e := range doc.Edges {
		if e.Kind == ir.EdgeContains && e.Target == fn.ID {
			hasContains = true
		}
	}

	require.True(t, hasContains, "expected a contains edge targeting Add")
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	reg := langs.NewDefaultRegistry()
	src := []byte("package main\n\nfunc F() {}\n")

	doc1, err := irbuild.NewBuilder(reg, ir.NewInterner()).Build(context.Background(), "r", "f.go", src)
	require.NoError(t, err)

	doc2, err := irbuild.NewBuilder(reg, ir.NewInterner()).Build(context.Background(), "r", "f.go", src)
	require.NoError(t, err)

	require.Equal(t, len(doc1.Nodes), len(doc2.Nodes))
	require.Empty(t, doc1.SortedCopy().DuplicateFQNs())
}
