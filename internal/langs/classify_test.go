package langs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/internal/langs"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		typ  node.Type
		want ir.Kind
	}{
		{node.UASTFunctionDecl, ir.KindFunction},
		{node.UASTMethod, ir.KindMethod},
		{node.UASTClass, ir.KindClass},
		{node.UASTImport, ir.KindImport},
		{node.UASTCall, ir.KindExpression},
		{node.UASTIf, ir.KindBlock},
	}

	for _, tc := range cases {
		n := node.NewBuilder().WithType(tc.typ).Build()

		got, ok := langs.Classify(n)
		require.True(t, ok, tc.typ)
		require.Equal(t, tc.want, got, tc.typ)
	}
}

func TestVisibility(t *testing.T) {
	t.Parallel()

	pub := node.NewBuilder().WithType(node.UASTFunctionDecl).WithRoles([]node.Role{node.RolePublic}).Build()
	require.Equal(t, ir.VisibilityPublic, langs.Visibility(pub))

	priv := node.NewBuilder().WithType(node.UASTFunctionDecl).WithRoles([]node.Role{node.RolePrivate}).Build()
	require.Equal(t, ir.VisibilityPrivate, langs.Visibility(priv))

	unspecified := node.NewBuilder().WithType(node.UASTFunctionDecl).Build()
	require.Equal(t, ir.VisibilityUnspecified, langs.Visibility(unspecified))
}

func TestIsCallSite(t *testing.T) {
	t.Parallel()

	call := node.NewBuilder().WithType(node.UASTCall).Build()
	require.True(t, langs.IsCallSite(call))

	other := node.NewBuilder().WithType(node.UASTIdentifier).Build()
	require.False(t, langs.IsCallSite(other))
}
