package cost_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/analyses/cost"
	"github.com/codeintel-engine/engine/internal/flowgraph"
	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// buildLoopGraph models:
//
//	entry -> header -(true)-> body -(loopback)-> header
//	                  -(false)-> exit
//
// a single loop with bodyCall (if non-nil) as the loop body's one
// statement.
func buildLoopGraph(bodyCall *node.Node) *flowgraph.Graph {
	fn := ir.NewID("fn")
	entry, header, body, exit := ir.NewID("entry"), ir.NewID("header"), ir.NewID("body"), ir.NewID("exit")

	var nodes []*node.Node
	if bodyCall != nil {
		nodes = []*node.Node{bodyCall}
	}

	return &flowgraph.Graph{
		FunctionID: fn,
		Entry:      entry,
		Exits:      []ir.ID{exit},
		Order:      []ir.ID{entry, header, body, exit},
		Blocks: map[ir.ID]*flowgraph.Block{
			entry:  {ID: entry, Kind: flowgraph.BlockEntry, FunctionID: fn},
			header: {ID: header, Kind: flowgraph.BlockLoopHeader, FunctionID: fn},
			body:   {ID: body, Kind: flowgraph.BlockStatement, FunctionID: fn, Nodes: nodes},
			exit:   {ID: exit, Kind: flowgraph.BlockExit, FunctionID: fn},
		},
		Edges: []flowgraph.Edge{
			{From: entry, To: header, Kind: flowgraph.EdgeSequential},
			{From: header, To: body, Kind: flowgraph.EdgeTrueBranch},
			{From: body, To: header, Kind: flowgraph.EdgeLoopBack},
			{From: header, To: exit, Kind: flowgraph.EdgeFalseBranch},
		},
	}
}

func callNode(callee string) *node.Node {
	return &node.Node{
		Type:     node.UASTCall,
		Children: []*node.Node{{Type: node.UASTIdentifier, Token: callee}},
	}
}

func TestAnalyzeSingleLoopIsLinear(t *testing.T) {
	t.Parallel()

	g := buildLoopGraph(nil)

	class := cost.Analyze(g, cost.NewClassifier())
	require.Equal(t, cost.Linear(), class)
	require.Equal(t, "O(n)", class.String())
}

func TestAnalyzeLoopWithLinearithmicCallProductsCorrectly(t *testing.T) {
	t.Parallel()

	g := buildLoopGraph(callNode("sort.Slice"))

	class := cost.Analyze(g, cost.DefaultClassifier())
	require.Equal(t, "O(n^2 log n)", class.String(),
		"a loop body (linear) calling a sort (n log n) must combine to n^2 log n under the product rule")
}

func TestAnalyzeLoopWithLogCallIsLinearithmic(t *testing.T) {
	t.Parallel()

	g := buildLoopGraph(callNode("sort.SearchInts"))

	class := cost.Analyze(g, cost.DefaultClassifier())
	require.Equal(t, cost.Linearithmic(), class)
}

func TestMaxTreatsUnknownAsNeutral(t *testing.T) {
	t.Parallel()

	require.Equal(t, cost.Linear(), cost.Max(cost.UnknownClass(), cost.Linear()))
	require.Equal(t, cost.Linear(), cost.Max(cost.Linear(), cost.UnknownClass()))
}

func TestProductWithExponentialDominates(t *testing.T) {
	t.Parallel()

	require.Equal(t, cost.Exponential(), cost.Product(cost.Linear(), cost.Exponential()))
}
