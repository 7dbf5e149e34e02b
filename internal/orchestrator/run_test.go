package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codeintel-engine/engine/internal/orchestrator"
)

func TestRunCompletesAllStagesInDependencyOrder(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex

	var executionOrder []orchestrator.StageID

	record := func(id orchestrator.StageID) func(*orchestrator.Context) error {
		return func(*orchestrator.Context) error {
			mu.Lock()
			executionOrder = append(executionOrder, id)
			mu.Unlock()

			return nil
		}
	}

	dag, err := orchestrator.NewDAG([]orchestrator.Stage{
		{ID: "parse", Run: record("parse")},
		{ID: "irbuild", Deps: []orchestrator.StageID{"parse"}, Run: record("irbuild")},
		{ID: "flowgraph", Deps: []orchestrator.StageID{"irbuild"}, Run: record("flowgraph")},
	})
	require.NoError(t, err)

	snapshot := orchestrator.NewSnapshot("c1", map[string][]byte{})

	result, err := dag.Run(context.Background(), snapshot, orchestrator.RunOptions{})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Completed, 3)
	require.True(t, result.Completed["parse"])
	require.True(t, result.Completed["irbuild"])
	require.True(t, result.Completed["flowgraph"])

	parseIdx, irbuildIdx, flowgraphIdx := -1, -1, -1

	for i, id := range executionOrder {
		switch id {
		case "parse":
			parseIdx = i
		case "irbuild":
			irbuildIdx = i
		case "flowgraph":
			flowgraphIdx = i
		}
	}

	require.Less(t, parseIdx, irbuildIdx)
	require.Less(t, irbuildIdx, flowgraphIdx)
}

func TestRunSkipsTransitiveDependentsOfAFailedStage(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	dag, err := orchestrator.NewDAG([]orchestrator.Stage{
		{ID: "parse", Run: func(*orchestrator.Context) error { return boom }},
		{ID: "irbuild", Deps: []orchestrator.StageID{"parse"}, Run: func(*orchestrator.Context) error { return nil }},
		{ID: "unrelated", Run: func(*orchestrator.Context) error { return nil }},
	})
	require.NoError(t, err)

	snapshot := orchestrator.NewSnapshot("c1", map[string][]byte{})

	result, err := dag.Run(context.Background(), snapshot, orchestrator.RunOptions{})
	require.NoError(t, err)

	require.False(t, result.Completed["parse"])
	require.False(t, result.Completed["irbuild"])
	require.True(t, result.Completed["unrelated"])

	var sawStageFailed, sawSkipped bool

	for _, e := range result.Errors {
		switch e.Stage {
		case "parse":
			sawStageFailed = e.Kind == orchestrator.ErrorKindStageFailed
		case "irbuild":
			sawSkipped = e.Kind == orchestrator.ErrorKindSkippedDependency
		}
	}

	require.True(t, sawStageFailed)
	require.True(t, sawSkipped)
}

func TestPoolSizeIsAtLeastOne(t *testing.T) {
	t.Parallel()

	require.GreaterOrEqual(t, orchestrator.PoolSize(0.0001), 1)
	require.GreaterOrEqual(t, orchestrator.PoolSize(orchestrator.CoreFraction), 1)
}

func TestContextOutputsAreVisibleAcrossStages(t *testing.T) {
	t.Parallel()

	dag, err := orchestrator.NewDAG([]orchestrator.Stage{
		{ID: "producer", Run: func(c *orchestrator.Context) error {
			c.SetOutput("producer", 42)

			return nil
		}},
		{ID: "consumer", Deps: []orchestrator.StageID{"producer"}, Run: func(c *orchestrator.Context) error {
			v, ok := c.Output("producer")
			if !ok || v.(int) != 42 {
				return errors.New("missing producer output")
			}

			return nil
		}},
	})
	require.NoError(t, err)

	snapshot := orchestrator.NewSnapshot("c1", map[string][]byte{})

	result, err := dag.Run(context.Background(), snapshot, orchestrator.RunOptions{})
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.True(t, result.Completed["consumer"])
}
