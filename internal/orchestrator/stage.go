// Package orchestrator schedules the analysis pipeline's stages as a DAG,
// runs them with a work-stealing pool sized to a configurable fraction of
// available cores, and drives incremental replay against a tiered cache
// and reverse-dependency index (spec.md §4.I).
package orchestrator

import (
	"fmt"
	"sort"
)

// StageID names one pipeline stage (e.g. "parse", "irbuild", "flowgraph").
type StageID string

// Stage is one DAG node: a unit of work that depends on the outputs of
// zero or more other stages.
type Stage struct {
	ID      StageID
	Deps    []StageID
	Run     func(*Context) error
}

// DAG is an immutable stage graph. Build it once via NewDAG and reuse it
// across Plan/Run calls.
type DAG struct {
	stages map[StageID]Stage
	order  []StageID // insertion order: Run's default stage set and PlanReplay's stage order
}

// NewDAG validates that every dependency names a registered stage and that
// the graph is acyclic, returning an error otherwise.
func NewDAG(stages []Stage) (*DAG, error) {
	d := &DAG{stages: make(map[StageID]Stage, len(stages))}

	for _, s := range stages {
		if _, dup := d.stages[s.ID]; dup {
			return nil, fmt.Errorf("orchestrator: duplicate stage id %q", s.ID)
		}

		d.stages[s.ID] = s
		d.order = append(d.order, s.ID)
	}

	for _, s := range stages {
		for _, dep := range s.Deps {
			if _, ok := d.stages[dep]; !ok {
				return nil, fmt.Errorf("orchestrator: stage %q depends on unknown stage %q", s.ID, dep)
			}
		}
	}

	if cyc := findCycle(d.stages); cyc != nil {
		return nil, fmt.Errorf("orchestrator: cycle in stage DAG: %v", cyc)
	}

	return d, nil
}

// Stage returns the registered stage for id, if any.
func (d *DAG) Stage(id StageID) (Stage, bool) {
	s, ok := d.stages[id]

	return s, ok
}

// Plan returns a topological execution order over the given enabled
// stages (every dependency of an enabled stage must itself be enabled),
// breaking ties by stage id for determinism.
func (d *DAG) Plan(enabled []StageID) ([]StageID, error) {
	enabledSet := make(map[StageID]bool, len(enabled))
	for _, id := range enabled {
		if _, ok := d.stages[id]; !ok {
			return nil, fmt.Errorf("orchestrator: unknown stage %q in Plan", id)
		}

		enabledSet[id] = true
	}

	for id := range enabledSet {
		for _, dep := range d.stages[id].Deps {
			if !enabledSet[dep] {
				return nil, fmt.Errorf("orchestrator: stage %q enabled without its dependency %q", id, dep)
			}
		}
	}

	indegree := make(map[StageID]int, len(enabledSet))
	dependents := make(map[StageID][]StageID, len(enabledSet))

	for id := range enabledSet {
		for _, dep := range d.stages[id].Deps {
			indegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []StageID

	for id := range enabledSet {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sortStageIDs(ready)

	var order []StageID

	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		var unlocked []StageID

		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				unlocked = append(unlocked, dep)
			}
		}

		sortStageIDs(unlocked)
		ready = mergeSortedStageIDs(ready, unlocked)
	}

	if len(order) != len(enabledSet) {
		return nil, fmt.Errorf("orchestrator: cycle detected among enabled stages")
	}

	return order, nil
}

// ParallelReady returns every enabled stage whose dependencies are all in
// completed, excluding stages already in completed themselves.
func (d *DAG) ParallelReady(enabled []StageID, completed map[StageID]bool) []StageID {
	var ready []StageID

	for _, id := range enabled {
		if completed[id] {
			continue
		}

		s, ok := d.stages[id]
		if !ok {
			continue
		}

		allDone := true

		for _, dep := range s.Deps {
			if !completed[dep] {
				allDone = false

				break
			}
		}

		if allDone {
			ready = append(ready, id)
		}
	}

	sortStageIDs(ready)

	return ready
}

func sortStageIDs(ids []StageID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func mergeSortedStageIDs(a, b []StageID) []StageID {
	if len(b) == 0 {
		return a
	}

	merged := make([]StageID, 0, len(a)+len(b))
	i, j := 0, 0

	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}

	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)

	return merged
}

// findCycle returns the stage ids of a cycle if one exists, nil otherwise.
func findCycle(stages map[StageID]Stage) []StageID {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[StageID]int, len(stages))

	var path []StageID

	var visit func(id StageID) []StageID

	visit = func(id StageID) []StageID {
		color[id] = gray
		path = append(path, id)

		for _, dep := range stages[id].Deps {
			switch color[dep] {
			case gray:
				return append(append([]StageID{}, path...), dep)
			case white:
				if cyc := visit(dep); cyc != nil {
					return cyc
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black

		return nil
	}

	ids := make([]StageID, 0, len(stages))
	for id := range stages {
		ids = append(ids, id)
	}

	sortStageIDs(ids)

	for _, id := range ids {
		if color[id] == white {
			if cyc := visit(id); cyc != nil {
				return cyc
			}
		}
	}

	return nil
}
