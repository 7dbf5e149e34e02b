package config

import (
	"sort"

	"github.com/codeintel-engine/engine/internal/ifds/taint"
	"github.com/codeintel-engine/engine/internal/pointsto"
)

// TaintMode derives an internal/ifds/taint.Mode from the taint option
// group's boolean flags (spec.md §4.G names Fast/Balanced/Thorough as the
// three taint instantiation tiers; the §6 schema expresses the same
// tradeoff as independent toggles rather than a single mode field, so this
// collapses them back to the nearest tier the solver understands).
func (t TaintConfig) TaintMode() taint.Mode {
	switch {
	case t.UsePointsTo && t.UseSSA && t.EnableInterprocedural:
		return taint.ModeThorough
	case t.EnableInterprocedural:
		return taint.ModeBalanced
	default:
		return taint.ModeFast
	}
}

// NewSolver constructs the context-insensitive points-to analyzer the pta
// option group selects (spec.md §4.F: "mode: steensgaard|andersen|
// hybrid"). context_sensitive and k select internal/pointsto's separate
// ContextSensitive wrapper instead, which has its own per-call-string API
// (AddAlloc/AddCopy/... take a Context) rather than this shared
// zero-context Analyzer interface — callers that set context_sensitive
// construct that wrapper directly via pointsto.NewContextSensitive(p.K).
func (p PTAConfig) NewSolver() pointsto.Analyzer {
	switch p.Mode {
	case PTAAndersen:
		return pointsto.NewAndersen()
	case PTAHybrid:
		return pointsto.NewHybrid()
	case PTASteensgaard:
		return pointsto.NewSteensgaard()
	default:
		return pointsto.NewSteensgaard()
	}
}

// EnabledStageNames returns the names of every stage this config's stages
// group turns on, in sorted order. internal/orchestrator.DAG.Plan takes
// []StageID directly rather than a config-sourced map, so callers that
// thread a loaded Config into the orchestrator convert each name to a
// StageID at the call site before calling dag.Plan.
func (c Config) EnabledStageNames() []string {
	names := make([]string, 0, len(c.Stages))
	for name, on := range c.Stages {
		if on {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}
