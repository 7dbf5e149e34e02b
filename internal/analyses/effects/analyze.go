package effects

import "github.com/codeintel-engine/engine/internal/ir"

// Strategy selects how per-function effect sets are propagated across the
// call graph.
type Strategy int

// Recognized propagation strategies.
const (
	// StrategyFixpoint iterates the whole call graph to a fixpoint: every
	// function's effect is the union of its intrinsic effect and every
	// (transitive) callee's effect, recomputed until nothing changes.
	StrategyFixpoint Strategy = iota
	// StrategyBiAbduction computes a compositional per-function summary in
	// a single post-order pass, the effect-inference half of bi-abduction
	// (no precondition/footprint inference, only effect composition): a
	// call into a cycle not yet summarized contributes Unknown rather than
	// waiting for a fixpoint, a deliberate simplification.
	StrategyBiAbduction
	// StrategyHybrid prefers a precomputed summary (e.g. cached from a
	// prior run) where one exists for a function, and falls back to a
	// fresh fixpoint computation for everything else.
	StrategyHybrid
)

// Analyze computes every function's effect set under strategy. summaries
// is only consulted by StrategyHybrid (may be nil otherwise): function ids
// present in it are trusted as-is and excluded from the fixpoint.
func Analyze(funcs []Function, classifier *Classifier, strategy Strategy, summaries map[ir.ID]Effect) map[ir.ID]Effect {
	switch strategy {
	case StrategyBiAbduction:
		return analyzeBiAbduction(funcs, classifier)
	case StrategyHybrid:
		return analyzeHybrid(funcs, classifier, summaries)
	case StrategyFixpoint:
		return analyzeFixpoint(funcs, classifier)
	default:
		return analyzeFixpoint(funcs, classifier)
	}
}

func resolvedCalleeSet(funcs []Function) map[string]bool {
	set := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		set[f.FQN] = true
	}

	return set
}

func intrinsicEffects(funcs []Function, classifier *Classifier) map[ir.ID]Effect {
	resolved := resolvedCalleeSet(funcs)

	out := make(map[ir.ID]Effect, len(funcs))
	for _, f := range funcs {
		out[f.ID] = intrinsicEffect(f.Root, classifier, resolved)
	}

	return out
}

// analyzeFixpoint implements the call-graph worklist fixpoint: each
// function's effect starts at its intrinsic effect and grows by unioning
// in every direct callee's current effect until a full pass over the
// worklist adds nothing new, the same propagate-to-fixpoint shape
// internal/pointsto's Andersen solver and internal/ifds's tabulation both
// use.
func analyzeFixpoint(funcs []Function, classifier *Classifier) map[ir.ID]Effect {
	g := BuildCallGraph(funcs)
	eff := intrinsicEffects(funcs, classifier)

	changed := true
	for changed {
		changed = false

		for _, id := range g.IDs() {
			merged := eff[id]

			for _, callee := range g.Callees(id) {
				merged = merged.Union(eff[callee])
			}

			if merged != eff[id] {
				eff[id] = merged
				changed = true
			}
		}
	}

	return eff
}

// analyzeBiAbduction computes one compositional summary per function via
// post-order DFS over the call graph: a function's summary is its
// intrinsic effect unioned with every already-summarized callee's
// summary. A callee still on the current DFS stack (a recursion or mutual
// recursion cycle) contributes Unknown instead of waiting on a fixpoint —
// true bi-abduction would also infer a separation-logic footprint per
// call; this only composes effect sets.
func analyzeBiAbduction(funcs []Function, classifier *Classifier) map[ir.ID]Effect {
	g := BuildCallGraph(funcs)
	intrinsic := intrinsicEffects(funcs, classifier)

	summary := make(map[ir.ID]Effect, len(funcs))
	onStack := make(map[ir.ID]bool, len(funcs))

	var summarize func(id ir.ID)

	summarize = func(id ir.ID) {
		if _, done := summary[id]; done {
			return
		}

		onStack[id] = true

		eff := intrinsic[id]

		for _, callee := range g.Callees(id) {
			if onStack[callee] {
				eff = eff.Union(Unknown)

				continue
			}

			summarize(callee)
			eff = eff.Union(summary[callee])
		}

		onStack[id] = false
		summary[id] = eff
	}

	for _, id := range g.IDs() {
		summarize(id)
	}

	return summary
}

// analyzeHybrid trusts summaries for every function id it already covers,
// and runs a fresh fixpoint restricted to the remaining functions,
// propagating through trusted summaries as fixed leaf values wherever the
// call graph reaches into covered functions.
func analyzeHybrid(funcs []Function, classifier *Classifier, summaries map[ir.ID]Effect) map[ir.ID]Effect {
	g := BuildCallGraph(funcs)
	eff := intrinsicEffects(funcs, classifier)

	for id, cached := range summaries {
		if _, known := eff[id]; known {
			eff[id] = cached
		}
	}

	changed := true
	for changed {
		changed = false

		for _, id := range g.IDs() {
			if _, cached := summaries[id]; cached {
				continue
			}

			merged := eff[id]

			for _, callee := range g.Callees(id) {
				merged = merged.Union(eff[callee])
			}

			if merged != eff[id] {
				eff[id] = merged
				changed = true
			}
		}
	}

	return eff
}
