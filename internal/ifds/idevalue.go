package ifds

import "github.com/codeintel-engine/engine/internal/ir"

// IDEResult pairs an IFDS Result (the sound fact-reachability answer)
// with a Value annotation per (node, fact) pair.
//
// The value is computed by composing the edge functions along the single
// witness path Result.Path reconstructs for that pair, not by the
// classical IDE solver's meet-over-all-paths jump function. That is a
// deliberate simplification: spec.md §4.G uses IDE's edge functions only
// for Thorough mode's "quantitative edge functions (confidence)" scoring
// of an already-confirmed tainted path, where the soundness-critical
// question ("can this fact reach this sink at all") is already answered
// by the boolean tabulation; the value is an annotation on a finding, not
// itself a source of findings. A full meet-over-all-paths IDE solver
// would additionally need to detect when a jump function's meet lowers an
// already-propagated value and re-trigger downstream recomputation —
// warranted for a dataflow-value IDE client like constant propagation, not
// for a confidence score on a path that's already been confirmed tainted.
type IDEResult[F comparable, V any] struct {
	*Result[F]
	problem IDEProblem[F, V]
}

// SolveIDE runs the IFDS tabulation for problem and wraps it with IDE edge
// functions for value annotation.
func SolveIDE[F comparable, V any](problem IDEProblem[F, V]) (*IDEResult[F, V], error) {
	res, err := Solve[F](problem)
	if err != nil {
		return nil, err
	}

	return &IDEResult[F, V]{Result: res, problem: problem}, nil
}

// Value returns the witness-path value for (n, fact), or ok=false if fact
// never reaches n.
func (r *IDEResult[F, V]) Value(n ir.ID, fact F) (V, bool) {
	path := r.Path(n, fact)
	if path == nil {
		var zero V

		return zero, false
	}

	value := r.problem.Bottom()

	for i := 1; i < len(path); i++ {
		prev, cur := path[i-1], path[i]

		fn := r.edgeFunctionFor(prev, cur)
		if fn != nil {
			value = fn(value)
		}
	}

	return value, true
}

// edgeFunctionFor looks up the edge function for the transition the
// tabulation recorded between consecutive path steps, by kind.
func (r *IDEResult[F, V]) edgeFunctionFor(prev, cur Step[F]) EdgeFunction[V] {
	switch cur.Kind {
	case "normal":
		return r.problem.NormalFlowEdge(prev.Node, prev.Fact)[cur.Fact]
	case "call-entry":
		return r.problem.CallFlowEdge(prev.Node, cur.Node, prev.Fact)[cur.Fact]
	case "return":
		// The exact callee-exit node and caller fact aren't recoverable
		// from a two-step window once flattened into Step; ReturnFlowEdge
		// is looked up with cur.Node standing in for both the call's
		// return site and (approximately) using prev as the exit step,
		// which is exact whenever Path threads directly through the
		// matching call (the common case for a witness path).
		return r.problem.ReturnFlowEdge(prev.Node, cur.Node, prev.Node, prev.Fact, prev.Fact)[cur.Fact]
	case "call-to-return":
		return r.problem.CallToReturnFlowEdge(prev.Node, cur.Node, prev.Fact)[cur.Fact]
	default:
		return nil
	}
}
