package taint

import (
	"github.com/codeintel-engine/engine/internal/ifds"
	"github.com/codeintel-engine/engine/internal/ifds/pathcond"
	"github.com/codeintel-engine/engine/internal/ir"
)

// Finding is a confirmed tainted-value-reaches-sink report: sink is the
// call node, Tainted is the location observed tainted at one of its
// arguments, and Path is the witnessing exploded path (spec.md §4.G:
// "whenever a tainted fact reaches a sink node, a finding is emitted with
// the exploded path").
type Finding struct {
	Sink    ir.ID
	Tainted ir.ID
	Rule    Rule
	Path    []ifds.Step[Fact]

	// Confidence is only populated by FindSinksWithConfidence (ModeThorough).
	Confidence Confidence

	// PathCondition and PathFeasible are only populated by
	// FindSinksThorough.
	PathCondition pathcond.Condition
	PathFeasible  bool
}

// FindSinks scans every sink statement in p and reports, for each of its
// Uses that res shows reaching Tainted, a Finding with the witness path.
// Run this after ifds.Solve; it does not itself run the solver, since the
// same Result is ordinarily reused for several post-processing queries.
func FindSinks(p *Problem, res *ifds.Result[Fact]) []Finding {
	var findings []Finding

	for n, st := range p.stmts {
		if st.Kind != StmtCall {
			continue
		}

		rule, ok := p.cfg.IsSink(st.CalleeFQN)
		if !ok {
			continue
		}

		for _, u := range st.Uses {
			fact := TaintOf(u, Tainted)
			if !res.Holds(n, fact) {
				continue
			}

			findings = append(findings, Finding{
				Sink:    n,
				Tainted: u,
				Rule:    rule,
				Path:    res.Path(n, fact),
			})
		}
	}

	return findings
}
