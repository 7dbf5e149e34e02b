package taint

import (
	"github.com/codeintel-engine/engine/internal/ifds"
	"github.com/codeintel-engine/engine/internal/ifds/pathcond"
	"github.com/codeintel-engine/engine/internal/ir"
)

// Confidence is a 0-100 score IDE's edge functions carry alongside a taint
// fact, used only by ModeThorough (spec.md §4.G: "quantitative edge
// functions (confidence)"). It never affects whether a finding is reported
// — that is the plain IFDS tabulation's job — only how strongly Thorough
// mode vouches for it.
type Confidence = int

// Meet implements ifds.IDEProblem. Confidence combines across alternate
// paths by taking the most confident one: unlike a textbook dataflow-value
// lattice where meet narrows information, two different explanations for
// the same tainted fact don't need to agree, so the stronger one wins.
// Kept named Meet to satisfy the interface, not because it narrows.
func (p *Problem) Meet(a, b Confidence) Confidence {
	if a > b {
		return a
	}

	return b
}

// Bottom implements ifds.IDEProblem: no evidence yet.
func (p *Problem) Bottom() Confidence { return 0 }

// NormalFlowEdge implements ifds.IDEProblem, mirroring NormalFlow: a fresh
// taint fact born at a source starts at full confidence, a fact merely
// passed through keeps its value, and a fact crossing a sanitizer-adjacent
// call (one that NormalFlow still let through, e.g. because the statement
// both reads and is a sanitizer call on a different location) is halved.
func (p *Problem) NormalFlowEdge(n ir.ID, d2 Fact) map[Fact]ifds.EdgeFunction[Confidence] {
	succs := p.NormalFlow(n, d2)
	out := make(map[Fact]ifds.EdgeFunction[Confidence], len(succs))

	st, hasStmt := p.stmts[n]

	for _, s := range succs {
		switch {
		case s == d2:
			out[s] = ifds.IdentityEdgeFunction[Confidence]()

		case d2.Zero && !s.Zero:
			out[s] = ifds.ConstantEdgeFunction(Confidence(100))

		case hasStmt && st.Kind == StmtCall && sanitizes(p, st):
			out[s] = scaleEdgeFunction(50)

		default:
			out[s] = ifds.IdentityEdgeFunction[Confidence]()
		}
	}

	return out
}

func sanitizes(p *Problem, st Statement) bool {
	_, ok := p.cfg.IsSanitizer(st.CalleeFQN)
	return ok
}

// CallFlowEdge implements ifds.IDEProblem: confidence carries unchanged
// across a parameter binding.
func (p *Problem) CallFlowEdge(callSite, callee ir.ID, d2 Fact) map[Fact]ifds.EdgeFunction[Confidence] {
	return identityEdgesFor(p.CallFlow(callSite, callee, d2))
}

// ReturnFlowEdge implements ifds.IDEProblem: confidence carries unchanged
// across a return-value binding.
func (p *Problem) ReturnFlowEdge(callSite, returnSite, calleeExit ir.ID, callerFact, exitFact Fact) map[Fact]ifds.EdgeFunction[Confidence] {
	return identityEdgesFor(p.ReturnFlow(callSite, returnSite, calleeExit, callerFact, exitFact))
}

// CallToReturnFlowEdge implements ifds.IDEProblem: confidence carries
// unchanged through a call that doesn't bind the fact's location.
func (p *Problem) CallToReturnFlowEdge(callSite, returnSite ir.ID, d2 Fact) map[Fact]ifds.EdgeFunction[Confidence] {
	return identityEdgesFor(p.CallToReturnFlow(callSite, returnSite, d2))
}

func identityEdgesFor(succs []Fact) map[Fact]ifds.EdgeFunction[Confidence] {
	out := make(map[Fact]ifds.EdgeFunction[Confidence], len(succs))
	for _, s := range succs {
		out[s] = ifds.IdentityEdgeFunction[Confidence]()
	}

	return out
}

func scaleEdgeFunction(pct int) ifds.EdgeFunction[Confidence] {
	return func(v Confidence) Confidence { return v * pct / 100 }
}

// FindSinksWithConfidence behaves like FindSinks but additionally runs the
// IDE value annotation, attaching Thorough mode's confidence score to each
// finding (0 if the witness path produced no score).
func FindSinksWithConfidence(p *Problem, ide *ifds.IDEResult[Fact, Confidence]) []Finding {
	findings := FindSinks(p, ide.Result)

	for i, f := range findings {
		if score, ok := ide.Value(f.Sink, TaintOf(f.Tainted, Tainted)); ok {
			findings[i].Confidence = score
		}
	}

	return findings
}

// FindSinksThorough runs the full ModeThorough pipeline: confidence
// annotation plus path-condition collection and satisfiability, so a
// caller can drop findings whose witnessing path could never actually
// execute.
func FindSinksThorough(p *Problem, ide *ifds.IDEResult[Fact, Confidence]) []Finding {
	findings := FindSinksWithConfidence(p, ide)

	for i, f := range findings {
		cond := CollectPathCondition(p, f.Path)
		findings[i].PathCondition = cond
		findings[i].PathFeasible = pathcond.Satisfiable(cond)
	}

	return findings
}
