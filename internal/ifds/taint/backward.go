package taint

import (
	"github.com/codeintel-engine/engine/internal/ifds"
	"github.com/codeintel-engine/engine/internal/ir"
)

// BackwardProblem runs the taint instantiation over the reversed
// supergraph, answering "what sources can reach this sink" (SPEC_FULL.md
// §3, from original_source/infrastructure/backward_taint.rs): seed it
// with the tainted fact observed at a sink (ordinarily one already found
// by FindSinks) and the facts Solve reports back name every source
// location whose taint could explain it.
type BackwardProblem struct {
	fwd          *Problem
	sg           *ifds.Supergraph
	seeds        map[ir.ID][]Fact
	byReturnSite map[ir.ID]ReturnBinding
}

// NewBackwardProblem builds the reversed instantiation from the forward
// Problem p. seeds maps the node(s) to start the backward walk from
// (ordinarily a sink node) to the fact(s) observed there.
func NewBackwardProblem(p *Problem, seeds map[ir.ID][]Fact) *BackwardProblem {
	byReturnSite := make(map[ir.ID]ReturnBinding)

	for _, ce := range p.sg.Calls {
		if rb, ok := p.returnBindings[ce.CallSite]; ok {
			byReturnSite[ce.ReturnSite] = rb
		}
	}

	return &BackwardProblem{
		fwd:          p,
		sg:           ifds.ReverseSupergraph(p.sg),
		seeds:        seeds,
		byReturnSite: byReturnSite,
	}
}

// Supergraph implements ifds.Problem.
func (b *BackwardProblem) Supergraph() *ifds.Supergraph { return b.sg }

// ZeroFact implements ifds.Problem.
func (b *BackwardProblem) ZeroFact() Fact { return ZeroFact() }

// InitialSeeds implements ifds.Problem.
func (b *BackwardProblem) InitialSeeds() map[ir.ID][]Fact { return b.seeds }

// NormalFlow implements ifds.Problem: the roles of Defines and Uses swap
// relative to the forward instantiation, since a backward fact about a
// defined location asks "what, read here, could have produced it".
func (b *BackwardProblem) NormalFlow(n ir.ID, fact Fact) []Fact {
	st, ok := b.fwd.stmts[n]
	if !ok {
		return []Fact{fact}
	}

	if fact.Zero {
		return []Fact{fact}
	}

	if st.Defines != "" && fact.Loc == st.Defines {
		out := make([]Fact, 0, len(st.Uses))
		for _, u := range st.Uses {
			out = append(out, TaintOf(u, fact.State))
		}

		return out
	}

	return []Fact{fact}
}

// CallFlow implements ifds.Problem. In the reversed graph, callSite is
// the original return site, so this is exactly the forward instantiation's
// return binding traversed backward.
func (b *BackwardProblem) CallFlow(callSite, _ ir.ID, fact Fact) []Fact {
	if fact.Zero {
		return []Fact{fact}
	}

	rb, ok := b.byReturnSite[callSite]
	if !ok || rb.CallerReceiverVar != fact.Loc {
		return nil
	}

	return []Fact{TaintOf(rb.CalleeReturnVar, fact.State)}
}

// ReturnFlow implements ifds.Problem. returnSite is the original call
// site, so this is the forward instantiation's argument binding traversed
// backward.
func (b *BackwardProblem) ReturnFlow(_, returnSite, _ ir.ID, _, exitFact Fact) []Fact {
	if exitFact.Zero {
		return []Fact{exitFact}
	}

	for _, bind := range b.fwd.bindings[returnSite] {
		if bind.ParamVar == exitFact.Loc {
			return []Fact{TaintOf(bind.CallerVar, exitFact.State)}
		}
	}

	return nil
}

// CallToReturnFlow implements ifds.Problem: a fact not bound into the
// callee through the return-binding relation passes straight through.
func (b *BackwardProblem) CallToReturnFlow(callSite, _ ir.ID, fact Fact) []Fact {
	if fact.Zero {
		return []Fact{fact}
	}

	if rb, ok := b.byReturnSite[callSite]; ok && rb.CallerReceiverVar == fact.Loc {
		return nil
	}

	return []Fact{fact}
}
