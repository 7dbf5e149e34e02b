package taint

import (
	"github.com/codeintel-engine/engine/internal/ifds"
	"github.com/codeintel-engine/engine/internal/ifds/pathcond"
	"github.com/codeintel-engine/engine/internal/ir"
)

// Fact is the taint domain's data-flow fact: either the zero fact Λ
// (always holds, carries no location) or a claim that Loc currently holds
// State. Facts are plain values (comparable), so the IFDS tabulation can
// use them directly as map keys.
type Fact struct {
	Zero  bool
	Loc   ir.ID
	State State
}

// ZeroFact returns Λ.
func ZeroFact() Fact { return Fact{Zero: true} }

// TaintOf returns the fact claiming loc is in the given state.
func TaintOf(loc ir.ID, state State) Fact {
	return Fact{Loc: loc, State: state}
}

// StatementKind classifies a supergraph node for the taint flow functions.
type StatementKind int

// Recognized statement kinds.
const (
	// StmtPlain touches no location the analysis tracks (a node with no
	// corresponding entry in Problem's statement table is treated the
	// same way: identity flow).
	StmtPlain StatementKind = iota
	// StmtAssign defines Defines from Uses by a direct copy/transform
	// (e.g. `y = x`, `y = x + 1`): taint reaching any Use propagates to
	// Defines.
	StmtAssign
	// StmtCall additionally carries the resolved callee FQN, checked
	// against the configured source/sink/sanitizer rules.
	StmtCall
	// StmtBranch is a conditional branch; its Condition atom feeds
	// ModeThorough's path-condition satisfiability check via
	// CollectPathCondition.
	StmtBranch
)

// Statement is the def/use view of one supergraph node the taint flow
// functions need. internal/irbuild and internal/dataflow supply the
// underlying def/use facts; building this table from a flowgraph.Graph is
// the orchestrator's L14 wiring step (not this package's concern, so
// tests build it directly).
type Statement struct {
	Kind      StatementKind
	Defines   ir.ID // zero ID if this statement defines nothing
	Uses      []ir.ID
	CalleeFQN string // only meaningful when Kind == StmtCall

	// Condition is this branch's symbolic atom, only meaningful when
	// Kind == StmtBranch.
	Condition pathcond.Atom
}

func (s Statement) uses(loc ir.ID) bool {
	for _, u := range s.Uses {
		if u == loc {
			return true
		}
	}

	return false
}

// Binding connects a call site's caller-side argument location to the
// callee parameter location it's passed into (spec.md §4.G: "Call flow
// maps argument facts to callee parameters").
type Binding struct {
	CallerVar ir.ID
	ParamVar  ir.ID
}

// ReturnBinding connects a callee's return-value location to the
// caller-side receiver location a call site assigns into (spec.md §4.G:
// "return flow maps callee-return facts to caller receivers").
type ReturnBinding struct {
	CalleeReturnVar   ir.ID
	CallerReceiverVar ir.ID
}

// Problem is one taint IFDS instantiation.
type Problem struct {
	sg             *ifds.Supergraph
	cfg            *Config
	stmts          map[ir.ID]Statement
	bindings       map[ir.ID][]Binding       // keyed by call site
	returnBindings map[ir.ID]ReturnBinding   // keyed by call site
	seeds          []ir.ID                   // procedure entry nodes to seed Λ at
	locProc        map[ir.ID]ir.ID           // location -> owning procedure, for the sparse filter
}

// NewProblem builds a taint Problem. seeds are ordinarily every reachable
// procedure's entry node (or, for a demand query, just the entry of the
// function containing the suspected source).
func NewProblem(
	sg *ifds.Supergraph,
	cfg *Config,
	stmts map[ir.ID]Statement,
	bindings map[ir.ID][]Binding,
	returnBindings map[ir.ID]ReturnBinding,
	seeds []ir.ID,
) *Problem {
	locProc := make(map[ir.ID]ir.ID)

	for n, st := range stmts {
		proc, ok := sg.ProcOf(n)
		if !ok {
			continue
		}

		if st.Defines != "" {
			locProc[st.Defines] = proc
		}

		for _, u := range st.Uses {
			locProc[u] = proc
		}
	}

	return &Problem{
		sg: sg, cfg: cfg, stmts: stmts,
		bindings: bindings, returnBindings: returnBindings,
		seeds: seeds, locProc: locProc,
	}
}

// Supergraph implements ifds.Problem.
func (p *Problem) Supergraph() *ifds.Supergraph { return p.sg }

// ZeroFact implements ifds.Problem.
func (p *Problem) ZeroFact() Fact { return ZeroFact() }

// InitialSeeds implements ifds.Problem.
func (p *Problem) InitialSeeds() map[ir.ID][]Fact {
	out := make(map[ir.ID][]Fact, len(p.seeds))
	for _, s := range p.seeds {
		out[s] = []Fact{ZeroFact()}
	}

	return out
}

// NormalFlow implements ifds.Problem: propagates an unaffected fact
// through unchanged, kills a fact about the variable this statement
// redefines, derives a new fact on Defines when a tainted/sanitized Use
// feeds it (downgrading to Sanitized across a sanitizer call), and
// introduces a fresh Tainted fact on Defines when Λ reaches a source call.
func (p *Problem) NormalFlow(n ir.ID, fact Fact) []Fact {
	st, ok := p.stmts[n]
	if !ok {
		return []Fact{fact}
	}

	var out []Fact

	switch {
	case fact.Zero:
		out = append(out, fact)

		if st.Kind == StmtCall && st.Defines != "" {
			if rule, ok := p.cfg.IsSource(st.CalleeFQN); ok {
				_ = rule

				out = append(out, TaintOf(st.Defines, Tainted))
			}
		}

	case st.Defines != "" && fact.Loc == st.Defines:
		// This statement overwrites Loc: the old binding's fact does not
		// survive past this node, unless Loc is also read as one of its
		// own Uses (e.g. `x = sanitize(x)`), handled by the branch below.

	default:
		out = append(out, fact)
	}

	if !fact.Zero && st.Defines != "" && st.uses(fact.Loc) {
		state := fact.State

		if st.Kind == StmtCall {
			if _, ok := p.cfg.IsSanitizer(st.CalleeFQN); ok {
				state = Sanitized
			}
		}

		out = append(out, TaintOf(st.Defines, state))
	}

	return out
}

// CallFlow implements ifds.Problem. ModeFast treats calls as transparent
// and binds nothing into the callee.
func (p *Problem) CallFlow(callSite, _ ir.ID, fact Fact) []Fact {
	if fact.Zero {
		return []Fact{fact}
	}

	if p.cfg.Mode == ModeFast {
		return nil
	}

	var out []Fact

	for _, b := range p.bindings[callSite] {
		if b.CallerVar == fact.Loc {
			out = append(out, TaintOf(b.ParamVar, fact.State))
		}
	}

	return out
}

// ReturnFlow implements ifds.Problem: a callee-exit fact about its return
// variable projects back onto the caller's receiver; every other
// callee-local fact stays local (the tabulation's summary mechanism
// already accounts for its effect without re-exposing callee-internal
// locations to the caller).
func (p *Problem) ReturnFlow(callSite, _, _ ir.ID, _, exitFact Fact) []Fact {
	if exitFact.Zero {
		return []Fact{exitFact}
	}

	if p.cfg.Mode == ModeFast {
		return nil
	}

	rb, ok := p.returnBindings[callSite]
	if !ok || rb.CalleeReturnVar != exitFact.Loc {
		return nil
	}

	return []Fact{TaintOf(rb.CallerReceiverVar, exitFact.State)}
}

// CallToReturnFlow implements ifds.Problem: facts about locations the
// call doesn't bind as an argument pass straight through; ModeFast passes
// everything through, the coarse "intraprocedural + call-to-return"
// approximation spec.md §4.G describes for Fast mode.
func (p *Problem) CallToReturnFlow(callSite, _ ir.ID, fact Fact) []Fact {
	if fact.Zero || p.cfg.Mode == ModeFast {
		return []Fact{fact}
	}

	for _, b := range p.bindings[callSite] {
		if b.CallerVar == fact.Loc {
			return nil
		}
	}

	return []Fact{fact}
}

// Relevant implements ifds.RelevanceFilter, enabled when Config.Sparse is
// set (spec.md §4.G's sparse IFDS optimization). A non-zero fact about
// loc can only possibly be affected by nodes in loc's owning procedure,
// since CallFlow/ReturnFlow always mint a fresh location id when taint
// crosses a procedure boundary; skipping nodes outside that procedure is
// therefore sound and loses nothing for the relevant subset.
func (p *Problem) Relevant(n ir.ID, fact Fact) bool {
	if !p.cfg.Sparse || fact.Zero {
		return true
	}

	locProc, ok := p.locProc[fact.Loc]
	if !ok {
		return true
	}

	nodeProc, ok := p.sg.ProcOf(n)
	if !ok {
		return true
	}

	return locProc == nodeProc
}
