package ifds

import "github.com/codeintel-engine/engine/internal/ir"

// Problem parameterizes one IFDS instantiation over its fact domain F.
// F must be comparable since facts are tabulation map keys; the zero
// fact Λ is a problem-supplied value of F (ordinarily a dedicated
// sentinel, e.g. taint's untaintedFact) rather than F's Go zero value,
// since a domain may want its zero value to mean something else.
type Problem[F comparable] interface {
	Supergraph() *Supergraph

	// ZeroFact returns Λ, the fact that always holds (spec.md §4.G: "a
	// data-flow domain with zero-fact").
	ZeroFact() F

	// InitialSeeds maps each procedure entry node the analysis should
	// start from to the facts that hold there before any flow function
	// has run (ordinarily just {ZeroFact()}).
	InitialSeeds() map[ir.ID][]F

	// NormalFlow maps a fact holding before node n to the facts holding
	// after it, for any n that is not a call site.
	NormalFlow(n ir.ID, fact F) []F

	// CallFlow maps a fact holding at a call site to the facts holding at
	// the callee's entry (e.g. binding argument facts to parameter facts).
	CallFlow(callSite, callee ir.ID, fact F) []F

	// ReturnFlow maps a fact holding at a callee exit back to facts
	// holding at the caller's return site (e.g. binding a return-value
	// fact to the receiver). callerFact is the fact that was live at
	// callSite immediately before the call, for domains that need the
	// calling context to interpret the returned fact (e.g. restoring a
	// caller-local that the callee cannot see).
	ReturnFlow(callSite, returnSite, calleeExit ir.ID, callerFact, exitFact F) []F

	// CallToReturnFlow maps a fact holding at a call site directly to the
	// return site, bypassing the callee entirely — the conservative
	// pass-through for facts the callee cannot affect (spec.md §4.G:
	// "call-to-return conservatively passes through facts not flowing
	// into the callee").
	CallToReturnFlow(callSite, returnSite ir.ID, fact F) []F
}

// RelevanceFilter is an optional capability a Problem can implement to
// enable the sparse IFDS optimization (spec.md §4.G): Relevant reports
// whether fact could possibly be affected by node n, letting the solver
// skip propagating through n for facts it can prove are irrelevant there.
// A Problem that does not implement this is treated as "everything is
// relevant everywhere," which is always a sound (if less sparse) answer.
type RelevanceFilter[F comparable] interface {
	Relevant(n ir.ID, fact F) bool
}

// IdentityFlow returns the facts unchanged: the flow function most
// analyses use for statements that neither generate nor kill their fact.
func IdentityFlow[F comparable](fact F) []F {
	return []F{fact}
}

// KillFlow returns no facts: used for a node that unconditionally
// destroys the incoming fact (e.g. a sanitizing rewrite in taint
// analysis).
func KillFlow[F comparable](F) []F {
	return nil
}
