package ifds

import (
	"errors"
	"fmt"

	"github.com/codeintel-engine/engine/internal/ir"
)

// ErrUnknownNode is returned when a seed or flow function names a node the
// supergraph never registered.
var ErrUnknownNode = errors.New("ifds: node not registered in supergraph")

// pathEdgeKey is one path edge ⟨proc's entry, d1⟩ → ⟨n, d2⟩: starting from
// fact d1 at proc's entry, fact d2 holds at n (spec.md §4.G: "Path edges
// within each procedure").
type pathEdgeKey[F comparable] struct {
	proc ir.ID
	d1   F
	n    ir.ID
	d2   F
}

// entryFact identifies a procedure-entry calling context: the entry node
// plus the fact a caller passed in. endSummary and incoming are both
// indexed by this pair.
type entryFact[F comparable] struct {
	Entry ir.ID
	Fact  F
}

// nodeFact identifies one exploded node (spec.md §4.G: "A worklist
// processes exploded nodes").
type nodeFact[F comparable] struct {
	Node ir.ID
	Fact F
}

// edgeOrigin records how a path edge was first derived, for Result.Path's
// exploded-path reconstruction (spec.md §4.G: "a finding is emitted with
// the exploded path").
type edgeOrigin[F comparable] struct {
	kind string
	pred *pathEdgeKey[F]
}

// incomingCall records a call site waiting on a callee's end-summary to
// become available, so it can be revisited once handleExit computes it
// (the "incoming" bookkeeping of the Reps-Horwitz-Sagiv tabulation
// algorithm).
type incomingCall[F comparable] struct {
	CallSite        ir.ID
	ReturnSite      ir.ID
	CallerProc      ir.ID
	CallerEntryFact F
	CallerFactAtCall F
}

// Step is one hop of a reconstructed exploded path.
type Step[F comparable] struct {
	Node ir.ID
	Fact F
	Kind string
}

// Result is the outcome of Solve: for every node, the facts that hold
// there across every calling context, with enough provenance to
// reconstruct a representative path to any (node, fact) pair.
type Result[F comparable] struct {
	facts     map[ir.ID]map[F]bool
	origin    map[pathEdgeKey[F]]edgeOrigin[F]
	firstEdge map[nodeFact[F]]pathEdgeKey[F]
}

// Facts returns the facts known to hold at node n.
func (r *Result[F]) Facts(n ir.ID) []F {
	out := make([]F, 0, len(r.facts[n]))
	for f := range r.facts[n] {
		out = append(out, f)
	}

	return out
}

// Holds reports whether fact holds at node n.
func (r *Result[F]) Holds(n ir.ID, fact F) bool {
	return r.facts[n][fact]
}

// Path reconstructs one witnessing sequence of exploded nodes from a seed
// to (n, fact), or nil if fact never reached n.
func (r *Result[F]) Path(n ir.ID, fact F) []Step[F] {
	key, ok := r.firstEdge[nodeFact[F]{Node: n, Fact: fact}]
	if !ok {
		return nil
	}

	var steps []Step[F]

	cur := &key

	for cur != nil {
		o := r.origin[*cur]
		steps = append([]Step[F]{{Node: cur.n, Fact: cur.d2, Kind: o.kind}}, steps...)
		cur = o.pred
	}

	return steps
}

// solver holds the tabulation algorithm's working state for one Solve
// call. It is not reused across calls.
type solver[F comparable] struct {
	sg        *Supergraph
	problem   Problem[F]
	relevance RelevanceFilter[F]

	pathEdges map[pathEdgeKey[F]]bool
	origin    map[pathEdgeKey[F]]edgeOrigin[F]
	firstEdge map[nodeFact[F]]pathEdgeKey[F]

	// endSummary[entry] is the set of (exit node, exit fact) pairs
	// reachable once a callee has been fully explored for entry's fact
	// (spec.md §4.G: "Summary edges per call site... once a callee has
	// been fully explored for that input").
	endSummary map[entryFact[F]]map[nodeFact[F]]bool
	incoming   map[entryFact[F]][]incomingCall[F]

	worklist []pathEdgeKey[F]
}

// Solve runs the IFDS/IDE tabulation algorithm over problem's supergraph,
// starting from its InitialSeeds, and returns the facts reachable at
// every node. Termination is guaranteed because facts and nodes are
// finite and each path edge is added at most once (spec.md §4.G); with a
// FIFO worklist, identical inputs always produce identical output.
func Solve[F comparable](problem Problem[F]) (*Result[F], error) {
	sg := problem.Supergraph()
	if sg == nil {
		return nil, fmt.Errorf("ifds: %w", ErrUnknownNode)
	}

	s := &solver[F]{
		sg:         sg,
		problem:    problem,
		pathEdges:  make(map[pathEdgeKey[F]]bool),
		origin:     make(map[pathEdgeKey[F]]edgeOrigin[F]),
		firstEdge:  make(map[nodeFact[F]]pathEdgeKey[F]),
		endSummary: make(map[entryFact[F]]map[nodeFact[F]]bool),
		incoming:   make(map[entryFact[F]][]incomingCall[F]),
	}

	if rf, ok := problem.(RelevanceFilter[F]); ok {
		s.relevance = rf
	}

	for entry, facts := range problem.InitialSeeds() {
		proc, ok := sg.ProcOf(entry)
		if !ok {
			return nil, fmt.Errorf("ifds: seed entry %s: %w", entry, ErrUnknownNode)
		}

		for _, d := range facts {
			s.propagate(proc, d, entry, d, "seed", nil)
		}
	}

	for head := 0; head < len(s.worklist); head++ {
		s.step(s.worklist[head])
	}

	return s.buildResult(), nil
}

// propagate adds the path edge ⟨proc,d1⟩ → ⟨n,d2⟩ if it is new, recording
// its provenance and enqueueing it for processing.
func (s *solver[F]) propagate(proc ir.ID, d1 F, n ir.ID, d2 F, kind string, pred *pathEdgeKey[F]) {
	key := pathEdgeKey[F]{proc: proc, d1: d1, n: n, d2: d2}
	if s.pathEdges[key] {
		return
	}

	s.pathEdges[key] = true
	s.origin[key] = edgeOrigin[F]{kind: kind, pred: pred}

	nf := nodeFact[F]{Node: n, Fact: d2}
	if _, ok := s.firstEdge[nf]; !ok {
		s.firstEdge[nf] = key
	}

	s.worklist = append(s.worklist, key)
}

// step processes one path edge popped from the worklist: call handling at
// a call site, normal-flow propagation to successors otherwise, and
// end-summary bookkeeping whenever the edge's node is a procedure exit.
func (s *solver[F]) step(key pathEdgeKey[F]) {
	if s.relevance != nil && !s.relevance.Relevant(key.n, key.d2) {
		return
	}

	p := s.sg.Procedures[key.proc]

	if calls := s.sg.CallsAt(key.n); len(calls) > 0 {
		for _, ce := range calls {
			s.handleCall(key, ce)
		}
	} else if p != nil {
		for _, d3 := range s.problem.NormalFlow(key.n, key.d2) {
			for _, m := range p.Successors(key.n) {
				s.propagate(key.proc, key.d1, m, d3, "normal", &key)
			}
		}
	}

	if p != nil && p.IsExit(key.n) {
		s.handleExit(key)
	}
}

// handleCall applies call-flow (seeding the callee's own tabulation, and
// either using its cached end-summary or registering as an incoming call
// awaiting one) and call-to-return-flow (the conservative direct pass
// through facts that never reach the callee).
func (s *solver[F]) handleCall(key pathEdgeKey[F], ce CallEdge) {
	callee := s.sg.Procedures[ce.Callee]
	if callee == nil {
		return
	}

	for _, d3 := range s.problem.CallFlow(ce.CallSite, ce.Callee, key.d2) {
		s.propagate(ce.Callee, d3, callee.Entry, d3, "call-entry", &key)

		ef := entryFact[F]{Entry: callee.Entry, Fact: d3}
		if exits, ok := s.endSummary[ef]; ok {
			for nf := range exits {
				for _, d5 := range s.problem.ReturnFlow(ce.CallSite, ce.ReturnSite, nf.Node, key.d2, nf.Fact) {
					s.propagate(key.proc, key.d1, ce.ReturnSite, d5, "return", &key)
				}
			}
		} else {
			s.incoming[ef] = append(s.incoming[ef], incomingCall[F]{
				CallSite:         ce.CallSite,
				ReturnSite:       ce.ReturnSite,
				CallerProc:       key.proc,
				CallerEntryFact:  key.d1,
				CallerFactAtCall: key.d2,
			})
		}
	}

	for _, d3 := range s.problem.CallToReturnFlow(ce.CallSite, ce.ReturnSite, key.d2) {
		s.propagate(key.proc, key.d1, ce.ReturnSite, d3, "call-to-return", &key)
	}
}

// handleExit records key's (exit node, exit fact) pair into its
// procedure's end-summary and, the first time this pair is seen, unblocks
// every call site that was waiting on it.
func (s *solver[F]) handleExit(key pathEdgeKey[F]) {
	p := s.sg.Procedures[key.proc]

	ef := entryFact[F]{Entry: p.Entry, Fact: key.d1}
	nf := nodeFact[F]{Node: key.n, Fact: key.d2}

	if s.endSummary[ef] == nil {
		s.endSummary[ef] = make(map[nodeFact[F]]bool)
	}

	if s.endSummary[ef][nf] {
		return
	}

	s.endSummary[ef][nf] = true

	for _, ic := range s.incoming[ef] {
		for _, d5 := range s.problem.ReturnFlow(ic.CallSite, ic.ReturnSite, key.n, ic.CallerFactAtCall, key.d2) {
			s.propagate(ic.CallerProc, ic.CallerEntryFact, ic.ReturnSite, d5, "return", &key)
		}
	}
}

func (s *solver[F]) buildResult() *Result[F] {
	facts := make(map[ir.ID]map[F]bool)

	for key := range s.pathEdges {
		if facts[key.n] == nil {
			facts[key.n] = make(map[F]bool)
		}

		facts[key.n][key.d2] = true
	}

	return &Result[F]{facts: facts, origin: s.origin, firstEdge: s.firstEdge}
}
