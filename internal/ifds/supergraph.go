// Package ifds implements the IFDS/IDE tabulation framework (spec.md §4.G):
// a supergraph-parameterized solver that computes, for every node of an
// interprocedural control-flow graph, the set of data-flow facts that may
// hold there, in polynomial time by summarizing each procedure's effect
// once per calling context instead of inlining callees.
package ifds

import "github.com/codeintel-engine/engine/internal/ir"

// Procedure is one function's view of the supergraph: its entry node, its
// exit nodes (a function may have more than one, e.g. multiple returns or
// an exceptional exit), and the normal (non-call) control-flow edges
// between its nodes.
type Procedure struct {
	ID     ir.ID
	Entry  ir.ID
	Exits  []ir.ID
	normal map[ir.ID][]ir.ID
}

func newProcedure(id ir.ID) *Procedure {
	return &Procedure{ID: id, normal: make(map[ir.ID][]ir.ID)}
}

// AddNode registers n as belonging to this procedure, with no successors
// yet. Calling AddEdge for an unregistered node registers it implicitly,
// so AddNode is only needed to record an isolated node (e.g. an exit with
// no outgoing edges, which is the common case).
func (p *Procedure) AddNode(n ir.ID) {
	if _, ok := p.normal[n]; !ok {
		p.normal[n] = nil
	}
}

// AddEdge records a normal (intraprocedural, non-call) control-flow edge
// from -> to.
func (p *Procedure) AddEdge(from, to ir.ID) {
	p.normal[from] = append(p.normal[from], to)
}

// Successors returns n's normal successors within this procedure.
func (p *Procedure) Successors(n ir.ID) []ir.ID {
	return p.normal[n]
}

// IsExit reports whether n is one of this procedure's exit nodes.
func (p *Procedure) IsExit(n ir.ID) bool {
	for _, e := range p.Exits {
		if e == n {
			return true
		}
	}

	return false
}

// CallEdge is one call site's supergraph wiring: spec.md §4.G's "call,
// call-to-return, and return edges" all pivot around this triple. CallSite
// is the node the call occurs at (in the caller), ReturnSite is the node
// control resumes at after the call returns (also in the caller), and
// Callee is the id of the procedure being called.
type CallEdge struct {
	CallSite   ir.ID
	ReturnSite ir.ID
	Callee     ir.ID
}

// Supergraph is the interprocedural CFG an IFDS/IDE problem is tabulated
// over: one Procedure per function plus the call edges linking them.
// Building one from an internal/flowgraph.Graph per function (and
// internal/ir's EdgeCalls edges for the call wiring) is the caller's job;
// keeping Supergraph itself independent of flowgraph lets the solver be
// tested against small hand-built graphs without a full IR pipeline.
type Supergraph struct {
	Procedures map[ir.ID]*Procedure
	Calls      []CallEdge

	procOf    map[ir.ID]ir.ID
	callsAt   map[ir.ID][]CallEdge
	incomingAt map[ir.ID][]CallEdge // callee id -> call edges targeting it
}

// NewSupergraph returns an empty supergraph.
func NewSupergraph() *Supergraph {
	return &Supergraph{
		Procedures: make(map[ir.ID]*Procedure),
		procOf:     make(map[ir.ID]ir.ID),
		callsAt:    make(map[ir.ID][]CallEdge),
		incomingAt: make(map[ir.ID][]CallEdge),
	}
}

// Procedure returns the procedure for id, creating it (with no entry/exits
// set yet) if this is the first reference to it.
func (s *Supergraph) Procedure(id ir.ID) *Procedure {
	p, ok := s.Procedures[id]
	if !ok {
		p = newProcedure(id)
		s.Procedures[id] = p
	}

	return p
}

// AddProcedure declares a procedure's entry and exit nodes, registering
// every node with this procedure so ProcOf resolves it.
func (s *Supergraph) AddProcedure(id, entry ir.ID, exits ...ir.ID) *Procedure {
	p := s.Procedure(id)
	p.Entry = entry
	p.Exits = exits

	s.procOf[entry] = id
	p.AddNode(entry)

	for _, e := range exits {
		s.procOf[e] = id
		p.AddNode(e)
	}

	return p
}

// AddEdge records a normal edge from -> to within procedure proc, and
// registers both endpoints as belonging to it.
func (s *Supergraph) AddEdge(proc, from, to ir.ID) {
	p := s.Procedure(proc)
	p.AddEdge(from, to)
	s.procOf[from] = proc
	s.procOf[to] = proc
}

// AddCall records a call edge: at CallSite (in procedure callerProc),
// control transfers to Callee's entry, and resumes at ReturnSite once
// Callee has been fully summarized for the facts flowing in at CallSite.
func (s *Supergraph) AddCall(callerProc ir.ID, callSite, returnSite, callee ir.ID) {
	ce := CallEdge{CallSite: callSite, ReturnSite: returnSite, Callee: callee}

	s.Calls = append(s.Calls, ce)
	s.callsAt[callSite] = append(s.callsAt[callSite], ce)
	s.incomingAt[callee] = append(s.incomingAt[callee], ce)

	p := s.Procedure(callerProc)
	p.AddNode(callSite)
	p.AddNode(returnSite)
	s.procOf[callSite] = callerProc
	s.procOf[returnSite] = callerProc
}

// ProcOf returns the procedure n belongs to, and false if n is unknown.
func (s *Supergraph) ProcOf(n ir.ID) (ir.ID, bool) {
	proc, ok := s.procOf[n]

	return proc, ok
}

// CallsAt returns every call edge originating at node n (ordinarily at
// most one, but a supergraph built from an unresolved overload or a
// dynamic dispatch site may fan out to several callees).
func (s *Supergraph) CallsAt(n ir.ID) []CallEdge {
	return s.callsAt[n]
}

// CallsInto returns every call edge whose Callee is proc.
func (s *Supergraph) CallsInto(proc ir.ID) []CallEdge {
	return s.incomingAt[proc]
}
