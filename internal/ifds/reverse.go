package ifds

import "github.com/codeintel-engine/engine/internal/ir"

// ReverseSupergraph builds the supergraph for a backward IFDS instantiation
// (SPEC_FULL.md's "what sources can reach this sink" backward taint
// query): every normal edge is flipped, and each call edge's call/return
// roles swap (a reversed walk "calls into" a callee by entering at its
// original exit and leaving at its original entry).
//
// A procedure with more than one exit has no single node to serve as the
// reversed graph's entry, so a synthetic super-exit node is introduced
// with an edge to each real exit; this mirrors the standard trick for
// reversing a CFG with multiple exits (add a single exit node with an
// edge in from every real exit, then reverse).
func ReverseSupergraph(sg *Supergraph) *Supergraph {
	rev := NewSupergraph()

	revEntryOf := make(map[ir.ID]ir.ID, len(sg.Procedures))

	for id, p := range sg.Procedures {
		if len(p.Exits) == 1 {
			revEntryOf[id] = p.Exits[0]
		} else {
			revEntryOf[id] = ir.NewID("ifds", "reverse-superexit", string(id))
		}
	}

	for id, p := range sg.Procedures {
		rev.AddProcedure(id, revEntryOf[id], p.Entry)

		if len(p.Exits) != 1 {
			for _, exit := range p.Exits {
				rev.AddEdge(id, revEntryOf[id], exit)
			}
		}

		for from, tos := range p.normal {
			for _, to := range tos {
				rev.AddEdge(id, to, from)
			}
		}
	}

	for _, ce := range sg.Calls {
		callerProc, ok := sg.ProcOf(ce.CallSite)
		if !ok {
			continue
		}

		rev.AddCall(callerProc, ce.ReturnSite, ce.CallSite, ce.Callee)
	}

	return rev
}
