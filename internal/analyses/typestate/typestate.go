package typestate

import "github.com/codeintel-engine/engine/internal/ir"

// Operation is one statement's effect on a tracked variable's automaton:
// Var underwent Event at Stmt. Extracting Operations from a function's
// UAST (matching e.g. a `.Close()` call to the "Close" event) is left to
// the caller, mirroring how internal/dataflow.ExtractDefUse is handed a
// flowgraph.Block rather than re-deriving block structure itself.
type Operation struct {
	Var   ir.ID
	Event string
	Stmt  ir.ID
}

// ViolationKind classifies a protocol violation.
type ViolationKind int

// Recognized violation kinds.
const (
	InvalidTransition ViolationKind = iota
	UseAfterClose
	ResourceLeak
)

// Violation is one confirmed protocol breach.
type Violation struct {
	Kind  ViolationKind
	Var   ir.ID
	Stmt  ir.ID
	State State
	Event string
}

// Graph is the minimal CFG shape Analyze needs: a node order, a
// predecessor lookup, and the exit set. This package does not import
// internal/flowgraph directly so its dataflow is testable against small
// hand-built graphs; the orchestrator wiring step adapts a real
// flowgraph.Graph into this shape.
type Graph struct {
	Order        []ir.ID
	Predecessors map[ir.ID][]ir.ID
	Exits        []ir.ID
}

type varStates map[ir.ID]map[State]bool

func cloneVarStates(in varStates) varStates {
	out := make(varStates, len(in))
	for v, states := range in {
		cp := make(map[State]bool, len(states))
		for s := range states {
			cp[s] = true
		}

		out[v] = cp
	}

	return out
}

func statesEqual(a, b varStates) bool {
	if len(a) != len(b) {
		return false
	}

	for v, as := range a {
		bs, ok := b[v]
		if !ok || len(as) != len(bs) {
			return false
		}

		for s := range as {
			if !bs[s] {
				return false
			}
		}
	}

	return true
}

// step applies ops to in, returning the resulting OUT state set and every
// violation observed along the way.
func step(in varStates, ops []Operation, proto *Protocol) (varStates, []Violation) {
	cur := cloneVarStates(in)

	var violations []Violation

	for _, op := range ops {
		states := cur[op.Var]
		if len(states) == 0 {
			states = map[State]bool{proto.Start: true}
		}

		next := make(map[State]bool, len(states))

		for s := range states {
			if n, ok := proto.Next(s, op.Event); ok {
				next[n] = true

				continue
			}

			if proto.IsTerminal(s) {
				violations = append(violations, Violation{Kind: UseAfterClose, Var: op.Var, Stmt: op.Stmt, State: s, Event: op.Event})
			} else {
				violations = append(violations, Violation{Kind: InvalidTransition, Var: op.Var, Stmt: op.Stmt, State: s, Event: op.Event})
			}

			next[s] = true
		}

		cur[op.Var] = next
	}

	return cur, violations
}

func mergeIn(id ir.ID, preds []ir.ID, out map[ir.ID]varStates) varStates {
	merged := varStates{}

	for _, p := range preds {
		for v, states := range out[p] {
			if merged[v] == nil {
				merged[v] = map[State]bool{}
			}

			for s := range states {
				merged[v][s] = true
			}
		}
	}

	return merged
}

// Analyze runs a forward "may" dataflow over g tracking, for every
// variable ops references, the set of automaton states it may be in at
// each program point under proto. A variable with no tracked state yet is
// implicitly at proto.Start. Reports every InvalidTransition and
// UseAfterClose observed, plus a ResourceLeak for every variable still in
// a non-terminal state at any exit block.
func Analyze(g Graph, ops map[ir.ID][]Operation, proto *Protocol) []Violation {
	in := make(map[ir.ID]varStates, len(g.Order))
	out := make(map[ir.ID]varStates, len(g.Order))

	for _, id := range g.Order {
		in[id] = varStates{}
		out[id] = varStates{}
	}

	for changed := true; changed; {
		changed = false

		for _, id := range g.Order {
			merged := mergeIn(id, g.Predecessors[id], out)
			if !statesEqual(merged, in[id]) {
				in[id] = merged
				changed = true
			}

			next, _ := step(in[id], ops[id], proto)
			if !statesEqual(next, out[id]) {
				out[id] = next
				changed = true
			}
		}
	}

	exits := make(map[ir.ID]bool, len(g.Exits))
	for _, e := range g.Exits {
		exits[e] = true
	}

	var violations []Violation

	for _, id := range g.Order {
		_, v := step(in[id], ops[id], proto)
		violations = append(violations, v...)

		if exits[id] {
			violations = append(violations, leakViolations(out[id], proto)...)
		}
	}

	return violations
}

// leakViolations reports a ResourceLeak for every variable still in a
// non-terminal state in final, the state set live at a function exit
// block.
func leakViolations(final varStates, proto *Protocol) []Violation {
	var violations []Violation

	for v, states := range final {
		for s := range states {
			if !proto.IsTerminal(s) {
				violations = append(violations, Violation{Kind: ResourceLeak, Var: v, State: s})
			}
		}
	}

	return violations
}
