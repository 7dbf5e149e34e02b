package ifds

import "github.com/codeintel-engine/engine/internal/ir"

// EdgeFunction computes how a value transforms along one exploded-graph
// edge: IDE's extension of IFDS from "facts may hold" to "facts hold this
// value" (spec.md §4.G: "IDE extends IFDS with edge functions over a
// meet-semilattice of values").
type EdgeFunction[V any] func(V) V

// IdentityEdgeFunction returns the edge function that leaves a value
// unchanged, the framework-provided builder spec.md §4.G asks for.
func IdentityEdgeFunction[V any]() EdgeFunction[V] {
	return func(v V) V { return v }
}

// ConstantEdgeFunction returns the edge function that ignores its input
// and always yields c — used at a fact's generation point, where the
// value no longer depends on whatever held before.
func ConstantEdgeFunction[V any](c V) EdgeFunction[V] {
	return func(V) V { return c }
}

// Compose returns the edge function equivalent to applying f then g, the
// "composition" operation spec.md §4.G requires the framework provide
// (used when chaining edge functions along a path of exploded edges).
func Compose[V any](f, g EdgeFunction[V]) EdgeFunction[V] {
	return func(v V) V { return g(f(v)) }
}

// MeetFunc is a meet-semilattice's binary meet operator (commutative,
// associative, idempotent) over value domain V.
type MeetFunc[V any] func(a, b V) V

// Meet folds MeetFunc over a non-empty slice of values. Calling it with
// zero values panics, since a semilattice's meet is undefined over the
// empty set without a designated top element; callers that may have zero
// values should special-case that against their lattice's Top.
func Meet[V any](meet MeetFunc[V], values ...V) V {
	acc := values[0]
	for _, v := range values[1:] {
		acc = meet(acc, v)
	}

	return acc
}

// IDEProblem extends Problem with edge functions over value domain V: for
// each flow function, the *Edge variant returns the same successor facts
// but paired with the edge function describing how each successor's value
// derives from the predecessor fact's value (spec.md §4.G's IDE
// extension).
type IDEProblem[F comparable, V any] interface {
	Problem[F]

	// Meet is this IDE instantiation's semilattice meet operator, used to
	// combine values reaching the same (node, fact) pair along different
	// paths.
	Meet(a, b V) V

	// Bottom is the semilattice's bottom element, the value a fact starts
	// with before any edge function has been applied to it.
	Bottom() V

	NormalFlowEdge(n ir.ID, d2 F) map[F]EdgeFunction[V]
	CallFlowEdge(callSite, callee ir.ID, d2 F) map[F]EdgeFunction[V]
	ReturnFlowEdge(callSite, returnSite, calleeExit ir.ID, callerFact, exitFact F) map[F]EdgeFunction[V]
	CallToReturnFlowEdge(callSite, returnSite ir.ID, d2 F) map[F]EdgeFunction[V]
}
