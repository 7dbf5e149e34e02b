package pointsto

// NullSafety is the auxiliary check built on top of a solved points-to
// graph: a dereference is safe iff the variable's points-to set does not
// contain NullLocation (spec.md §4.F).
type NullSafety struct {
	sol *Solution
}

// NewNullSafety wraps a solved points-to graph for null-dereference
// queries.
func NewNullSafety(sol *Solution) *NullSafety {
	return &NullSafety{sol: sol}
}

// MayBeNull reports whether v's points-to set contains the null sentinel.
func (n *NullSafety) MayBeNull(v Var) bool {
	id, ok := n.sol.table.byID[NullLocation]
	if !ok {
		return false
	}

	bm, ok := n.sol.sets[v]
	if !ok {
		return false
	}

	return bm.Contains(id)
}

// SafeDereference reports whether dereferencing v is safe: its points-to
// set is non-empty (it refers to something) and does not include
// NullLocation.
func (n *NullSafety) SafeDereference(v Var) bool {
	bm, ok := n.sol.sets[v]
	if !ok || bm.IsEmpty() {
		return false
	}

	return !n.MayBeNull(v)
}
