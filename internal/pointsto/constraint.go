// Package pointsto implements the L6 points-to engine: Steensgaard,
// Andersen, and Hybrid solvers over a shared constraint model, plus
// flow-sensitive, context-sensitive, demand-driven, and incremental
// variants, and a null-safety auxiliary built on top of the solved graph.
package pointsto

import "github.com/codeintel-engine/engine/internal/ir"

// Var is a pointer-valued program entity: a variable, parameter, field, or
// return value node id from the IR.
type Var = ir.ID

// Location is an abstract allocation site id, or a synthetic sentinel
// (NullLocation below).
type Location = ir.ID

// NullLocation is the distinguished location the null-safety auxiliary
// checks for; it is never produced by a real ALLOC constraint, only ever
// added explicitly where an analysis knows an expression may be nil/null.
var NullLocation = ir.NewID("pointsto", "sentinel", "null")

// ConstraintKind identifies which of the four constraint forms a
// Constraint encodes (spec.md §3 Points-to Universe).
type ConstraintKind int

const (
	// AllocConstraint is "v ⊇ {ℓ}".
	AllocConstraint ConstraintKind = iota
	// CopyConstraint is "v ⊇ w".
	CopyConstraint
	// LoadConstraint is "v ⊇ *w".
	LoadConstraint
	// StoreConstraint is "*v ⊇ w".
	StoreConstraint
)

// Constraint is one inclusion constraint over the points-to universe. Only
// the fields relevant to Kind are meaningful: Alloc uses V and Loc; Copy,
// Load, and Store use V and W.
type Constraint struct {
	Kind ConstraintKind
	V    Var
	W    Var
	Loc  Location
}

// contentsVar is the variable standing in for "the value(s) stored at
// location loc". Var and Location share the same underlying id space (both
// are ir.ID), so a location can double as the variable representing its
// own contents without a second namespace — the standard simplification
// for a field-insensitive, context-insensitive heap model.
func contentsVar(loc Location) Var {
	return Var(loc)
}

// Analyzer is the public points-to analyzer interface (spec.md §4.F):
// add_alloc, add_copy, add_load, add_store, add_constraint, solve().
// Steensgaard, Andersen, and Hybrid all implement it.
type Analyzer interface {
	AddAlloc(v Var, loc Location)
	AddCopy(v, w Var)
	AddLoad(v, w Var)
	AddStore(v, w Var)
	AddConstraint(c Constraint)
	Solve() (*Solution, error)
}

func dispatchConstraint(a Analyzer, c Constraint) {
	switch c.Kind {
	case AllocConstraint:
		a.AddAlloc(c.V, c.Loc)
	case CopyConstraint:
		a.AddCopy(c.V, c.W)
	case LoadConstraint:
		a.AddLoad(c.V, c.W)
	case StoreConstraint:
		a.AddStore(c.V, c.W)
	}
}
