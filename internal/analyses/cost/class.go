// Package cost estimates each function's asymptotic complexity class from
// its control flow graph: loop nesting depth contributes a polynomial
// factor, calls into functions of known cost (e.g. a binary search helper)
// contribute a logarithmic or exponential factor, and the two combine by
// the max/product rules the spec names (spec.md §4.H).
package cost

import "fmt"

// Kind is the shape of a Class's growth curve.
type Kind int

// Recognized growth shapes.
const (
	// KindPoly covers O(1) (Degree 0) through O(n^k) (Degree k), optionally
	// with a LogFactor for the O(n log n) family.
	KindPoly Kind = iota
	KindLog
	KindExp
	// KindUnknown marks a class this analysis could not estimate: present
	// only so Max treats it as a neutral element rather than as a false
	// O(1), not reported as a standalone growth shape.
	KindUnknown
)

// Class is one function's (or one block's local contribution to a
// function's) estimated asymptotic complexity.
type Class struct {
	Kind      Kind
	Degree    int
	LogFactor bool
}

// Constant is O(1).
func Constant() Class { return Class{Kind: KindPoly, Degree: 0} }

// Linear is O(n).
func Linear() Class { return Class{Kind: KindPoly, Degree: 1} }

// Linearithmic is O(n log n).
func Linearithmic() Class { return Class{Kind: KindPoly, Degree: 1, LogFactor: true} }

// Polynomial is O(n^k).
func Polynomial(k int) Class { return Class{Kind: KindPoly, Degree: k} }

// Logarithmic is O(log n).
func Logarithmic() Class { return Class{Kind: KindLog} }

// Exponential is O(2^n).
func Exponential() Class { return Class{Kind: KindExp} }

// UnknownClass marks "could not estimate."
func UnknownClass() Class { return Class{Kind: KindUnknown} }

// rank totally orders Class by growth rate for Max, excluding Unknown
// (handled as a special case by the caller): O(1) < O(log n) < O(n) <
// O(n log n) < O(n^2) < ... < O(2^n).
func (c Class) rank() int {
	switch c.Kind {
	case KindExp:
		return 1000
	case KindLog:
		return 1
	case KindPoly:
		r := c.Degree * 10
		if c.LogFactor {
			r++
		}

		return r
	default:
		return -1
	}
}

// Max returns the faster-growing of a and b. Unknown is treated as a
// neutral element: Max(Unknown, x) is x, so one unresolved call site does
// not erase an otherwise concrete estimate.
func Max(a, b Class) Class {
	if a.Kind == KindUnknown {
		return b
	}

	if b.Kind == KindUnknown {
		return a
	}

	if a.rank() >= b.rank() {
		return a
	}

	return b
}

// Product combines a's and b's growth rates as if one ran inside the
// other's loop body (the nesting-depth × call-cost combination rule):
// Poly×Poly adds degrees, Poly×Log sets the LogFactor bit on the
// surviving polynomial degree (or collapses to plain Log if the
// polynomial side is O(1)), Log×Log collapses back to Log — a coarse
// approximation; exact asymptotic analysis would track O(log^2 n)
// separately — and anything × Exp is Exp.
func Product(a, b Class) Class {
	if a.Kind == KindUnknown || b.Kind == KindUnknown {
		return UnknownClass()
	}

	if a.Kind == KindExp || b.Kind == KindExp {
		return Exponential()
	}

	switch {
	case a.Kind == KindPoly && b.Kind == KindPoly:
		return Class{Kind: KindPoly, Degree: a.Degree + b.Degree, LogFactor: a.LogFactor || b.LogFactor}
	case a.Kind == KindPoly && b.Kind == KindLog:
		return polyTimesLog(a)
	case a.Kind == KindLog && b.Kind == KindPoly:
		return polyTimesLog(b)
	case a.Kind == KindLog && b.Kind == KindLog:
		return Logarithmic()
	default:
		return UnknownClass()
	}
}

func polyTimesLog(poly Class) Class {
	if poly.Degree == 0 {
		return Logarithmic()
	}

	return Class{Kind: KindPoly, Degree: poly.Degree, LogFactor: true}
}

// String renders c in the spec's O(...) vocabulary.
func (c Class) String() string {
	switch c.Kind {
	case KindExp:
		return "O(2^n)"
	case KindLog:
		return "O(log n)"
	case KindUnknown:
		return "O(?)"
	case KindPoly:
		return polyString(c)
	default:
		return "O(?)"
	}
}

func polyString(c Class) string {
	switch {
	case c.Degree == 0:
		return "O(1)"
	case c.Degree == 1 && c.LogFactor:
		return "O(n log n)"
	case c.Degree == 1:
		return "O(n)"
	case c.LogFactor:
		return fmt.Sprintf("O(n^%d log n)", c.Degree)
	default:
		return fmt.Sprintf("O(n^%d)", c.Degree)
	}
}
