// Package concurrency detects two classes of concurrency defect: data
// races, via the points-to alias relation combined with a happens-before
// approximation derived from lock regions, and deadlocks, via Tarjan SCC
// over a lock wait-for graph (spec.md §4.H).
package concurrency

import "github.com/codeintel-engine/engine/internal/ir"

// AliasOracle answers whether two variables may refer to the same memory
// location. internal/pointsto.Solution satisfies this directly.
type AliasOracle interface {
	MayAlias(a, b ir.ID) bool
}

// Access is one goroutine's read or write of a variable at a program
// point, along with the set of locks held at that point.
type Access struct {
	Var       ir.ID
	Stmt      ir.ID
	Goroutine int
	Write     bool
	Held      []string
}

// Race is a pair of accesses from different goroutines that may touch the
// same location with no common held lock and at least one of them a
// write — the standard data-race definition.
type Race struct {
	A, B Access
}

// FindRaces reports every racing pair among accesses. Accesses from the
// same goroutine never race with each other: within one goroutine, program
// order is itself a happens-before edge, so this analysis only needs
// cross-goroutine pairs.
func FindRaces(accesses []Access, alias AliasOracle) []Race {
	var races []Race

	for i := 0; i < len(accesses); i++ {
		for j := i + 1; j < len(accesses); j++ {
			a, b := accesses[i], accesses[j]

			if a.Goroutine == b.Goroutine {
				continue
			}

			if !a.Write && !b.Write {
				continue
			}

			if !alias.MayAlias(a.Var, b.Var) {
				continue
			}

			if sharesLock(a.Held, b.Held) {
				continue
			}

			races = append(races, Race{A: a, B: b})
		}
	}

	return races
}

// sharesLock reports whether a and b hold any lock in common — the
// happens-before approximation: two critical sections guarded by the same
// lock cannot execute concurrently, so accesses protected by a common lock
// never race even if they alias.
func sharesLock(a, b []string) bool {
	held := make(map[string]bool, len(a))
	for _, l := range a {
		held[l] = true
	}

	for _, l := range b {
		if held[l] {
			return true
		}
	}

	return false
}
