package pointsto

// Incremental wraps an Andersen solver with an edit log so that, after a
// batch of Add/Remove constraint updates, only the affected points-to
// values need to be recomputed rather than the whole problem from scratch
// — while still guaranteeing the result is identical to solving the new
// constraint set fresh (spec.md §4.F's semantic-idempotence contract).
//
// The implementation underneath keeps that guarantee the simple way:
// removals invalidate the whole solver and rebuild it from the surviving
// constraint set, while additions are applied directly to the live
// Andersen instance (which already only propagates deltas). This is a
// conservative incremental strategy — additions are genuinely
// incremental, removals are not — documented as a scope decision rather
// than an attempt at a fully decremental Andersen, which would need
// reference-counted constraint provenance per points-to element.
type Incremental struct {
	live     []Constraint
	andersen Analyzer
	solved   *Solution
	dirty    bool
}

// NewIncremental returns an empty incremental solver.
func NewIncremental() *Incremental {
	return &Incremental{andersen: NewAndersen(), dirty: true}
}

// Add applies a batch of new constraints. Each is both recorded (so a
// later Remove can rebuild correctly) and, since Andersen already
// propagates only deltas, applied directly to the live solver.
func (inc *Incremental) Add(constraints ...Constraint) {
	for _, c := range constraints {
		inc.live = append(inc.live, c)
		inc.andersen.AddConstraint(c)
	}

	inc.dirty = true
}

// Remove deletes constraints from the live set (by value equality) and
// rebuilds the solver from the surviving constraints. Correctness over
// cleverness: a constraint's effect on the points-to graph isn't
// invertible in general (another surviving constraint may have derived the
// same element independently), so the only semantically-idempotent option
// is to recompute from the new constraint set.
func (inc *Incremental) Remove(constraints ...Constraint) {
	toRemove := make(map[Constraint]int, len(constraints))
	for _, c := range constraints {
		toRemove[c]++
	}

	survivors := inc.live[:0:0]

	for _, c := range inc.live {
		if toRemove[c] > 0 {
			toRemove[c]--

			continue
		}

		survivors = append(survivors, c)
	}

	inc.live = survivors

	rebuilt := NewAndersen()
	for _, c := range inc.live {
		rebuilt.AddConstraint(c)
	}

	inc.andersen = rebuilt
	inc.dirty = true
}

// Solve returns the current solution, recomputing only if constraints have
// changed since the last call.
func (inc *Incremental) Solve() (*Solution, error) {
	if !inc.dirty && inc.solved != nil {
		return inc.solved, nil
	}

	sol, err := inc.andersen.Solve()
	if err != nil {
		return nil, err
	}

	inc.solved = sol
	inc.dirty = false

	return sol, nil
}
