package pointsto

import "github.com/RoaringBitmap/roaring/v2"

// ProgramPoint identifies a point in a function's flow graph the
// flow-sensitive solver tracks a separate state at — ordinarily a
// flowgraph.Block id, kept as ir.ID here to avoid an import cycle between
// internal/flowgraph and internal/pointsto.
type ProgramPoint = Var

// FlowState is the points-to state live at one program point: every
// variable's points-to set as of that point.
type FlowState struct {
	sets map[Var]*roaring.Bitmap
}

func newFlowState() *FlowState {
	return &FlowState{sets: make(map[Var]*roaring.Bitmap)}
}

func (s *FlowState) get(v Var) *roaring.Bitmap {
	bm, ok := s.sets[v]
	if !ok {
		bm = roaring.New()
	}

	return bm
}

// join merges other into s pointwise (set union per variable), the merge
// rule spec.md §4.F's flow-sensitive variant uses at CFG merge points.
func (s *FlowState) join(other *FlowState) {
	for v, bm := range other.sets {
		cur, ok := s.sets[v]
		if !ok {
			s.sets[v] = bm.Clone()

			continue
		}

		cur.Or(bm)
	}
}

// FlowSensitive tracks one FlowState per program point over a sequence of
// per-point constraint batches supplied by the caller (ordinarily the
// statements of one flowgraph.Block, in order), applying the strong/weak
// update rule at stores and joining states at merges (spec.md §4.F).
type FlowSensitive struct {
	table  *locationTable
	states map[ProgramPoint]*FlowState
}

// NewFlowSensitive returns an empty flow-sensitive solver.
func NewFlowSensitive() *FlowSensitive {
	return &FlowSensitive{table: newLocationTable(), states: make(map[ProgramPoint]*FlowState)}
}

// Seed installs preds' already-computed states as predecessors of point,
// joining them pointwise before any of point's own statements apply. A
// point with no predecessors (function entry) starts from the empty state.
func (f *FlowSensitive) Seed(point ProgramPoint, preds ...ProgramPoint) *FlowState {
	merged := newFlowState()

	for _, p := range preds {
		if s, ok := f.states[p]; ok {
			merged.join(s)
		}
	}

	f.states[point] = merged

	return merged
}

// Alloc applies an ALLOC at point's state: v ⊇ {loc}.
func (f *FlowSensitive) Alloc(point ProgramPoint, v Var, loc Location) {
	s := f.stateFor(point)
	bm := s.get(v)
	bm.Add(f.table.intern(loc))
	s.sets[v] = bm
}

// Copy applies a COPY at point's state: v ⊇ w.
func (f *FlowSensitive) Copy(point ProgramPoint, v, w Var) {
	s := f.stateFor(point)
	bm := s.get(v)
	bm.Or(s.get(w))
	s.sets[v] = bm
}

// Store applies a STORE *v ⊇ w at point's state. If v's current points-to
// set is a non-summary singleton location, the update is strong: the
// target's old contents are discarded and replaced with w's set. Otherwise
// it is weak: w's set is unioned into every location v may refer to,
// because a store through an ambiguous pointer could be writing through
// any of them (spec.md §4.F).
func (f *FlowSensitive) Store(point ProgramPoint, v, w Var, summary func(Location) bool) {
	s := f.stateFor(point)
	targets := s.get(v)

	if targets.GetCardinality() == 1 {
		it := targets.Iterator()
		loc := f.table.lookup(it.Next())

		if !summary(loc) {
			cv := contentsVar(loc)
			s.sets[cv] = s.get(w).Clone()

			return
		}
	}

	it := targets.Iterator()
	for it.HasNext() {
		loc := f.table.lookup(it.Next())
		cv := contentsVar(loc)
		bm := s.get(cv)
		bm.Or(s.get(w))
		s.sets[cv] = bm
	}
}

func (f *FlowSensitive) stateFor(point ProgramPoint) *FlowState {
	s, ok := f.states[point]
	if !ok {
		s = newFlowState()
		f.states[point] = s
	}

	return s
}

// StateAt returns the FlowState at point, or nil if point was never seeded.
func (f *FlowSensitive) StateAt(point ProgramPoint) *FlowState {
	return f.states[point]
}

// PointsTo returns v's points-to set at point, translated back to Location
// ids.
func (f *FlowSensitive) PointsTo(point ProgramPoint, v Var) []Location {
	s, ok := f.states[point]
	if !ok {
		return nil
	}

	bm := s.get(v)

	out := make([]Location, 0, bm.GetCardinality())

	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, f.table.lookup(it.Next()))
	}

	return out
}
