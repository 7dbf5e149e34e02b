package pointsto

// DefaultHybridThreshold is the node-count threshold spec.md §4.F leaves
// configurable: below it Hybrid runs Andersen; at or above it, Steensgaard.
const DefaultHybridThreshold = 50000

// Hybrid runs Andersen when the constraint graph is small enough to afford
// its precision, and falls back to Steensgaard once the variable count
// crosses Threshold. The decision is made once, at the first Solve call,
// from the distinct variable count seen across every constraint added so
// far.
type Hybrid struct {
	Threshold int

	vars map[Var]bool

	constraints []Constraint

	delegate Analyzer
}

// NewHybrid returns a Hybrid solver with the default threshold. Set
// Threshold before the first AddX call to override it.
func NewHybrid() *Hybrid {
	return &Hybrid{Threshold: DefaultHybridThreshold, vars: make(map[Var]bool)}
}

func (h *Hybrid) record(c Constraint) {
	h.constraints = append(h.constraints, c)
	h.vars[c.V] = true

	if c.W != "" {
		h.vars[c.W] = true
	}
}

// AddAlloc implements Analyzer.
func (h *Hybrid) AddAlloc(v Var, loc Location) {
	h.record(Constraint{Kind: AllocConstraint, V: v, Loc: loc})
}

// AddCopy implements Analyzer.
func (h *Hybrid) AddCopy(v, w Var) {
	h.record(Constraint{Kind: CopyConstraint, V: v, W: w})
}

// AddLoad implements Analyzer.
func (h *Hybrid) AddLoad(v, w Var) {
	h.record(Constraint{Kind: LoadConstraint, V: v, W: w})
}

// AddStore implements Analyzer.
func (h *Hybrid) AddStore(v, w Var) {
	h.record(Constraint{Kind: StoreConstraint, V: v, W: w})
}

// AddConstraint implements Analyzer.
func (h *Hybrid) AddConstraint(c Constraint) {
	h.record(c)
}

// Solve picks the delegate solver based on the node count observed across
// every constraint recorded so far, replays the constraints into it, and
// solves. Picking the delegate lazily (rather than per-constraint) means a
// small function that happens to be added to first never commits Hybrid to
// Andersen before the real node count is known.
func (h *Hybrid) Solve() (*Solution, error) {
	if len(h.vars) >= h.Threshold {
		h.delegate = NewSteensgaard()
	} else {
		h.delegate = NewAndersen()
	}

	for _, c := range h.constraints {
		h.delegate.AddConstraint(c)
	}

	return h.delegate.Solve()
}
