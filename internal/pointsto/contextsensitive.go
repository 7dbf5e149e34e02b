package pointsto

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// CallSite identifies one call expression node, the unit a Context is a
// bounded sequence of (spec.md §4.F: "contexts are bounded sequences of
// call sites with last-k truncation").
type CallSite = Var

// Context is an ordered, last-k-truncated sequence of call sites: the
// calling context a context-sensitive var/location is cloned under.
type Context struct {
	sites []CallSite
	k     int
}

// NewContext returns the empty (function-entry) context truncated to at
// most k call sites.
func NewContext(k int) Context {
	if k < 1 {
		k = 1
	}

	return Context{k: k}
}

// Push returns the context produced by calling through site from c,
// truncated to the last k sites (k-CFA's "call-string" truncation, or
// equivalently the allocation-site chain for object-sensitivity).
func (c Context) Push(site CallSite) Context {
	sites := append(append([]CallSite{}, c.sites...), site)
	if len(sites) > c.k {
		sites = sites[len(sites)-c.k:]
	}

	return Context{sites: sites, k: c.k}
}

// key renders the context as a stable string for use as a map key /
// identity suffix when cloning heap objects per context.
func (c Context) key() string {
	var b strings.Builder
	for i, s := range c.sites {
		if i > 0 {
			b.WriteByte('|')
		}

		b.WriteString(string(s))
	}

	return b.String()
}

// clone builds the context-qualified identity of id under c: heap cloning,
// one abstract location (or one var instance) per (id, context) pair.
func clone(id Var, c Context) Var {
	if len(c.sites) == 0 {
		return id
	}

	return Var(string(id) + "@" + c.key())
}

// baseOf strips a clone's context suffix, recovering the id it was cloned
// from. Context-qualified ids are never produced outside clone, and
// id-generation (ir.NewID) never emits '@', so the first '@' is always the
// clone separator.
func baseOf(id Var) Var {
	if i := strings.IndexByte(string(id), '@'); i >= 0 {
		return Var(string(id)[:i])
	}

	return id
}

// ContextSensitive runs Andersen-style propagation per context: constraints
// are added against a (var, context)-qualified identity, and the resulting
// solution joins contexts that coincide (spec.md §4.F: "per-context
// abstract values are joined when contexts coincide").
type ContextSensitive struct {
	k        int
	andersen *Andersen
}

// NewContextSensitive returns a context-sensitive solver with call strings
// (or object allocation chains) truncated to the last k sites.
func NewContextSensitive(k int) *ContextSensitive {
	return &ContextSensitive{k: k, andersen: NewAndersen()}
}

// AddAlloc records an ALLOC at v under context ctx; the location itself is
// heap-cloned per context too, so two allocations through different call
// paths to the same allocation site are kept distinct.
func (c *ContextSensitive) AddAlloc(v Var, ctx Context, loc Location) {
	c.andersen.AddAlloc(clone(v, ctx), clone(loc, ctx))
}

// AddCopy records a COPY at (v, ctx) ⊇ (w, ctx) within the same context.
func (c *ContextSensitive) AddCopy(v, w Var, ctx Context) {
	c.andersen.AddCopy(clone(v, ctx), clone(w, ctx))
}

// AddLoad records a LOAD within context ctx.
func (c *ContextSensitive) AddLoad(v, w Var, ctx Context) {
	c.andersen.AddLoad(clone(v, ctx), clone(w, ctx))
}

// AddStore records a STORE within context ctx.
func (c *ContextSensitive) AddStore(v, w Var, ctx Context) {
	c.andersen.AddStore(clone(v, ctx), clone(w, ctx))
}

// BindCallArgument connects a caller's argument var (under callerCtx) to
// the callee parameter var under the context the call pushes: the
// interprocedural edge k-CFA adds at a call site.
func (c *ContextSensitive) BindCallArgument(argVar Var, callerCtx Context, paramVar Var, site CallSite) {
	calleeCtx := callerCtx.Push(site)
	c.andersen.AddCopy(clone(paramVar, calleeCtx), clone(argVar, callerCtx))
}

// BindReturn connects a callee's return var under its context back to the
// caller's receiver var.
func (c *ContextSensitive) BindReturn(returnVar Var, callerCtx Context, site CallSite, receiverVar Var) {
	calleeCtx := callerCtx.Push(site)
	c.andersen.AddCopy(clone(receiverVar, callerCtx), clone(returnVar, calleeCtx))
}

// Solve runs the underlying Andersen fixpoint over the context-qualified
// identities and returns the raw per-context solution: callers that want
// a context-insensitive view should call Merge.
func (c *ContextSensitive) Solve() (*Solution, error) {
	return c.andersen.Solve()
}

// Merge joins every context-qualified clone of base back into one
// points-to set for base, the "joined when contexts coincide" contract:
// a context-insensitive client (e.g. a query that doesn't care which call
// path it came through) sees the union across all contexts, with each
// location's own context suffix stripped back to the base allocation site
// it was cloned from.
func Merge(sol *Solution, base Var) []Location {
	merged := roaring.New()

	prefix := string(base) + "@"

	for v, bm := range sol.sets {
		if string(v) == string(base) || strings.HasPrefix(string(v), prefix) {
			merged.Or(bm)
		}
	}

	seen := make(map[Location]bool)

	var out []Location

	it := merged.Iterator()
	for it.HasNext() {
		loc := baseOf(sol.table.lookup(it.Next()))
		if !seen[loc] {
			seen[loc] = true

			out = append(out, loc)
		}
	}

	return out
}
