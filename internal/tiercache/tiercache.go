package tiercache

import "github.com/codeintel-engine/engine/internal/orchestrator"

// DependencyGraph is the reverse-dependency graph backing
// get_affected_files (spec.md §4.J): "given a set of changed files,
// return every file whose analysis output may now be stale." It is
// the same type the orchestrator's replay planner (§4.I) uses to
// expand a changed-file set before selecting affected stages, so a
// caller that registers a file's dependencies once can drive both the
// cache's invalidation and the orchestrator's incremental replay from
// a single graph.
type DependencyGraph = orchestrator.DependencyGraph

// NewDependencyGraph returns an empty DependencyGraph.
func NewDependencyGraph() *DependencyGraph { return orchestrator.NewDependencyGraph() }

// Compute lazily produces a value to cache; callers pass it to
// GetOrCompute so a miss at every tier costs exactly one Compute call
// regardless of how many tiers were consulted.
type Compute func() ([]byte, error)

// TieredCache chains SessionCache (L0) in front of AdaptiveCache (L1)
// in front of DiskCache (L2), implementing the read path spec.md §4.J
// describes: "L0 -> L1 -> L2 -> miss -> compute, then write back
// through every tier that missed." L0 and L1 are populated
// synchronously on a miss; L2 is populated asynchronously, since
// DiskCache.Put only enqueues the write.
type TieredCache struct {
	l0 *SessionCache
	l1 *AdaptiveCache
	l2 *DiskCache
}

// NewTieredCache composes the three tiers. l2 may be nil, in which
// case the cache degrades to L0+L1 only (useful for tests and for any
// deployment that opts out of disk spill).
func NewTieredCache(l0 *SessionCache, l1 *AdaptiveCache, l2 *DiskCache) *TieredCache {
	return &TieredCache{l0: l0, l1: l1, l2: l2}
}

// Get consults L0, then L1, then L2 in order, backfilling every
// faster tier that missed once a slower tier (or neither) produces a
// value. It does not invoke compute; use GetOrCompute for that.
func (c *TieredCache) Get(key string) ([]byte, bool) {
	if v, ok := c.l0.Get(key); ok {
		return v, true
	}

	if v, ok := c.l1.Get(key); ok {
		c.l0.Put(key, v)

		return v, true
	}

	if c.l2 != nil {
		if v, ok := c.l2.Get(key); ok {
			c.l0.Put(key, v)
			c.l1.Put(key, v)

			return v, true
		}
	}

	return nil, false
}

// Put writes value under key into every tier: synchronously into L0
// and L1, asynchronously into L2.
func (c *TieredCache) Put(key string, value []byte) {
	c.l0.Put(key, value)
	c.l1.Put(key, value)

	if c.l2 != nil {
		c.l2.Put(key, value)
	}
}

// GetOrCompute returns the cached value for key if any tier has it,
// backfilling faster tiers as Get does; otherwise it invokes compute
// exactly once and writes the result through every tier before
// returning it.
func (c *TieredCache) GetOrCompute(key string, compute Compute) ([]byte, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}

	c.Put(key, v)

	return v, nil
}
