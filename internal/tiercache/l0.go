// Package tiercache implements the orchestrator's three-level memoization
// cache (L0 session, L1 adaptive, L2 disk) plus the reverse-dependency
// graph driving incremental replay (spec.md §4.J).
package tiercache

import (
	"github.com/codeintel-engine/engine/pkg/alg/lru"
)

// sessionBloomExpectedN is the default expected-element count for the L0
// Bloom pre-filter: generous enough that a single analysis run's working
// set rarely saturates it.
const sessionBloomExpectedN = 4096

// fingerprintBytes converts a content fingerprint key to the byte slice
// the Bloom filter hashes.
func fingerprintBytes(key string) []byte { return []byte(key) }

// SessionCache is the L0 tier: a content-fingerprint-keyed, capacity-
// bounded, LRU-evicted cache. Membership queries consult a Bloom filter
// first (a bit test under the filter's read lock) before falling through to the guarded map
// lookup; a Bloom false positive simply costs one extra miss at the map,
// never a stale read, since the filter is only ever used to skip work on
// a definite absence.
type SessionCache struct {
	cache *lru.Cache[string, []byte]
}

// NewSessionCache returns an L0 cache bounded to maxEntries entries.
func NewSessionCache(maxEntries int) *SessionCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}

	return &SessionCache{
		cache: lru.New(
			lru.WithMaxEntries[string, []byte](maxEntries),
			lru.WithBloomFilter[string, []byte](fingerprintBytes, sessionBloomExpectedN),
		),
	}
}

// Get returns the cached value for key, if present.
func (c *SessionCache) Get(key string) ([]byte, bool) {
	return c.cache.Get(key)
}

// Put stores value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *SessionCache) Put(key string, value []byte) {
	c.cache.Put(key, value)
}

// Len returns the number of entries currently cached.
func (c *SessionCache) Len() int { return c.cache.Len() }

// Clear empties the cache and resets its Bloom filter.
func (c *SessionCache) Clear() { c.cache.Clear() }
