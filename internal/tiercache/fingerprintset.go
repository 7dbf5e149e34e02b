package tiercache

import (
	"fmt"

	"github.com/codeintel-engine/engine/pkg/alg/bloom"
	"github.com/codeintel-engine/engine/pkg/alg/cuckoo"
)

// BloomFingerprintSet is a probabilistic membership set over content
// fingerprint strings, backed by a Bloom filter: constant memory
// regardless of element count, zero false negatives, a configurable
// false-positive rate. Adapted from the teacher's git-blob-oriented
// `BloomHashSet` (internal/cache/bloom_set.go), retyped from
// `gitlib.Hash` to the fingerprint strings this package's tiers key
// on.
type BloomFingerprintSet struct {
	filter *bloom.Filter
}

// NewBloomFingerprintSet creates a Bloom-backed set sized for
// expectedElements at the given false-positive rate.
func NewBloomFingerprintSet(expectedElements uint, fpRate float64) (*BloomFingerprintSet, error) {
	bf, err := bloom.NewWithEstimates(expectedElements, fpRate)
	if err != nil {
		return nil, fmt.Errorf("bloom fingerprint set: %w", err)
	}

	return &BloomFingerprintSet{filter: bf}, nil
}

// Add inserts key into the set. Returns true if key was definitely
// not present before this call.
func (s *BloomFingerprintSet) Add(key string) bool {
	wasPresent := s.filter.TestAndAdd([]byte(key))

	return !wasPresent
}

// Contains reports whether key is possibly in the set.
func (s *BloomFingerprintSet) Contains(key string) bool {
	return s.filter.Test([]byte(key))
}

// Clear resets the set without reallocating the underlying bit array.
func (s *BloomFingerprintSet) Clear() { s.filter.Reset() }

// CuckooFingerprintSet is a probabilistic membership set over content
// fingerprint strings that additionally supports Remove, making it
// suitable for tracking which fingerprints a cache tier has already
// persisted so a later Put for the same content can be skipped, and
// for forgetting a fingerprint when its file is deleted or replaced.
// Adapted from the teacher's `CuckooHashSet`
// (internal/cache/cuckoo_set.go), retyped from `gitlib.Hash` to a
// fingerprint string.
type CuckooFingerprintSet struct {
	filter *cuckoo.Filter
}

// NewCuckooFingerprintSet creates a Cuckoo-backed set sized for
// expectedElements.
func NewCuckooFingerprintSet(expectedElements uint) (*CuckooFingerprintSet, error) {
	f, err := cuckoo.New(expectedElements)
	if err != nil {
		return nil, fmt.Errorf("cuckoo fingerprint set: %w", err)
	}

	return &CuckooFingerprintSet{filter: f}, nil
}

// Add inserts key into the set. Returns false if the filter is full
// and key could not be inserted.
func (s *CuckooFingerprintSet) Add(key string) bool {
	return s.filter.Insert([]byte(key))
}

// Contains reports whether key is possibly in the set.
func (s *CuckooFingerprintSet) Contains(key string) bool {
	return s.filter.Lookup([]byte(key))
}

// Remove deletes key from the set, e.g. when the file it fingerprints
// has been deleted or its content has changed.
func (s *CuckooFingerprintSet) Remove(key string) bool {
	return s.filter.Delete([]byte(key))
}
