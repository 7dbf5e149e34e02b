// Package clones finds duplicated code across a repository's functions at
// four levels of divergence (spec.md §4.H): identical token streams
// (Type-1), structurally identical but renamed (Type-2), near-miss
// structure with inserted or deleted statements (Type-3), and semantically
// similar but structurally different implementations, estimated via
// MinHash+LSH over UAST shingles (Type-4).
package clones

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/codeintel-engine/engine/internal/ir"
	"github.com/codeintel-engine/engine/pkg/alg/lsh"
	"github.com/codeintel-engine/engine/pkg/alg/minhash"
	"github.com/codeintel-engine/engine/pkg/uast/pkg/node"
)

// Type classifies how closely two functions match.
type Type string

// Recognized clone types, ordered loosest to strictest similarity.
const (
	Type4 Type = "Type-4" // semantically similar, MinHash/LSH estimate
	Type3 Type = "Type-3" // near-miss structure, gapped LCS match
	Type2 Type = "Type-2" // identical structure, renamed identifiers
	Type1 Type = "Type-1" // identical token stream
)

// Func is one candidate unit for clone comparison, ordinarily a function or
// method body.
type Func struct {
	ID   ir.ID
	Name string
	Root *node.Node
}

// Pair is a confirmed clone relationship between two functions, A always
// ordered before B by Detect's input order so the same pair never reports
// twice under swapped arguments.
type Pair struct {
	A, B         ir.ID
	NameA, NameB string
	Similarity   float64
	Type         Type
}

// Config tunes shingle size, LSH banding, and the Type-3/4 similarity
// floors. Defaults mirror the teacher corpus's MinHash/LSH clone detector.
type Config struct {
	ShingleSize int
	NumHashes   int
	NumBands    int
	NumRows     int

	// Type3Threshold is the minimum LCS similarity to classify Type-3.
	Type3Threshold float64
	// Type4Threshold is the minimum MinHash similarity to classify Type-4
	// once Type-3's stricter LCS test has failed.
	Type4Threshold float64
}

// DefaultConfig returns the detector's baseline tuning.
func DefaultConfig() Config {
	return Config{
		ShingleSize:    5,
		NumHashes:      128,
		NumBands:       16,
		NumRows:        8,
		Type3Threshold: 0.7,
		Type4Threshold: 0.5,
	}
}

// Detector finds clone pairs across a set of functions.
type Detector struct {
	cfg      Config
	shingler *shingler
}

// NewDetector builds a Detector. A zero-value Config is replaced with
// DefaultConfig's tuning field by field where unset.
func NewDetector(cfg Config) *Detector {
	if cfg.ShingleSize == 0 {
		cfg.ShingleSize = DefaultConfig().ShingleSize
	}

	if cfg.NumHashes == 0 {
		cfg.NumHashes = DefaultConfig().NumHashes
	}

	if cfg.NumBands == 0 {
		cfg.NumBands = DefaultConfig().NumBands
	}

	if cfg.NumRows == 0 {
		cfg.NumRows = DefaultConfig().NumRows
	}

	if cfg.Type3Threshold == 0 {
		cfg.Type3Threshold = DefaultConfig().Type3Threshold
	}

	if cfg.Type4Threshold == 0 {
		cfg.Type4Threshold = DefaultConfig().Type4Threshold
	}

	return &Detector{cfg: cfg, shingler: newShingler(cfg.ShingleSize)}
}

// pairKey canonicalizes an unordered pair of indices so (i,j) and (j,i)
// collapse to the same dedup key.
type pairKey struct{ lo, hi int }

func newPairKey(i, j int) pairKey {
	if i > j {
		i, j = j, i
	}

	return pairKey{lo: i, hi: j}
}

// Detect runs all four clone tiers over funcs and returns every confirmed
// pair, most similar first. Type-1 and Type-2 are found by exact and
// renamed-token hash bucketing (O(n)); Type-3 and Type-4 are found by
// LSH-narrowed candidate pairs from Type-4's MinHash signatures, refined by
// an LCS gapped-match score.
func (d *Detector) Detect(funcs []Func) ([]Pair, error) {
	seen := make(map[pairKey]bool)

	var pairs []Pair

	pairs = append(pairs, d.detectHashBucketed(funcs, exactHash, Type1, seen)...)
	pairs = append(pairs, d.detectHashBucketed(funcs, renamedHash, Type2, seen)...)

	semantic, err := d.detectSemantic(funcs, seen)
	if err != nil {
		return nil, err
	}

	pairs = append(pairs, semantic...)

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}

		return pairs[i].NameA < pairs[j].NameA
	})

	return pairs, nil
}

func (d *Detector) detectHashBucketed(
	funcs []Func, hashFn func(*node.Node) string, typ Type, seen map[pairKey]bool,
) []Pair {
	buckets := make(map[string][]int)

	for i, f := range funcs {
		h := hashFn(f.Root)
		buckets[h] = append(buckets[h], i)
	}

	var pairs []Pair

	for _, idxs := range buckets {
		if len(idxs) < 2 {
			continue
		}

		for a := 0; a < len(idxs); a++ {
			for b := a + 1; b < len(idxs); b++ {
				key := newPairKey(idxs[a], idxs[b])
				if seen[key] {
					continue
				}

				seen[key] = true
				pairs = append(pairs, newPair(funcs[idxs[a]], funcs[idxs[b]], 1.0, typ))
			}
		}
	}

	return pairs
}

func (d *Detector) detectSemantic(funcs []Func, seen map[pairKey]bool) ([]Pair, error) {
	sigs := make([]*minhash.Signature, len(funcs))
	types := make([][]string, len(funcs))

	idx, err := lsh.New(d.cfg.NumBands, d.cfg.NumRows)
	if err != nil {
		return nil, fmt.Errorf("clones: building lsh index: %w", err)
	}

	for i, f := range funcs {
		sig, sigErr := minhash.New(d.cfg.NumHashes)
		if sigErr != nil {
			return nil, fmt.Errorf("clones: building minhash signature: %w", sigErr)
		}

		for _, sh := range d.shingler.shingles(f.Root) {
			sig.Add(sh)
		}

		sigs[i] = sig
		types[i] = nodeTypes(f.Root)

		if insErr := idx.Insert(strconv.Itoa(i), sig); insErr != nil {
			return nil, fmt.Errorf("clones: indexing function %q: %w", f.Name, insErr)
		}
	}

	var pairs []Pair

	for i, f := range funcs {
		matches, queryErr := idx.QueryThreshold(sigs[i], d.cfg.Type4Threshold)
		if queryErr != nil {
			return nil, fmt.Errorf("clones: querying function %q: %w", f.Name, queryErr)
		}

		for _, m := range matches {
			j, convErr := strconv.Atoi(m)
			if convErr != nil || j <= i {
				continue
			}

			key := newPairKey(i, j)
			if seen[key] {
				continue
			}

			seen[key] = true

			pair, classifyErr := d.classifySemanticPair(funcs[i], funcs[j], sigs[i], sigs[j], types[i], types[j])
			if classifyErr != nil {
				return nil, classifyErr
			}

			pairs = append(pairs, pair)
		}
	}

	return pairs, nil
}

func (d *Detector) classifySemanticPair(
	a, b Func, sigA, sigB *minhash.Signature, typesA, typesB []string,
) (Pair, error) {
	lcsSim := lcsSimilarity(typesA, typesB)
	if lcsSim >= d.cfg.Type3Threshold {
		return newPair(a, b, lcsSim, Type3), nil
	}

	sim, err := sigA.Similarity(sigB)
	if err != nil {
		return Pair{}, fmt.Errorf("clones: comparing signatures for %q and %q: %w", a.Name, b.Name, err)
	}

	return newPair(a, b, sim, Type4), nil
}

func newPair(a, b Func, similarity float64, typ Type) Pair {
	return Pair{
		A:          a.ID,
		B:          b.ID,
		NameA:      a.Name,
		NameB:      b.Name,
		Similarity: similarity,
		Type:       typ,
	}
}
