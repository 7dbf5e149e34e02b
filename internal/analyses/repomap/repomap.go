package repomap

// Compute scores every node of g by personalized PageRank, additionally
// running HITS when cfg.ComputeHITS is set.
func Compute(g *Graph, cfg Config) Result {
	result := Result{PageRank: pageRank(g, cfg)}

	if cfg.ComputeHITS {
		result.Hub, result.Authority = hits(g, cfg)
	}

	return result
}

// TopN returns the n highest-scoring node names from scores, descending,
// breaking ties by name for determinism.
func TopN(scores map[string]float64, n int) []string {
	type entry struct {
		name  string
		score float64
	}

	entries := make([]entry, 0, len(scores))
	for name, score := range scores {
		entries = append(entries, entry{name, score})
	}

	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if a.score > b.score || (a.score == b.score && a.name <= b.name) {
				break
			}

			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}

	if n > len(entries) {
		n = len(entries)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].name
	}

	return out
}
