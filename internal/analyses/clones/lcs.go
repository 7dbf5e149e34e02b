package clones

// lcsSimilarity scores two node-type sequences by the length of their
// longest common subsequence relative to the longer sequence, the gapped
// near-miss metric the Type-3 clone class is classified against: unlike
// the exact and renamed hashes, this tolerates inserted or deleted
// statements between otherwise matching structure.
func lcsSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	n := lcsLength(a, b)

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}

	return float64(n) / float64(longer)
}

func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
