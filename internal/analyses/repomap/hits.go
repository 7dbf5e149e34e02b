package repomap

import "math"

// hits runs Kleinberg's HITS to (near-)convergence: a good hub points to
// good authorities, a good authority is pointed to by good hubs. Each
// iteration normalizes both vectors to unit L2 norm so the joint update
// doesn't diverge or collapse to zero.
func hits(g *Graph, cfg Config) (hub, authority map[string]float64) {
	n := len(g.Nodes)

	hub = make(map[string]float64, n)
	authority = make(map[string]float64, n)

	if n == 0 {
		return hub, authority
	}

	inEdges := make(map[string][]string, n)
	for from, tos := range g.Edges {
		for _, to := range tos {
			inEdges[to] = append(inEdges[to], from)
		}
	}

	for _, node := range g.Nodes {
		hub[node] = 1
		authority[node] = 1
	}

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}

	tol := cfg.Tolerance
	if tol <= 0 {
		tol = 1e-9
	}

	for iter := 0; iter < maxIter; iter++ {
		nextAuthority := make(map[string]float64, n)
		for _, node := range g.Nodes {
			var sum float64
			for _, from := range inEdges[node] {
				sum += hub[from]
			}

			nextAuthority[node] = sum
		}

		nextHub := make(map[string]float64, n)
		for _, node := range g.Nodes {
			var sum float64
			for _, to := range g.Edges[node] {
				sum += nextAuthority[to]
			}

			nextHub[node] = sum
		}

		normalize(nextAuthority)
		normalize(nextHub)

		var delta float64
		for _, node := range g.Nodes {
			delta += math.Abs(nextHub[node]-hub[node]) + math.Abs(nextAuthority[node]-authority[node])
		}

		hub, authority = nextHub, nextAuthority

		if delta < tol {
			break
		}
	}

	return hub, authority
}

func normalize(scores map[string]float64) {
	var sumSquares float64
	for _, v := range scores {
		sumSquares += v * v
	}

	if sumSquares == 0 {
		return
	}

	norm := math.Sqrt(sumSquares)
	for k, v := range scores {
		scores[k] = v / norm
	}
}
