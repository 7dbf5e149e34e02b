package repomap

// Config tunes Compute. DampingFactor, MaxIterations and Tolerance follow
// the usual PageRank power-iteration knobs; Personalization lets a Context
// Provider bias the random walk toward specific nodes (e.g. recently
// edited files, the files open in an editor, a user-supplied focus set)
// instead of the uniform teleport vector. ComputeHITS additionally runs
// hub/authority scoring over the same graph.
type Config struct {
	DampingFactor   float64
	MaxIterations   int
	Tolerance       float64
	Personalization map[string]float64
	ComputeHITS     bool
}

// DefaultConfig returns the conventional PageRank damping factor (0.85), a
// generous iteration cap, and a tight convergence tolerance, with no
// personalization (falls back to a uniform teleport vector) and HITS
// disabled.
func DefaultConfig() Config {
	return Config{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-9,
	}
}

// Result holds every score Compute produced. Hub and Authority are only
// populated when Config.ComputeHITS is set.
type Result struct {
	PageRank  map[string]float64
	Hub       map[string]float64
	Authority map[string]float64
}

func normalizedPersonalization(g *Graph, cfg Config) map[string]float64 {
	if len(cfg.Personalization) == 0 {
		if len(g.Nodes) == 0 {
			return map[string]float64{}
		}

		uniform := 1.0 / float64(len(g.Nodes))
		p := make(map[string]float64, len(g.Nodes))

		for _, n := range g.Nodes {
			p[n] = uniform
		}

		return p
	}

	var total float64
	for _, w := range cfg.Personalization {
		total += w
	}

	p := make(map[string]float64, len(g.Nodes))

	if total <= 0 {
		return normalizedPersonalization(g, Config{})
	}

	for _, n := range g.Nodes {
		p[n] = cfg.Personalization[n] / total
	}

	return p
}

// pageRank runs personalized PageRank to (near-)convergence. Mass owned by
// dangling nodes (no outgoing edges) is redistributed each iteration
// according to the personalization vector, rather than vanishing, so total
// rank stays conserved.
func pageRank(g *Graph, cfg Config) map[string]float64 {
	n := len(g.Nodes)
	if n == 0 {
		return map[string]float64{}
	}

	personalization := normalizedPersonalization(g, cfg)

	rank := make(map[string]float64, n)
	for node, p := range personalization {
		rank[node] = p
	}

	d := cfg.DampingFactor
	if d <= 0 {
		d = 0.85
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
		next := make(map[string]float64, n)
		for _, node := range g.Nodes {
			next[node] = (1 - d) * personalization[node]
		}

		var danglingMass float64

		for _, node := range g.Nodes {
			outEdges := g.Edges[node]
			if len(outEdges) == 0 {
				danglingMass += rank[node]

				continue
			}

			share := rank[node] / float64(len(outEdges))
			for _, to := range outEdges {
				next[to] += d * share
			}
		}

		if danglingMass > 0 {
			for _, node := range g.Nodes {
				next[node] += d * danglingMass * personalization[node]
			}
		}

		var delta float64
		for _, node := range g.Nodes {
			diff := next[node] - rank[node]
			if diff < 0 {
				diff = -diff
			}

			delta += diff
		}

		rank = next

		if delta < tol {
			break
		}
	}

	return rank
}
