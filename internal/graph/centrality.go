package graph

import "math"

// PageRankOptions configures the power iteration.
type PageRankOptions struct {
	Damping   float64
	Tolerance float64
	MaxIter   int
}

// DefaultPageRankOptions mirrors the usual alpha=0.85, tol=1e-6, 100
// iterations.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{Damping: 0.85, Tolerance: 1e-6, MaxIter: 100}
}

// PageRank runs power iteration over the unweighted graph with a uniform
// teleport vector. Mass held by dangling nodes is spread uniformly. The
// iteration stops when the L1 change drops below n*Tolerance; converged is
// false when MaxIter was hit first, in which case the last iterate is
// returned.
func PageRank(g *Directed, opts PageRankOptions) (scores []float64, converged bool) {
	n := g.NodeCount()
	if n == 0 {
		return nil, true
	}

	uniform := 1.0 / float64(n)
	x := make([]float64, n)
	for i := range x {
		x[i] = uniform
	}
	next := make([]float64, n)

	for iter := 0; iter < opts.MaxIter; iter++ {
		dangling := 0.0
		for i := range next {
			next[i] = 0
		}
		for u := 0; u < n; u++ {
			succ := g.Successors(u)
			if len(succ) == 0 {
				dangling += x[u]
				continue
			}
			share := x[u] / float64(len(succ))
			for _, v := range succ {
				next[v] += share
			}
		}

		diff := 0.0
		for i := range next {
			next[i] = opts.Damping*(next[i]+dangling*uniform) + (1-opts.Damping)*uniform
			diff += math.Abs(next[i] - x[i])
		}
		x, next = next, x

		if diff < float64(n)*opts.Tolerance {
			return x, true
		}
	}
	return x, false
}

// Betweenness computes normalised betweenness centrality with Brandes'
// algorithm on the unweighted directed graph. For n > 2 scores are scaled
// by 1/((n-1)(n-2)).
func Betweenness(g *Directed) []float64 {
	n := g.NodeCount()
	cb := make([]float64, n)
	if n == 0 {
		return cb
	}

	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)
	order := make([]int, 0, n)
	queue := make([]int, 0, n)

	for s := 0; s < n; s++ {
		order = order[:0]
		queue = queue[:0]
		for i := 0; i < n; i++ {
			sigma[i] = 0
			dist[i] = -1
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		sigma[s] = 1
		dist[s] = 0
		queue = append(queue, s)

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			order = append(order, v)
			for _, w := range g.Successors(v) {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	if n > 2 {
		scale := 1.0 / float64((n-1)*(n-2))
		for i := range cb {
			cb[i] *= scale
		}
	}
	return cb
}
