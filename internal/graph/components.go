package graph

import "sort"

// UnionFind is a disjoint-set forest with path halving and union by rank.
type UnionFind struct {
	parent []int
	rank   []int
}

// NewUnionFind returns n singleton sets.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// Find returns the representative of x.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets holding a and b.
func (uf *UnionFind) Union(a, b int) {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
}

// Components returns the weakly connected components of g. Components are
// ordered by the first appearance of any member; members are sorted by id.
func Components(g *Directed) [][]string {
	n := g.NodeCount()
	uf := NewUnionFind(n)
	for u := 0; u < n; u++ {
		for _, v := range g.Successors(u) {
			uf.Union(u, v)
		}
	}

	slot := make(map[int]int)
	var comps [][]string
	for v := 0; v < n; v++ {
		root := uf.Find(v)
		i, ok := slot[root]
		if !ok {
			i = len(comps)
			slot[root] = i
			comps = append(comps, nil)
		}
		comps[i] = append(comps[i], g.ID(v))
	}
	for _, c := range comps {
		sort.Strings(c)
	}
	return comps
}
