// Package graph implements the directed transaction graph and the
// algorithms run over it: elementary cycles (Johnson), PageRank, Brandes
// betweenness and connected components. Nodes are indexed in order of
// first appearance and every algorithm iterates in that order, so results
// are reproducible for a given ledger.
package graph

import (
	"github.com/shopspring/decimal"
)

// Edge is a collapsed sender->receiver relation. Repeated transfers between
// the same pair add to Weight and Count instead of creating new edges.
type Edge struct {
	From   string
	To     string
	Weight decimal.Decimal
	Count  int
}

type edgeKey struct {
	from, to int
}

// Directed is a simple directed graph keyed by entity id.
type Directed struct {
	ids   []string
	index map[string]int
	out   [][]int
	edges map[edgeKey]*Edge
}

// NewDirected returns an empty graph.
func NewDirected() *Directed {
	return &Directed{
		index: make(map[string]int),
		edges: make(map[edgeKey]*Edge),
	}
}

// AddNode registers id and returns its index. Existing ids keep theirs.
func (g *Directed) AddNode(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = i
	g.out = append(g.out, nil)
	return i
}

// AddEdge records a transfer from -> to. A repeated pair sums its weight.
func (g *Directed) AddEdge(from, to string, weight decimal.Decimal) {
	u := g.AddNode(from)
	v := g.AddNode(to)
	key := edgeKey{u, v}
	if e, ok := g.edges[key]; ok {
		e.Weight = e.Weight.Add(weight)
		e.Count++
		return
	}
	g.edges[key] = &Edge{From: from, To: to, Weight: weight, Count: 1}
	g.out[u] = append(g.out[u], v)
}

// NodeCount returns the number of nodes.
func (g *Directed) NodeCount() int {
	return len(g.ids)
}

// EdgeCount returns the number of distinct edges.
func (g *Directed) EdgeCount() int {
	return len(g.edges)
}

// ID returns the entity id of node i.
func (g *Directed) ID(i int) string {
	return g.ids[i]
}

// Index returns the node index of id.
func (g *Directed) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Successors returns the out-neighbours of node i in insertion order.
func (g *Directed) Successors(i int) []int {
	return g.out[i]
}

// Edge returns the collapsed edge from -> to.
func (g *Directed) Edge(from, to string) (Edge, bool) {
	u, ok := g.index[from]
	if !ok {
		return Edge{}, false
	}
	v, ok := g.index[to]
	if !ok {
		return Edge{}, false
	}
	e, ok := g.edges[edgeKey{u, v}]
	if !ok {
		return Edge{}, false
	}
	return *e, true
}

func (g *Directed) hasEdge(u, v int) bool {
	_, ok := g.edges[edgeKey{u, v}]
	return ok
}
