package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(edges ...[2]string) *Directed {
	g := NewDirected()
	for _, e := range edges {
		g.AddEdge(e[0], e[1], decimal.NewFromInt(1))
	}
	return g
}

func clique(g *Directed, prefix string, size int) {
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if i != j {
				g.AddEdge(fmt.Sprintf("%s%d", prefix, i), fmt.Sprintf("%s%d", prefix, j), decimal.NewFromInt(1))
			}
		}
	}
}

// -- construction tests --

func TestAddEdge_DuplicatePairSumsWeight(t *testing.T) {
	g := NewDirected()
	g.AddEdge("A", "B", decimal.NewFromInt(100))
	g.AddEdge("A", "B", decimal.RequireFromString("50.5"))
	g.AddEdge("B", "A", decimal.NewFromInt(1))

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	e, ok := g.Edge("A", "B")
	require.True(t, ok)
	assert.True(t, e.Weight.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, []int{1}, g.Successors(0))

	_, ok = g.Edge("A", "C")
	assert.False(t, ok)
}

// -- cycle tests --

func TestFindCycles_AcyclicGraph(t *testing.T) {
	g := build([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"A", "C"})

	res, err := FindCycles(context.Background(), g, CycleOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Cycles)
	assert.False(t, res.Truncated)
}

func TestFindCycles_SingleTriangle(t *testing.T) {
	g := build([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})

	res, err := FindCycles(context.Background(), g, CycleOptions{})
	require.NoError(t, err)
	require.Len(t, res.Cycles, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, res.Cycles[0])
}

func TestFindCycles_SelfLoopAndTwoCycles(t *testing.T) {
	g := build(
		[2]string{"A", "A"},
		[2]string{"A", "B"}, [2]string{"B", "A"},
		[2]string{"B", "C"}, [2]string{"C", "B"},
	)

	res, err := FindCycles(context.Background(), g, CycleOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]string{{"A"}, {"A", "B"}, {"B", "C"}}, res.Cycles)
}

func TestFindCycles_CompleteDigraphCount(t *testing.T) {
	g := NewDirected()
	clique(g, "n", 4)

	res, err := FindCycles(context.Background(), g, CycleOptions{})
	require.NoError(t, err)
	// C(4,2)*1! + C(4,3)*2! + C(4,4)*3!
	assert.Len(t, res.Cycles, 20)

	seen := make(map[string]bool)
	for _, c := range res.Cycles {
		key := fmt.Sprint(c)
		assert.False(t, seen[key], "duplicate cycle %v", c)
		seen[key] = true
	}
}

func TestFindCycles_MaxCyclesTruncates(t *testing.T) {
	g := NewDirected()
	clique(g, "n", 4)

	res, err := FindCycles(context.Background(), g, CycleOptions{MaxCycles: 5})
	require.NoError(t, err)
	assert.Len(t, res.Cycles, 5)
	assert.True(t, res.Truncated)
}

func TestFindCycles_MaxLength(t *testing.T) {
	g := NewDirected()
	clique(g, "n", 4)

	res, err := FindCycles(context.Background(), g, CycleOptions{MaxLength: 2})
	require.NoError(t, err)
	assert.Len(t, res.Cycles, 6)
	for _, c := range res.Cycles {
		assert.Len(t, c, 2)
	}
}

func TestFindCycles_CancelledContext(t *testing.T) {
	g := NewDirected()
	clique(g, "n", 9)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindCycles(ctx, g, CycleOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

// -- centrality tests --

func TestPageRank_SymmetricCycleIsUniform(t *testing.T) {
	g := build([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})

	scores, converged := PageRank(g, DefaultPageRankOptions())
	assert.True(t, converged)
	for _, s := range scores {
		assert.InDelta(t, 1.0/3, s, 1e-9)
	}
}

func TestPageRank_SinkCollectsMass(t *testing.T) {
	g := build([2]string{"A", "C"}, [2]string{"B", "C"}, [2]string{"D", "C"})

	scores, converged := PageRank(g, DefaultPageRankOptions())
	assert.True(t, converged)

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	top := Top(g, scores, 5)
	assert.Equal(t, "C", top[0].ID)
	// A, B, D tie and fall back to id order.
	assert.Equal(t, []string{"A", "B", "D"}, []string{top[1].ID, top[2].ID, top[3].ID})
}

func TestBetweenness_PathMiddleNode(t *testing.T) {
	g := build([2]string{"A", "B"}, [2]string{"B", "C"})

	scores := Betweenness(g)
	// One shortest path (A->C) of the (n-1)(n-2)=2 ordered pairs passes B.
	assert.InDelta(t, 0.5, scores[1], 1e-12)
	assert.Equal(t, 0.0, scores[0])
	assert.Equal(t, 0.0, scores[2])
}

func TestBetweenness_StarHub(t *testing.T) {
	g := build(
		[2]string{"L1", "H"}, [2]string{"H", "L1"},
		[2]string{"L2", "H"}, [2]string{"H", "L2"},
		[2]string{"L3", "H"}, [2]string{"H", "L3"},
	)

	scores := Betweenness(g)
	top := Top(g, scores, 1)
	assert.Equal(t, "H", top[0].ID)
	assert.InDelta(t, 1.0, top[0].Score, 1e-12)
}

func TestTop_TieBreakAndLimit(t *testing.T) {
	g := build([2]string{"b", "a"}, [2]string{"c", "d"})

	top := Top(g, []float64{0.5, 0.5, 0.9, 0.1}, 3)
	assert.Equal(t, []Score{{"c", 0.9}, {"a", 0.5}, {"b", 0.5}}, top)
}

// -- component tests --

func TestComponents_TwoDisjointCliques(t *testing.T) {
	g := NewDirected()
	clique(g, "x", 5)
	clique(g, "y", 5)

	comps := Components(g)
	require.Len(t, comps, 2)
	assert.Equal(t, []string{"x0", "x1", "x2", "x3", "x4"}, comps[0])
	assert.Equal(t, []string{"y0", "y1", "y2", "y3", "y4"}, comps[1])
}

func TestComponents_DirectionIgnored(t *testing.T) {
	g := build([2]string{"A", "B"}, [2]string{"C", "B"}, [2]string{"D", "E"})

	comps := Components(g)
	assert.Equal(t, [][]string{{"A", "B", "C"}, {"D", "E"}}, comps)
}

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(4)
	uf.Union(0, 1)
	uf.Union(2, 3)
	assert.Equal(t, uf.Find(0), uf.Find(1))
	assert.NotEqual(t, uf.Find(1), uf.Find(2))
	uf.Union(1, 3)
	assert.Equal(t, uf.Find(0), uf.Find(2))
}
