package graph

import (
	"context"
)

const cancelCheckInterval = 1024

// CycleOptions bounds cycle enumeration. The number of elementary cycles
// grows exponentially with density, so production callers always set
// MaxCycles.
type CycleOptions struct {
	// MaxCycles stops enumeration once this many cycles were found. 0 means
	// unbounded.
	MaxCycles int
	// MaxLength skips cycles longer than this many nodes. 0 means unbounded.
	MaxLength int
}

// CycleResult holds the enumerated cycles. Truncated is set when MaxCycles
// stopped the search early.
type CycleResult struct {
	Cycles    [][]string
	Truncated bool
}

// FindCycles enumerates elementary directed cycles with Johnson's
// algorithm. Each cycle starts at its lowest-index node. Self-loops are
// cycles of length one. The order of cycles is an artefact of the search
// and carries no meaning. A cancelled ctx returns the cycles found so far
// together with ctx.Err().
func FindCycles(ctx context.Context, g *Directed, opts CycleOptions) (CycleResult, error) {
	if err := ctx.Err(); err != nil {
		return CycleResult{}, err
	}
	n := g.NodeCount()
	search := &cycleSearch{
		ctx:      ctx,
		g:        g,
		opts:     opts,
		blocked:  make([]bool, n),
		blockMap: make([]map[int]struct{}, n),
		inComp:   make([]bool, n),
	}
	for i := range search.blockMap {
		search.blockMap[i] = make(map[int]struct{})
	}

	for s := 0; s < n && !search.done; {
		comp, least := leastCyclicComponent(g, s)
		if comp == nil {
			break
		}
		for i := range search.inComp {
			search.inComp[i] = false
		}
		for _, v := range comp {
			search.inComp[v] = true
			search.blocked[v] = false
			search.blockMap[v] = make(map[int]struct{})
		}
		search.start = least
		search.circuit(least)
		s = least + 1
	}

	result := CycleResult{Cycles: search.cycles, Truncated: search.truncated}
	if search.err != nil {
		return result, search.err
	}
	return result, nil
}

type cycleSearch struct {
	ctx      context.Context
	g        *Directed
	opts     CycleOptions
	blocked  []bool
	blockMap []map[int]struct{}
	inComp   []bool
	stack    []int
	start    int
	steps    int

	cycles    [][]string
	truncated bool
	done      bool
	err       error
}

func (c *cycleSearch) shouldStop() bool {
	if c.done {
		return true
	}
	c.steps++
	if c.steps%cancelCheckInterval == 0 {
		if err := c.ctx.Err(); err != nil {
			c.err = err
			c.done = true
		}
	}
	return c.done
}

func (c *cycleSearch) emit() {
	cycle := make([]string, len(c.stack))
	for i, v := range c.stack {
		cycle[i] = c.g.ID(v)
	}
	c.cycles = append(c.cycles, cycle)
	if c.opts.MaxCycles > 0 && len(c.cycles) >= c.opts.MaxCycles {
		c.truncated = true
		c.done = true
	}
}

// circuit returns true when v lies on at least one cycle through start, or
// when the length bound pruned a branch below v; both keep v unblocked.
func (c *cycleSearch) circuit(v int) bool {
	found := false
	c.stack = append(c.stack, v)
	c.blocked[v] = true

	for _, w := range c.g.Successors(v) {
		if !c.inComp[w] || w < c.start {
			continue
		}
		if c.shouldStop() {
			break
		}
		if w == c.start {
			c.emit()
			found = true
			continue
		}
		if c.blocked[w] {
			continue
		}
		if c.opts.MaxLength > 0 && len(c.stack) >= c.opts.MaxLength {
			found = true
			continue
		}
		if c.circuit(w) {
			found = true
		}
	}

	if found {
		c.unblock(v)
	} else {
		for _, w := range c.g.Successors(v) {
			if c.inComp[w] && w >= c.start {
				c.blockMap[w][v] = struct{}{}
			}
		}
	}

	c.stack = c.stack[:len(c.stack)-1]
	return found
}

func (c *cycleSearch) unblock(u int) {
	c.blocked[u] = false
	for w := range c.blockMap[u] {
		delete(c.blockMap[u], w)
		if c.blocked[w] {
			c.unblock(w)
		}
	}
}

// leastCyclicComponent returns the strongly connected component, within the
// subgraph induced by nodes >= s, that contains the lowest node index and
// can hold a cycle (more than one node, or a self-loop).
func leastCyclicComponent(g *Directed, s int) ([]int, int) {
	var best []int
	bestLeast := -1
	for _, comp := range stronglyConnected(g, s) {
		least := comp[0]
		for _, v := range comp[1:] {
			if v < least {
				least = v
			}
		}
		if len(comp) == 1 && !g.hasEdge(least, least) {
			continue
		}
		if bestLeast < 0 || least < bestLeast {
			best, bestLeast = comp, least
		}
	}
	return best, bestLeast
}

// stronglyConnected runs Tarjan's algorithm on the subgraph induced by
// nodes >= s.
func stronglyConnected(g *Directed, s int) [][]int {
	n := g.NodeCount()
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		stack   []int
		comps   [][]int
		counter int
	)

	var strongConnect func(v int)
	strongConnect = func(v int) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if w < s {
				continue
			}
			if index[w] < 0 {
				strongConnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] && index[w] < low[v] {
				low[v] = index[w]
			}
		}

		if low[v] == index[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			comps = append(comps, comp)
		}
	}

	for v := s; v < n; v++ {
		if index[v] < 0 {
			strongConnect(v)
		}
	}
	return comps
}
