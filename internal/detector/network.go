package detector

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-forensics/internal/graph"
	"github.com/carson-networks/ledger-forensics/internal/ledger"
)

const (
	DefaultMaxCycles = 10000

	cycleSampleSize   = 10
	centralityTopN    = 5
	largeClusterSize  = 3
	clusterSampleSize = 5

	cycleExplanation      = "Elementary cycles in the sender/receiver graph point to round-tripping or layering of funds. Sample order is an artefact of the search."
	centralityExplanation = "PageRank finds the most influential entities; betweenness finds the brokers that sit on the most shortest paths. Ties are ordered by entity id."
	communityExplanation  = "Connected groups of entities that transact with each other. Groups with more than 3 members are reported as large clusters."
	networkDescribe       = "Graph analysis of sender/receiver flows: circular trading, key actors and hidden communities."
)

// NetworkFinding is the result of the network detector.
type NetworkFinding struct {
	Detector    string           `json:"detector"`
	Nodes       int              `json:"nodes"`
	Edges       int              `json:"edges"`
	Cycles      CycleResult      `json:"cycles"`
	Centrality  CentralityResult `json:"centrality"`
	Communities CommunityResult  `json:"communities"`
}

func (f *NetworkFinding) DetectorName() string { return f.Detector }

// CycleResult reports the elementary cycles found.
type CycleResult struct {
	Count       int        `json:"cycle_count"`
	Truncated   bool       `json:"truncated"`
	Sample      [][]string `json:"sample_cycles"`
	Explanation string     `json:"explanation"`
}

// CentralityResult holds the top PageRank and betweenness scores.
type CentralityResult struct {
	TopPageRank       []graph.Score `json:"top_pagerank"`
	TopBetweenness    []graph.Score `json:"top_betweenness"`
	PageRankConverged bool          `json:"pagerank_converged"`
	Explanation       string        `json:"explanation"`
}

// CommunityResult reports weakly connected components.
type CommunityResult struct {
	TotalClusters     int        `json:"total_clusters"`
	LargeClusterCount int        `json:"large_cluster_count"`
	LargeClusters     [][]string `json:"sample_large_clusters"`
	Explanation       string     `json:"explanation"`
}

// NetworkDetector builds the transaction graph and analyses it.
type NetworkDetector struct {
	maxCycles      int
	maxCycleLength int
}

func NewNetworkDetector() *NetworkDetector {
	return &NetworkDetector{
		maxCycles: DefaultMaxCycles,
	}
}

func (d *NetworkDetector) Name() string {
	return NameNetwork
}

func (d *NetworkDetector) Description() string {
	return networkDescribe
}

// SetMaxCycles bounds cycle enumeration; 0 removes the bound.
func (d *NetworkDetector) SetMaxCycles(n int) {
	d.maxCycles = n
}

// SetMaxCycleLength skips cycles longer than n nodes; 0 removes the bound.
func (d *NetworkDetector) SetMaxCycleLength(n int) {
	d.maxCycleLength = n
}

func (d *NetworkDetector) Run(ctx context.Context, view *ledger.View) (Finding, error) {
	g, err := BuildGraph(view)
	if err != nil {
		return nil, err
	}

	cycles, err := graph.FindCycles(ctx, g, graph.CycleOptions{
		MaxCycles: d.maxCycles,
		MaxLength: d.maxCycleLength,
	})
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	centrality := analyseCentrality(g)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	communities := detectCommunities(g)

	sample := cycles.Cycles
	if len(sample) > cycleSampleSize {
		sample = sample[:cycleSampleSize]
	}
	if sample == nil {
		sample = [][]string{}
	}

	return &NetworkFinding{
		Detector: d.Name(),
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
		Cycles: CycleResult{
			Count:       len(cycles.Cycles),
			Truncated:   cycles.Truncated,
			Sample:      sample,
			Explanation: cycleExplanation,
		},
		Centrality:  centrality,
		Communities: communities,
	}, nil
}

// BuildGraph turns the sender/receiver columns into a directed graph.
// Repeated sender->receiver pairs collapse into one edge whose weight is
// the sum of their amounts. Without an amount column every weight is 0.
func BuildGraph(view *ledger.View) (*graph.Directed, error) {
	if err := view.Require(ledger.RoleSender, ledger.RoleReceiver); err != nil {
		return nil, err
	}
	senders, _ := view.Column(ledger.RoleSender)
	receivers, _ := view.Column(ledger.RoleReceiver)

	var amounts []decimal.Decimal
	if view.Has(ledger.RoleAmount) {
		var err error
		if amounts, err = view.DecimalAmounts(); err != nil {
			return nil, err
		}
	}

	mapping := view.Mapping()
	g := graph.NewDirected()
	for i := range senders {
		from := strings.TrimSpace(senders[i])
		to := strings.TrimSpace(receivers[i])
		if from == "" {
			return nil, ledger.GraphError(ledger.RoleSender, mapping[ledger.RoleSender], i, "empty sender")
		}
		if to == "" {
			return nil, ledger.GraphError(ledger.RoleReceiver, mapping[ledger.RoleReceiver], i, "empty receiver")
		}
		weight := decimal.Zero
		if amounts != nil {
			weight = amounts[i]
		}
		g.AddEdge(from, to, weight)
	}
	return g, nil
}

func analyseCentrality(g *graph.Directed) CentralityResult {
	pagerank, converged := graph.PageRank(g, graph.DefaultPageRankOptions())
	betweenness := graph.Betweenness(g)

	return CentralityResult{
		TopPageRank:       graph.Top(g, pagerank, centralityTopN),
		TopBetweenness:    graph.Top(g, betweenness, centralityTopN),
		PageRankConverged: converged,
		Explanation:       centralityExplanation,
	}
}

func detectCommunities(g *graph.Directed) CommunityResult {
	comps := graph.Components(g)
	large := make([][]string, 0)
	count := 0
	for _, c := range comps {
		if len(c) > largeClusterSize {
			count++
			if len(large) < clusterSampleSize {
				large = append(large, c)
			}
		}
	}
	return CommunityResult{
		TotalClusters:     len(comps),
		LargeClusterCount: count,
		LargeClusters:     large,
		Explanation:       communityExplanation,
	}
}
