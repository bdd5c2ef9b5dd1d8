package graph

import "sort"

// Score is a node id with an algorithm score.
type Score struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Top returns the n highest scores, descending. Equal scores are ordered by
// id ascending.
func Top(g *Directed, scores []float64, n int) []Score {
	ranked := make([]Score, len(scores))
	for i, s := range scores {
		ranked[i] = Score{ID: g.ID(i), Score: s}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
