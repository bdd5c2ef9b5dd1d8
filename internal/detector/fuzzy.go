package detector

import (
	"context"
	"sort"
	"strings"

	"github.com/carson-networks/ledger-forensics/internal/ledger"
	"github.com/carson-networks/ledger-forensics/internal/textsim"
)

const (
	similarityFloor = 0.85
	fuzzyTopN       = 20

	fuzzyExplanation = "Pairs of distinct vendor names whose Levenshtein similarity is at least 0.85. Near-identical names can hide ghost vendors or split billing."
	fuzzyDescribe    = "Near-duplicate entity names by Levenshtein similarity."
)

// FuzzyFinding is the result of the fuzzy name detector.
type FuzzyFinding struct {
	Detector        string     `json:"detector"`
	UniqueNames     int        `json:"unique_names"`
	SuspiciousPairs []NamePair `json:"suspicious_pairs"`
	Explanation     string     `json:"explanation"`
}

func (f *FuzzyFinding) DetectorName() string { return f.Detector }

// NamePair is one flagged pair of names, in first-appearance order.
type NamePair struct {
	Name1      string  `json:"name_1"`
	Name2      string  `json:"name_2"`
	Similarity float64 `json:"similarity"`
}

// FuzzyNameDetector compares every pair of unique names. Cost grows with
// the square of the unique name count times the square of name length.
type FuzzyNameDetector struct{}

func NewFuzzyNameDetector() *FuzzyNameDetector {
	return &FuzzyNameDetector{}
}

func (d *FuzzyNameDetector) Name() string {
	return NameFuzzyNames
}

func (d *FuzzyNameDetector) Description() string {
	return fuzzyDescribe
}

func (d *FuzzyNameDetector) Run(ctx context.Context, view *ledger.View) (Finding, error) {
	names, err := view.Column(ledger.RoleName)
	if err != nil {
		return nil, err
	}

	unique := uniqueNames(names)
	pairs, err := SimilarNames(ctx, unique)
	if err != nil {
		return nil, err
	}

	return &FuzzyFinding{
		Detector:        d.Name(),
		UniqueNames:     len(unique),
		SuspiciousPairs: pairs,
		Explanation:     fuzzyExplanation,
	}, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0)
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		unique = append(unique, n)
	}
	return unique
}

// SimilarNames flags pairs with similarity in [0.85, 1.0) on the lower-cased
// names. ctx is checked once per outer row.
func SimilarNames(ctx context.Context, names []string) ([]NamePair, error) {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	pairs := make([]NamePair, 0)
	for i := range lowered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(lowered); j++ {
			sim := textsim.Ratio(lowered[i], lowered[j])
			if sim >= similarityFloor && sim < 1.0 {
				pairs = append(pairs, NamePair{
					Name1:      names[i],
					Name2:      names[j],
					Similarity: sim,
				})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].Name1 != pairs[j].Name1 {
			return pairs[i].Name1 < pairs[j].Name1
		}
		return pairs[i].Name2 < pairs[j].Name2
	})
	if len(pairs) > fuzzyTopN {
		pairs = pairs[:fuzzyTopN]
	}
	return pairs, nil
}
