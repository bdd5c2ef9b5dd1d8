// Package numeric holds the small numeric primitives shared by the
// detectors. Empty inputs yield 0 instead of an error so ratio tests can
// report "nothing to report" on an empty ledger.
package numeric

import (
	"math"
	"sort"
	"strings"

	mstats "github.com/montanaflynn/stats"
)

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := mstats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// PopulationStdDev returns the standard deviation with ddof=0.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sd, err := mstats.StandardDeviationPopulation(values)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd
}

// Quantile returns the q-th quantile (0..1) using linear interpolation
// between closest ranks, rank = q*(n-1). The input need not be sorted.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// LeadingDigit returns the first significant decimal digit of a plain
// decimal string. Sign, leading zeros, spaces and the decimal point are
// skipped; ok is false when the string holds no non-zero digit or is not
// a plain decimal.
func LeadingDigit(s string) (digit int, ok bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "+-")
	for _, r := range s {
		switch {
		case r == '0' || r == '.' || r == ' ':
			continue
		case r >= '1' && r <= '9':
			return int(r - '0'), true
		default:
			return 0, false
		}
	}
	return 0, false
}

// BenfordExpected returns log10(1 + 1/d) for d in 1..9.
func BenfordExpected(d int) float64 {
	return math.Log10(1 + 1/float64(d))
}
