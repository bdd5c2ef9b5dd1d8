// Package textsim measures how close two strings are.
package textsim

// Distance returns the Levenshtein edit distance between a and b with unit
// cost for insertion, deletion and substitution. Strings are compared rune
// by rune.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Ratio returns (len(a)+len(b)-distance)/(len(a)+len(b)), 1.0 for two
// empty strings. The result is symmetric and equals 1.0 only for identical
// strings.
func Ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 1.0
	}
	return float64(total-Distance(a, b)) / float64(total)
}
