package spell

import "unicode"

// Substitution costs for the weighted edit distance. Insertions and
// deletions always cost 1. Every cost is a multiple of 0.5, so distances
// and similarity ratios compare exactly in float64 arithmetic.
const (
	costMatch    = 0.0
	costNeighbor = 0.5
	costOther    = 1.0
)

// Distance returns the weighted edit distance between a and b.
//
// It fills the classic (|a|+1) x (|b|+1) dynamic-programming table where
// table[i][j] is the minimum cost of transforming the first i runes of a
// into the first j runes of b. Substituting a rune of a with a rune of b
// costs 0 when they match case-insensitively, 0.5 when a's rune lists b's
// rune in rel, and 1 otherwise; the neighbor lookup is directional, keyed
// by the rune from a.
func Distance(a, b string, rel NeighborRelation) float64 {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)

	table := make([][]float64, la+1)
	for i := range table {
		table[i] = make([]float64, lb+1)
		table[i][0] = float64(i)
	}
	for j := 0; j <= lb; j++ {
		table[0][j] = float64(j)
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			table[i][j] = min(
				table[i-1][j]+1, // deletion
				table[i][j-1]+1, // insertion
				table[i-1][j-1]+substitutionCost(ra[i-1], rb[j-1], rel), // substitution
			)
		}
	}

	return table[la][lb]
}

// Similarity returns 1 - Distance(a, b, rel) normalized by the longer
// rune length. The denominator is floored at 1 so the empty/empty pair is
// well-defined and yields 1. Results are always within [0, 1]: the
// weighted distance can never exceed the longer length.
func Similarity(a, b string, rel NeighborRelation) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)), 1)
	return 1 - Distance(a, b, rel)/float64(maxLen)
}

// substitutionCost returns the weighted cost of typing a where b was
// intended.
func substitutionCost(a, b rune, rel NeighborRelation) float64 {
	switch {
	case unicode.ToLower(a) == unicode.ToLower(b):
		return costMatch
	case rel.Near(a, b):
		return costNeighbor
	default:
		return costOther
	}
}
