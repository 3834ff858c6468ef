package spell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceBaseCases(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 0},
		{name: "empty to word is insertions", a: "", b: "bb", want: 2},
		{name: "word to empty is deletions", a: "bb", b: "", want: 2},
		{name: "identical", a: "hello", b: "hello", want: 0},
		{name: "case differences are free", a: "Hello", b: "hELLO", want: 0},
		{name: "single substitution", a: "cat", b: "bat", want: 1},
		{name: "single deletion", a: "hellp", b: "help", want: 1},
		{name: "disjoint words", a: "abc", b: "xyz", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b, nil), 1e-12)
		})
	}
}

func TestDistanceNeighborDiscount(t *testing.T) {
	rel := NeighborRelation{'o': {'i'}}

	// Typed 'o' where 'i' was intended costs 0.5.
	assert.InDelta(t, 0.5, Distance("o", "i", rel), 1e-12)
	assert.InDelta(t, 0.5, Distance("hollo", "hillo", rel), 1e-12)

	// The relation is consulted as stored: 'i' has no entry, so the
	// reverse direction pays the full substitution cost.
	assert.InDelta(t, 1, Distance("i", "o", rel), 1e-12)
	assert.InDelta(t, 1, Distance("hillo", "hollo", rel), 1e-12)
}

func TestSimilarityIdentity(t *testing.T) {
	rel := NeighborRelation{'a': {'s', 'q'}, 'o': {'i'}}

	for _, s := range []string{"", "a", "hello", "HeLLo", "über", "don't"} {
		assert.InDelta(t, 1, Similarity(s, s, nil), 1e-12, "word %q with nil relation", s)
		assert.InDelta(t, 1, Similarity(s, s, rel), 1e-12, "word %q with relation", s)
	}
}

func TestSimilarityAsymmetric(t *testing.T) {
	rel := NeighborRelation{'o': {'i'}}

	forward := Similarity("o", "i", rel)
	reverse := Similarity("i", "o", rel)

	assert.InDelta(t, 0.5, forward, 1e-12)
	assert.InDelta(t, 0, reverse, 1e-12)
	assert.NotEqual(t, forward, reverse, "directional lookup must not be symmetrized")
}

func TestSimilarityBounds(t *testing.T) {
	rel := NeighborRelation{'o': {'i'}, 'a': {'s'}}

	pairs := [][2]string{
		{"", ""},
		{"", "a"},
		{"", "bb"},
		{"a", ""},
		{"hello", "hello"},
		{"hellp", "hallo"},
		{"abc", "xyz"},
		{"short", "a much longer string entirely"},
		{"héllo", "hello"},
		{"oooo", "iiii"},
	}

	for _, p := range pairs {
		got := Similarity(p[0], p[1], rel)
		assert.GreaterOrEqual(t, got, 0.0, "similarity(%q, %q)", p[0], p[1])
		assert.LessOrEqual(t, got, 1.0, "similarity(%q, %q)", p[0], p[1])
	}
}

func TestSimilarityEmptyWord(t *testing.T) {
	// Both distances converge to pure insertions; the ratio is taken
	// against the non-empty length.
	assert.InDelta(t, 0, Similarity("", "a", nil), 1e-12)
	assert.InDelta(t, 0, Similarity("", "bb", nil), 1e-12)

	// Empty against empty floors the denominator at 1.
	assert.InDelta(t, 1, Similarity("", "", nil), 1e-12)
}

func TestSimilarityNeighborMonotonic(t *testing.T) {
	// Adding a qualifying neighbor entry for a substituted pair never
	// decreases similarity.
	tests := []struct {
		a, b string
		rel  NeighborRelation
	}{
		{"cat", "bat", NeighborRelation{'c': {'b'}}},
		{"hollo", "hillo", NeighborRelation{'o': {'i'}}},
		{"teh", "the", NeighborRelation{'e': {'h'}, 'h': {'e'}}},
	}

	for _, tt := range tests {
		without := Similarity(tt.a, tt.b, nil)
		with := Similarity(tt.a, tt.b, tt.rel)
		assert.GreaterOrEqual(t, with, without,
			"relation entry for %q -> %q lowered similarity", tt.a, tt.b)
	}
}

func TestSimilarityKnownScores(t *testing.T) {
	// Reference scores for "hellp" against a three-word dictionary.
	require.InDelta(t, 0.8, Similarity("hellp", "hello", nil), 1e-12)
	require.InDelta(t, 0.8, Similarity("hellp", "help", nil), 1e-12)
	require.InDelta(t, 0.6, Similarity("hellp", "hallo", nil), 1e-12)

	// The discounted substitution lifts 0.8 to 0.9.
	rel := NeighborRelation{'o': {'i'}}
	require.InDelta(t, 0.9, Similarity("hollo", "hillo", rel), 1e-12)
	require.InDelta(t, 0.8, Similarity("hollo", "hillo", nil), 1e-12)
}

func TestSimilarityRuneLengths(t *testing.T) {
	// Lengths are counted in runes, not bytes.
	assert.InDelta(t, 0.8, Similarity("héllo", "hèllo", nil), 1e-12)
}
