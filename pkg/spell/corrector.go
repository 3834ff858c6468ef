package spell

import (
	"sort"
	"strings"
)

// Default ranking parameters.
const (
	DefaultThreshold      = 0.75
	DefaultMaxSuggestions = 5

	// AutoCorrectThreshold is the similarity the top candidate must
	// strictly exceed before Correct marks it as a confident
	// auto-correction. A top score of exactly 0.9 is not confident.
	// Unlike the filter threshold it is part of the behavioral contract
	// and deliberately not configurable.
	AutoCorrectThreshold = 0.9
)

// Options control dictionary ranking. Zero or negative fields fall back
// to the package defaults, so Options{} behaves like DefaultOptions().
type Options struct {
	// Threshold is the minimum similarity a dictionary entry needs to
	// become a candidate. The comparison is inclusive: an entry scoring
	// exactly Threshold survives.
	Threshold float64

	// MaxSuggestions bounds the candidate list after ranking.
	MaxSuggestions int
}

// DefaultOptions returns the documented defaults: threshold 0.75, at
// most 5 suggestions.
func DefaultOptions() Options {
	return Options{
		Threshold:      DefaultThreshold,
		MaxSuggestions: DefaultMaxSuggestions,
	}
}

func (o Options) normalized() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxSuggestions <= 0 {
		o.MaxSuggestions = DefaultMaxSuggestions
	}
	return o
}

// Candidate is a dictionary entry that survived filtering, with its
// similarity to the input word.
type Candidate struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Result is the outcome of ranking one word against a dictionary.
// Candidates is empty when nothing scored at or above the threshold.
// Correction is set (and Confident true) only when the top candidate
// scored strictly above AutoCorrectThreshold; it always equals
// Candidates[0].Word in that case.
type Result struct {
	Input      string      `json:"input"`
	Correction string      `json:"correction,omitempty"`
	Confident  bool        `json:"confident"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Correct scores word against every entry of dict and classifies the
// outcome. The word is lowercased before scoring (Input echoes the
// lowercased form); dictionary entries are scored as stored. Matching is
// brute force over the whole dictionary, and the function is pure: no
// error conditions exist, an empty word or dictionary simply yields an
// empty candidate list.
//
// Ties keep dictionary order, so given a fixed dict the result is fully
// deterministic.
func Correct(word string, dict []string, rel NeighborRelation, opts Options) Result {
	opts = opts.normalized()
	word = strings.ToLower(word)

	res := Result{Input: word}

	var scored []Candidate
	for _, entry := range dict {
		if score := Similarity(word, entry, rel); score >= opts.Threshold {
			scored = append(scored, Candidate{Word: entry, Score: score})
		}
	}
	if len(scored) == 0 {
		return res
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > opts.MaxSuggestions {
		scored = scored[:opts.MaxSuggestions]
	}
	res.Candidates = scored

	if scored[0].Score > AutoCorrectThreshold {
		res.Correction = scored[0].Word
		res.Confident = true
	}

	return res
}
