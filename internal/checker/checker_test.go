package checker

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyslip-labs/keyslip/pkg/spell"
)

type stubCorrector struct {
	dict []string
	rel  spell.NeighborRelation
}

func (s *stubCorrector) Known(word string) bool {
	return slices.Contains(s.dict, word)
}

func (s *stubCorrector) Correct(word string) spell.Result {
	return spell.Correct(word, s.dict, s.rel, spell.DefaultOptions())
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "plain words",
			input: "Hello world",
			want: []Token{
				{Word: "hello", Line: 1, Col: 1},
				{Word: "world", Line: 1, Col: 7},
			},
		},
		{
			name:  "internal apostrophe kept",
			input: "don't stop",
			want: []Token{
				{Word: "don't", Line: 1, Col: 1},
				{Word: "stop", Line: 1, Col: 7},
			},
		},
		{
			name:  "trailing apostrophes trimmed",
			input: "rock''",
			want:  []Token{{Word: "rock", Line: 1, Col: 1}},
		},
		{
			name:  "leading apostrophe not part of word",
			input: "'tis the",
			want: []Token{
				{Word: "tis", Line: 1, Col: 2},
				{Word: "the", Line: 1, Col: 6},
			},
		},
		{
			name:  "digits split words",
			input: "x1y",
			want: []Token{
				{Word: "x", Line: 1, Col: 1},
				{Word: "y", Line: 1, Col: 3},
			},
		},
		{
			name:  "non-ascii letters",
			input: "héllo wörld",
			want: []Token{
				{Word: "héllo", Line: 1, Col: 1},
				{Word: "wörld", Line: 1, Col: 7},
			},
		},
		{
			name:  "punctuation only",
			input: "...!!!",
			want:  nil,
		},
		{
			name:  "line numbering skips blanks",
			input: "a\n\nb",
			want: []Token{
				{Word: "a", Line: 1, Col: 1},
				{Word: "b", Line: 3, Col: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, tokens)
		})
	}
}

func TestCheckFindsUnknownWords(t *testing.T) {
	c := New(&stubCorrector{dict: []string{"hello", "world"}}, 1)

	report, err := c.Check(context.Background(), strings.NewReader("helo world\nwrld hello"), "input.txt")
	require.NoError(t, err)

	assert.Equal(t, "input.txt", report.Source)
	assert.Equal(t, 4, report.WordsScanned)
	require.Len(t, report.Findings, 2)

	first := report.Findings[0]
	assert.Equal(t, "helo", first.Word)
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, 1, first.Col)
	require.NotEmpty(t, first.Result.Candidates)
	assert.Equal(t, "hello", first.Result.Candidates[0].Word)

	second := report.Findings[1]
	assert.Equal(t, "wrld", second.Word)
	assert.Equal(t, 2, second.Line)
	assert.Equal(t, "world", second.Result.Candidates[0].Word)

	assert.Zero(t, report.Confident())
}

func TestCheckCountsConfident(t *testing.T) {
	c := New(&stubCorrector{
		dict: []string{"abcdefghij"},
		rel:  spell.NeighborRelation{'x': {'j'}},
	}, 2)

	report, err := c.Check(context.Background(), strings.NewReader("abcdefghix"), "stdin")
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	assert.True(t, report.Findings[0].Result.Confident)
	assert.Equal(t, 1, report.Confident())
}

func TestCheckKeepsDocumentOrder(t *testing.T) {
	var words []string
	for i := range 26 {
		words = append(words, "zz"+string(rune('a'+i)))
	}
	text := strings.Join(words[:13], " ") + "\n" + strings.Join(words[13:], " ")

	c := New(&stubCorrector{}, 8)
	report, err := c.Check(context.Background(), strings.NewReader(text), "stdin")
	require.NoError(t, err)

	require.Len(t, report.Findings, 26)
	for i, f := range report.Findings {
		assert.Equal(t, words[i], f.Word, "finding %d out of order", i)
	}
}

func TestCheckCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(&stubCorrector{}, 2)
	_, err := c.Check(ctx, strings.NewReader("somethng"), "stdin")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckEmptyInput(t *testing.T) {
	c := New(&stubCorrector{dict: []string{"hello"}}, 1)

	report, err := c.Check(context.Background(), strings.NewReader(""), "stdin")
	require.NoError(t, err)
	assert.Zero(t, report.WordsScanned)
	assert.Empty(t, report.Findings)
}

func TestCheckAllKnown(t *testing.T) {
	c := New(&stubCorrector{dict: []string{"hello", "world"}}, 1)

	report, err := c.Check(context.Background(), strings.NewReader("hello world"), "stdin")
	require.NoError(t, err)
	assert.Equal(t, 2, report.WordsScanned)
	assert.Empty(t, report.Findings)
}

func TestReportConfidentCount(t *testing.T) {
	report := &Report{
		Findings: []Finding{
			{Word: "a", Result: spell.Result{Confident: true}},
			{Word: "b", Result: spell.Result{}},
			{Word: "c", Result: spell.Result{Confident: true}},
		},
	}
	assert.Equal(t, 2, report.Confident())
}

func ExampleChecker_Check() {
	c := New(&stubCorrector{dict: []string{"hello", "world"}}, 1)
	report, _ := c.Check(context.Background(), strings.NewReader("helo world"), "stdin")
	for _, f := range report.Findings {
		fmt.Printf("%d:%d %s -> %s\n", f.Line, f.Col, f.Word, f.Result.Candidates[0].Word)
	}
	// Output: 1:1 helo -> hello
}
