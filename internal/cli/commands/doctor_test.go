package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyslip-labs/keyslip/internal/cli/config"
	"github.com/keyslip-labs/keyslip/internal/keymap"
	"github.com/keyslip-labs/keyslip/internal/testutil"
	"github.com/keyslip-labs/keyslip/pkg/spell"
)

func TestCalculateHealthScore(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
	}{
		{
			name:   "no checks returns 100",
			checks: nil,
			want:   100,
		},
		{
			name: "all passing returns 100",
			checks: []HealthCheck{
				{Name: "threshold", Status: "pass"},
				{Name: "word list readable", Status: "pass"},
			},
			want: 100,
		},
		{
			name: "warnings reduce score",
			checks: []HealthCheck{
				{Name: "config file", Status: "warn"},
			},
			want: 90,
		},
		{
			name: "errors reduce score more",
			checks: []HealthCheck{
				{Name: "word list configured", Status: "error"},
			},
			want: 80,
		},
		{
			name: "mixed statuses accumulate",
			checks: []HealthCheck{
				{Name: "config file", Status: "warn"},
				{Name: "word list configured", Status: "error"},
				{Name: "threshold", Status: "pass"},
			},
			want: 70,
		},
		{
			name: "score does not go below 0",
			checks: []HealthCheck{
				{Name: "a", Status: "error"},
				{Name: "b", Status: "error"},
				{Name: "c", Status: "error"},
				{Name: "d", Status: "error"},
				{Name: "e", Status: "error"},
				{Name: "f", Status: "error"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHealthScore(tt.checks))
		})
	}
}

func TestGetRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		expected bool // whether a recommendation is returned
	}{
		{"config file", true},
		{"threshold", true},
		{"max suggestions", true},
		{"word list configured", true},
		{"word list readable", true},
		{"word list hygiene", true},
		{"keymap file", true},
		{"layout", true},
		{"alphabet coverage", true},
		{"data directory", true},
		{"state database", true},
		{"personal dictionary", true},
		{"unknown check", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getRecommendation(tt.name)
			if tt.expected {
				assert.NotEmpty(t, rec, "expected recommendation for %s", tt.name)
			} else {
				assert.Empty(t, rec, "expected no recommendation for %s", tt.name)
			}
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	checks := []HealthCheck{
		{Name: "config file", Status: "warn"},
		{Name: "word list configured", Status: "error"},
		{Name: "threshold", Status: "pass"},
	}

	recommendations := generateRecommendations(checks)

	assert.Len(t, recommendations, 2)
	assert.Contains(t, recommendations[0], "keyslip init")
	assert.Contains(t, recommendations[1], "wordlist")
}

func TestGenerateRecommendations_Dedupe(t *testing.T) {
	// "word list configured" and "word list readable" share a
	// recommendation; it should appear once.
	checks := []HealthCheck{
		{Name: "word list configured", Status: "error"},
		{Name: "word list readable", Status: "error"},
	}

	recommendations := generateRecommendations(checks)
	assert.Len(t, recommendations, 1)
}

func TestGenerateRecommendations_LimitTo5(t *testing.T) {
	names := []string{
		"config file", "threshold", "max suggestions", "word list configured",
		"word list hygiene", "keymap file", "alphabet coverage", "data directory",
	}
	checks := make([]HealthCheck, len(names))
	for i, name := range names {
		checks[i] = HealthCheck{Name: name, Status: "warn"}
	}

	recommendations := generateRecommendations(checks)
	assert.LessOrEqual(t, len(recommendations), 5)
}

func TestWordlistHygiene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	content := "hello\nWorld\nhello\n\nHELLO\nslip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	dups, nonLower := wordlistHygiene(path)
	assert.Equal(t, 2, dups, "hello appears three times")
	assert.Equal(t, 2, nonLower, "World and HELLO are not lowercase")
}

func TestWordlistHygieneClean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\nbeta\ngamma\n"), 0644))

	dups, nonLower := wordlistHygiene(path)
	assert.Zero(t, dups)
	assert.Zero(t, nonLower)
}

func TestAverageNeighbors(t *testing.T) {
	rel := spell.NeighborRelation{
		'a': {'b', 'c'},
		'b': {'a'},
		'c': {'a'},
	}
	assert.InDelta(t, 4.0/3.0, averageNeighbors(rel), 0.001)
	assert.Zero(t, averageNeighbors(spell.NeighborRelation{}))
}

func TestAsymmetricPairs(t *testing.T) {
	rel := spell.NeighborRelation{
		'a': {'b', 'c'},
		'b': {'a'},
	}
	// a->c has no reverse edge; c has no entry at all.
	assert.Equal(t, 1, asymmetricPairs(rel))
}

func TestAsymmetricPairs_BuiltinsAreSymmetric(t *testing.T) {
	for _, layout := range keymap.Layouts() {
		t.Run(layout, func(t *testing.T) {
			rel, err := keymap.Builtin(layout)
			require.NoError(t, err)
			assert.Zero(t, asymmetricPairs(rel), "built-in %s should be symmetric", layout)
		})
	}
}

func TestUncoveredLetters(t *testing.T) {
	rel := spell.NeighborRelation{
		'a': {'b'},
		'b': {'a'},
	}
	missing := uncoveredLetters([]string{"ab", "abc", "cd"}, rel)
	assert.Equal(t, []string{"c", "d"}, missing)

	assert.Empty(t, uncoveredLetters([]string{"ab", "ba"}, rel))
}

func TestProbeDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	assert.NoError(t, probeDataDir(dir), "should create and probe a fresh directory")

	assert.Error(t, probeDataDir(""), "empty dir should be rejected")
}

func TestBuildDoctorOutput(t *testing.T) {
	dir := t.TempDir()
	wordlist := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(wordlist, []byte("hello\nworld\nslip\n"), 0644))

	cfg := &config.Config{
		Wordlist:       wordlist,
		Layout:         "qwerty",
		Threshold:      0.75,
		MaxSuggestions: 5,
		DataDir:        filepath.Join(dir, ".keyslip"),
	}

	out := buildDoctorOutput(cfg, testutil.NewTestLogger(t))

	assert.Equal(t, 3, out.Summary.Words)
	assert.Equal(t, 26, out.Summary.KeymapKeys)
	assert.NotEmpty(t, out.HealthChecks)

	byName := make(map[string]HealthCheck)
	for _, c := range out.HealthChecks {
		byName[c.Name] = c
	}
	assert.Equal(t, "pass", byName["word list readable"].Status)
	assert.Equal(t, "pass", byName["layout"].Status)
	assert.Equal(t, "pass", byName["alphabet coverage"].Status)
	assert.Equal(t, "pass", byName["data directory"].Status)
	assert.Equal(t, "pass", byName["state database"].Status)
}

func TestBuildDoctorOutput_NoWordlist(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Layout:         "qwerty",
		Threshold:      0.75,
		MaxSuggestions: 5,
		DataDir:        filepath.Join(dir, ".keyslip"),
	}

	out := buildDoctorOutput(cfg, testutil.NewTestLogger(t))

	var found bool
	for _, c := range out.HealthChecks {
		if c.Name == "word list configured" {
			found = true
			assert.Equal(t, "error", c.Status)
		}
	}
	assert.True(t, found, "missing word list should be reported")
	assert.Less(t, out.Score, 100)
	assert.NotEmpty(t, out.Recommendations)
}

func TestBuildDoctorOutput_BadThreshold(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Layout:         "qwerty",
		Threshold:      1.5,
		MaxSuggestions: 5,
		DataDir:        filepath.Join(dir, ".keyslip"),
	}

	out := buildDoctorOutput(cfg, testutil.NewTestLogger(t))

	var threshold HealthCheck
	for _, c := range out.HealthChecks {
		if c.Name == "threshold" {
			threshold = c
		}
	}
	assert.Equal(t, "error", threshold.Status)
	assert.Contains(t, threshold.Detail, "outside [0,1]")
}
