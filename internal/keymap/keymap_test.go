package keymap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyslip-labs/keyslip/pkg/spell"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  spell.NeighborRelation
	}{
		{
			name:  "basic entry",
			input: "a:s,q,w\n",
			want:  spell.NeighborRelation{'a': {'s', 'q', 'w'}},
		},
		{
			name:  "whitespace and case normalized",
			input: "  A : S , q \n",
			want:  spell.NeighborRelation{'a': {'s', 'q'}},
		},
		{
			name:  "comments and blanks skipped",
			input: "# layout\n\na:s\n",
			want:  spell.NeighborRelation{'a': {'s'}},
		},
		{
			name:  "line without separator skipped",
			input: "a s q\nb:v\n",
			want:  spell.NeighborRelation{'b': {'v'}},
		},
		{
			name:  "multi-character key skipped",
			input: "ab:c\nd:f\n",
			want:  spell.NeighborRelation{'d': {'f'}},
		},
		{
			name:  "multi-character neighbor tokens dropped",
			input: "a:st,q,uv\n",
			want:  spell.NeighborRelation{'a': {'q'}},
		},
		{
			name:  "last occurrence wins",
			input: "a:s\na:q,w\n",
			want:  spell.NeighborRelation{'a': {'q', 'w'}},
		},
		{
			name:  "later empty list overrides",
			input: "a:s\na:\n",
			want:  spell.NeighborRelation{'a': nil},
		},
		{
			name:  "empty input",
			input: "",
			want:  spell.NeighborRelation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rel)
		})
	}
}

func TestParseDirectional(t *testing.T) {
	rel, err := Parse(strings.NewReader("o:i\n"))
	require.NoError(t, err)

	assert.True(t, rel.Near('o', 'i'))
	assert.False(t, rel.Near('i', 'o'))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.keymap"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open keymap")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.keymap")
	require.NoError(t, os.WriteFile(path, []byte("# test\nq:w,a\nw:q,e,s\n"), 0o644))

	rel, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, spell.NeighborRelation{
		'q': {'w', 'a'},
		'w': {'q', 'e', 's'},
	}, rel)
}

func TestBuiltinQwerty(t *testing.T) {
	rel, err := Builtin("qwerty")
	require.NoError(t, err)

	assert.Equal(t, []rune{'w', 'a', 's'}, rel['q'])
	assert.Equal(t, []rune{'q', 'w', 'e', 'a', 'd', 'z', 'x', 'c'}, rel['s'])

	// Generated layouts are symmetric.
	assert.True(t, rel.Near('q', 'w'))
	assert.True(t, rel.Near('w', 'q'))
	assert.False(t, rel.Near('q', 'p'))
}

func TestBuiltinCaseInsensitiveName(t *testing.T) {
	rel, err := Builtin("QWERTY")
	require.NoError(t, err)
	assert.True(t, rel.Near('a', 's'))
}

func TestBuiltinJcuken(t *testing.T) {
	rel, err := Builtin("jcuken")
	require.NoError(t, err)
	assert.True(t, rel.Near('й', 'ц'))
	assert.False(t, rel.Near('й', 'ю'))
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("colemak")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keyboard layout")
	assert.Contains(t, err.Error(), "qwerty")
}

func TestLayouts(t *testing.T) {
	assert.Equal(t, []string{"azerty", "jcuken", "qwerty"}, Layouts())
}
