// Package keymap builds the neighbor relation used for discounted
// substitutions, either from a keymap file or from a built-in layout.
//
// Keymap files contain one entry per line in the form
//
//	key:n1,n2,n3
//
// Keys and neighbors are single characters, matched case-insensitively.
// Blank lines, comment lines starting with '#', and lines without a ':'
// separator are skipped. Tokens longer than one character are dropped.
// When a key appears on more than one line, the last line wins.
package keymap

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/keyslip-labs/keyslip/pkg/spell"
)

// DefaultLayout is the built-in layout used when no keymap file is
// configured.
const DefaultLayout = "qwerty"

// Physical key rows per layout. Two keys are neighbors when their
// row/column distance is at most 1.5, which covers the four adjacent
// keys plus the diagonals.
var layoutRows = map[string][]string{
	"qwerty": {
		"qwertyuiop",
		"asdfghjkl",
		"zxcvbnm",
	},
	"azerty": {
		"azertyuiop",
		"qsdfghjklm",
		"wxcvbn",
	},
	"jcuken": {
		"ёйцукенгшщзхъ",
		"фывапролджэ",
		"ячсмитьбю",
	},
}

const neighborRadius = 1.5

// Load parses the keymap file at path. A missing or unreadable file is
// an error; malformed content inside the file is not.
func Load(path string) (spell.NeighborRelation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keymap: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads keymap entries from r. Malformed lines and tokens are
// silently skipped, so any input yields a relation; only a read failure
// is an error.
func Parse(r io.Reader) (spell.NeighborRelation, error) {
	rel := make(spell.NeighborRelation)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		keyRunes := []rune(strings.ToLower(strings.TrimSpace(key)))
		if len(keyRunes) != 1 {
			continue
		}

		var neighbors []rune
		for _, tok := range strings.Split(rest, ",") {
			tokRunes := []rune(strings.ToLower(strings.TrimSpace(tok)))
			if len(tokRunes) == 1 {
				neighbors = append(neighbors, tokRunes[0])
			}
		}
		rel[keyRunes[0]] = neighbors
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keymap: %w", err)
	}

	return rel, nil
}

// Builtin returns the neighbor relation for a named built-in layout.
func Builtin(name string) (spell.NeighborRelation, error) {
	rows, ok := layoutRows[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown keyboard layout %q (available: %s)", name, strings.Join(Layouts(), ", "))
	}
	return fromRows(rows), nil
}

// Layouts lists the built-in layout names in sorted order.
func Layouts() []string {
	names := make([]string, 0, len(layoutRows))
	for name := range layoutRows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fromRows derives a neighbor relation from physical key rows. Neighbor
// lists come out in row-major key order so the result is deterministic.
func fromRows(rows []string) spell.NeighborRelation {
	type pos struct{ row, col int }

	positions := make(map[rune]pos)
	var order []rune
	for r, row := range rows {
		for c, ch := range []rune(row) {
			positions[ch] = pos{row: r, col: c}
			order = append(order, ch)
		}
	}

	rel := make(spell.NeighborRelation, len(order))
	for _, key := range order {
		kp := positions[key]
		for _, other := range order {
			if other == key {
				continue
			}
			op := positions[other]
			if math.Hypot(float64(kp.row-op.row), float64(kp.col-op.col)) <= neighborRadius {
				rel[key] = append(rel[key], other)
			}
		}
	}
	return rel
}
