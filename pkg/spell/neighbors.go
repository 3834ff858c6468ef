package spell

import "unicode"

// NeighborRelation maps a lowercase key to the keys adjacent to it on an
// input device. The relation is directional: 'a' may list 'b' as a
// neighbor without 'b' listing 'a', and lookups never symmetrize it.
// Relations are built once by a loader and treated as read-only, so they
// are safe to share across concurrent scoring calls.
type NeighborRelation map[rune][]rune

// Near reports whether b is listed as a neighbor of a. Both runes are
// lowercased, but only a is used as the lookup key; callers that want
// symmetric behavior must store both directions.
func (r NeighborRelation) Near(a, b rune) bool {
	if len(r) == 0 {
		return false
	}
	b = unicode.ToLower(b)
	for _, n := range r[unicode.ToLower(a)] {
		if n == b {
			return true
		}
	}
	return false
}
