// Package spell implements keyboard-aware fuzzy spelling correction.
//
// The package has two layers:
//
//  1. Distance engine: Distance and Similarity compute a weighted edit
//     distance whose substitution cost is discounted to 0.5 when the typed
//     character sits next to the intended one on the keyboard, as described
//     by a NeighborRelation. Adjacent-key slips are more likely than random
//     substitutions, so they surface at a higher similarity.
//  2. Suggestion ranker: Correct scores a word against every dictionary
//     entry, filters by a similarity threshold, ranks the survivors, and
//     decides whether the top match is confident enough to auto-apply.
//
// # Ranking semantics
//
// Candidates are ordered by similarity descending with a stable sort, so
// entries with equal scores keep their dictionary order. A correction is
// only marked confident when the top similarity strictly exceeds
// AutoCorrectThreshold; callers decide whether to apply it or prompt.
//
// # Scaling
//
// Every dictionary entry is scored in full: O(|word| * |entry|) time and
// space per pair, with no pruning, caching, or early termination. That is
// fine for word lists in the tens of thousands; callers with larger
// dictionaries should shard the list and run Correct concurrently, which
// is safe because all inputs are read-only.
package spell
