package merge

import "github.com/sillsdev/liftbridge/core/text"

// bestMatch picks the unused candidate sharing the most locale-tagged
// values with the staged object. Ties go to the earlier candidate. A
// candidate with no overlap is accepted only when it and the staged object
// are both entirely empty.
func bestMatch[T comparable](candidates []T, used map[T]bool, overlap func(T) int, isEmpty func(T) bool, stagedEmpty bool) (T, bool) {
	var best T
	bestScore := 0
	for _, c := range candidates {
		if used[c] {
			continue
		}
		if n := overlap(c); n > bestScore {
			best, bestScore = c, n
		}
	}
	if bestScore > 0 {
		return best, true
	}
	if stagedEmpty {
		for _, c := range candidates {
			if !used[c] && isEmpty(c) {
				return c, true
			}
		}
	}
	var zero T
	return zero, false
}

// overlapAll sums the overlap of pairs of locale-tagged values.
func overlapAll(pairs ...[2]text.Multi) int {
	n := 0
	for _, p := range pairs {
		n += text.Overlap(p[0], p[1])
	}
	return n
}

func allEmpty(ms ...text.Multi) bool {
	for _, m := range ms {
		if !m.IsEmpty() {
			return false
		}
	}
	return true
}
