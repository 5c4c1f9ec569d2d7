package resolver

import "unicode/utf8"

// Distance returns the Levenshtein edit distance between a and b: the
// minimum number of single-rune insertions, deletions and substitutions
// turning one into the other. It runs the standard dynamic-programming
// recurrence over two rows, O(len(a)·len(b)) time and O(len(b)) space.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	if len(runesA) == 0 {
		return utf8.RuneCountInString(b)
	}
	if len(runesB) == 0 {
		return len(runesA)
	}

	previous := make([]int, len(runesB)+1)
	current := make([]int, len(runesB)+1)
	for j := range previous {
		previous[j] = j
	}

	for i := 1; i <= len(runesA); i++ {
		current[0] = i
		for j := 1; j <= len(runesB); j++ {
			substitution := previous[j-1]
			if runesA[i-1] != runesB[j-1] {
				substitution++
			}
			deletion := previous[j] + 1
			insertion := current[j-1] + 1

			minimum := substitution
			if deletion < minimum {
				minimum = deletion
			}
			if insertion < minimum {
				minimum = insertion
			}
			current[j] = minimum
		}
		previous, current = current, previous
	}
	return previous[len(runesB)]
}
