package match

// Similarity returns the token-sort ratio between two titles: both are
// normalized, their tokens sorted, and the result is one minus the
// normalized Levenshtein distance. The range is [0, 1] with 1 meaning
// the normalized titles are identical.
func Similarity(a, b string) float64 {
	sa, sb := tokenSort(a), tokenSort(b)
	if sa == sb {
		return 1
	}
	if sa == "" || sb == "" {
		return 0
	}

	ra, rb := []rune(sa), []rune(sb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes the edit distance between two rune slices using
// the two-row dynamic programming formulation.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
