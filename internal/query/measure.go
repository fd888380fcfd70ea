package query

// Difference counts the positions where a and b differ over their common
// prefix length and adds the length difference. Positions are aligned from
// the start and counted in characters; there is no insertion or
// transposition handling.
func Difference(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	diff := 0
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			diff++
		}
	}
	if len(ra) > len(rb) {
		return diff + len(ra) - len(rb)
	}
	return diff + len(rb) - len(ra)
}

// MostFrequent returns the most frequent character of seq and its count.
// On a tie the smallest code point wins. For an empty seq it returns 0, 0.
func MostFrequent(seq string) (rune, int) {
	freq := make(map[rune]int)
	for _, r := range seq {
		freq[r]++
	}

	var best rune
	bestCount := 0
	for r, n := range freq {
		if n > bestCount || (n == bestCount && r < best) {
			best, bestCount = r, n
		}
	}
	return best, bestCount
}
