package match

// Ratio computes Ratcliff/Obershelp similarity over runes: twice the number
// of matching characters across recursively found longest common substrings,
// divided by the total length. Matches Python difflib's SequenceMatcher
// ratio, which every recovered threshold in this package was tuned against.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matching(ra, rb)) / float64(total)
}

func matching(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matching(a[:ai], b[:bi]) +
		matching(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest common substring, preferring the earliest
// start in a and then in b on equal length.
func longestMatch(a, b []rune) (ai, bi, size int) {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	j2len := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int, len(b2j[r]))
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > size {
				ai, bi, size = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return ai, bi, size
}
