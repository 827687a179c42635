package lexical

// Ratio scores the similarity of a and b from 0 to 100 using the indel
// distance: 100 * 2*LCS / (len(a)+len(b)), counted in runes.
// Two empty strings are identical.
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(a), []rune(b))
}

func ratioRunes(ra, rb []rune) float64 {
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	lcs := lcsLength(ra, rb)
	return 100 * float64(2*lcs) / float64(total)
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
