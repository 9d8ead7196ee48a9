package analysis

// Ratio returns a Ratcliff/Obershelp similarity score in [0,1]:
// 2*M / (len(a)+len(b)), where M is the total length of the matching
// blocks found by recursively taking the longest common substring and
// matching the segments to either side of it. Long contiguous shared
// substrings score higher than the same characters scattered around.
//
// Arguments are put in a canonical order first, so sim(a,b) == sim(b,a).
func Ratio(a, b string) float64 {
	if a > b {
		a, b = b, a
	}
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedLen(ra, rb)) / float64(total)
}

// matchedLen sums the lengths of all matching blocks between a and b.
func matchedLen(a, b []rune) int {
	i, j, k := longestMatch(a, b)
	if k == 0 {
		return 0
	}
	return k + matchedLen(a[:i], b[:j]) + matchedLen(a[i+k:], b[j+k:])
}

// longestMatch finds the longest run a[i:i+k] == b[j:j+k]. Among runs of
// equal length the one starting earliest in a, then earliest in b, wins,
// which keeps the score independent of traversal accidents.
func longestMatch(a, b []rune) (bestI, bestJ, bestK int) {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// j2len[j] is the length of the match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i, r := range a {
		newJ2len := make(map[int]int)
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestK {
				bestI, bestJ, bestK = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return bestI, bestJ, bestK
}
