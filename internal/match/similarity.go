package match

import (
	"strings"
)

// fuzzyThreshold is the Levenshtein similarity above which two tokens count
// as the same word.
const fuzzyThreshold = 0.7

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity normalises the edit distance into [0,1].
func LevenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	return 1 - float64(Levenshtein(a, b))/float64(max(la, lb))
}

func tokensMatch(a, b string) bool {
	return a == b ||
		strings.Contains(a, b) ||
		strings.Contains(b, a) ||
		LevenshteinSimilarity(a, b) > fuzzyThreshold
}

// countMatches counts tokens of from that match any token of to.
func countMatches(from, to []string) int {
	n := 0
	for _, f := range from {
		for _, t := range to {
			if tokensMatch(f, t) {
				n++
				break
			}
		}
	}
	return n
}

// TextSimilarity blends a Jaccard ratio with an overlap ratio over the
// keywords of a and b. The match count is averaged over both directions so
// TextSimilarity(a, b) == TextSimilarity(b, a).
func TextSimilarity(a, b string) float64 {
	ta := Tokenize(strings.ToLower(a))
	tb := Tokenize(strings.ToLower(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	matches := float64(countMatches(ta, tb)+countMatches(tb, ta)) / 2

	union := make(map[string]struct{}, len(ta)+len(tb))
	for _, t := range ta {
		union[t] = struct{}{}
	}
	for _, t := range tb {
		union[t] = struct{}{}
	}

	jaccard := matches / float64(len(union))
	overlap := matches / float64(min(len(ta), len(tb)))
	return clamp(0.4*jaccard+0.6*overlap, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
