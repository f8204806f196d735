package search

// levenshtein returns the edit distance between a and b using the full
// (len(a)+1) x (len(b)+1) dynamic-programming table.
func levenshtein(a, b []rune) int {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
		}
	}
	return dp[m][n]
}

// Similarity returns (maxLen - distance) / maxLen over runes, in [0, 1].
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-levenshtein(ra, rb)) / float64(maxLen)
}

// fuzzyScore pairs every long-enough query token with every long-enough title
// word and awards the fuzzy weight for each pair strictly above the threshold.
// The result is not yet multiplied by priority.
func (s *scorer) fuzzyScore(e *entry, q query) (float64, []string) {
	var score float64
	var terms []string
	for _, tok := range q.tokens {
		if runeLen(tok) < s.w.FuzzyMinLength {
			continue
		}
		for _, word := range e.titleWords {
			if runeLen(word) < s.w.FuzzyMinLength {
				continue
			}
			if Similarity(tok, word) > s.w.FuzzyThreshold {
				score += s.w.Fuzzy
				terms = append(terms, "fuzzy:"+tok+"~"+word)
			}
		}
	}
	return score, terms
}
