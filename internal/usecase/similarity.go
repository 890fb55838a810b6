package usecase

import "github.com/agnivade/levenshtein"

// Similarity returns a 0.0–1.0 score between two strings using Levenshtein
// distance: 1.0 - distance/max(len(a), len(b)). Both inputs are expected to
// be normalized already.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}
