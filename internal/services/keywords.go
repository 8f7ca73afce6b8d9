package services

import (
	"strings"

	"resume-analyzer/internal/models"
)

// MatchKeywords partitions keywords into those contained in text and those
// that are not. Matching is case-insensitive substring containment; both
// lists keep the input order.
func MatchKeywords(text string, keywords []string) models.KeywordResult {
	result := models.KeywordResult{
		Found:   make([]string, 0, len(keywords)),
		Missing: make([]string, 0, len(keywords)),
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if containsFold(lower, kw) {
			result.Found = append(result.Found, kw)
		} else {
			result.Missing = append(result.Missing, kw)
		}
	}

	return result
}

// containsFold expects lowerText to be lowercased already.
func containsFold(lowerText, keyword string) bool {
	return strings.Contains(lowerText, strings.ToLower(keyword))
}

func countContained(text string, keywords []string) int {
	lower := strings.ToLower(text)
	found := 0
	for _, kw := range keywords {
		if containsFold(lower, kw) {
			found++
		}
	}
	return found
}
