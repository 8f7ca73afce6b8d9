package services

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-analyzer/internal/models"
)

// CalculateATSScore returns the share of keywords contained in text as a
// percentage rounded to two decimals. An empty keyword list scores 0.
func CalculateATSScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	found := countContained(text, keywords)
	return roundTo(100*float64(found)/float64(len(keywords)), 2)
}

// CalculateAllScores scores text against every role independently.
func CalculateAllScores(text string, roles models.JobRoles) map[string]float64 {
	scores := make(map[string]float64, len(roles))
	for role, keywords := range roles {
		scores[role] = CalculateATSScore(text, keywords)
	}
	return scores
}

// CalculateSkillMatch counts keywords that appear as whole words in text.
// Boundaries are only required at keyword edges that are word characters,
// so "C++" and "C#" still match before punctuation or spaces.
func CalculateSkillMatch(text string, keywords []string) models.SkillMatchResult {
	result := models.SkillMatchResult{
		TotalRequired: len(keywords),
		Matched:       make([]string, 0, len(keywords)),
	}
	if len(keywords) == 0 {
		return result
	}

	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if matchesWholeWord(lower, kw) {
			result.Matched = append(result.Matched, kw)
		}
	}

	result.MatchedCount = len(result.Matched)
	result.Percent = percentHalfEven(result.MatchedCount, result.TotalRequired)
	return result
}

func matchesWholeWord(lowerText, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}

	re, err := regexp.Compile(wholeWordPattern(kw))
	if err != nil {
		return strings.Contains(lowerText, kw)
	}
	return re.MatchString(lowerText)
}

func wholeWordPattern(kw string) string {
	pattern := regexp.QuoteMeta(kw)

	first, _ := utf8.DecodeRuneInString(kw)
	if isWordRune(first) {
		pattern = `\b` + pattern
	}
	last, _ := utf8.DecodeLastRuneInString(kw)
	if isWordRune(last) {
		pattern += `\b`
	}
	return pattern
}

// isWordRune mirrors RE2's ASCII \w class.
func isWordRune(r rune) bool {
	return r < unicode.MaxASCII && (r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

// percentHalfEven is round(100*part/total) with ties to even; 0 when total is 0.
func percentHalfEven(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(100 * float64(part) / float64(total)))
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
