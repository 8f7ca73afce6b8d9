package services

import (
	"regexp"
	"sort"
	"strings"

	"resume-analyzer/internal/models"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9\-\+#]+`)

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "that": {}, "this": {},
	"you": {}, "are": {}, "was": {}, "have": {}, "has": {}, "will": {}, "not": {},
	"your": {}, "but": {}, "our": {}, "they": {}, "their": {}, "them": {}, "about": {},
	"which": {}, "when": {}, "what": {}, "where": {}, "why": {}, "how": {}, "all": {},
	"any": {}, "also": {}, "use": {}, "used": {}, "using": {}, "one": {}, "can": {},
	"may": {}, "should": {}, "a": {}, "an": {}, "in": {}, "on": {}, "of": {}, "to": {},
}

// technicalSkills is the closed vocabulary for skill tables and top-skill lists.
var technicalSkills = map[string]struct{}{
	"python": {}, "java": {}, "c++": {}, "c#": {}, "sql": {}, "pandas": {}, "numpy": {},
	"matplotlib": {}, "tensorflow": {}, "pytorch": {}, "scikit-learn": {}, "machine": {},
	"learning": {}, "deep": {}, "django": {}, "flask": {}, "fastapi": {}, "react": {},
	"angular": {}, "vue": {}, "node": {}, "aws": {}, "azure": {}, "gcp": {}, "docker": {},
	"kubernetes": {}, "html": {}, "css": {}, "javascript": {}, "typescript": {},
	"golang": {}, "rust": {}, "kotlin": {}, "swift": {}, "mongodb": {}, "postgresql": {},
	"mysql": {}, "redis": {}, "git": {}, "linux": {}, "spark": {}, "hadoop": {},
}

func tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// rankTokens counts tokens passing keep and orders them by count desc,
// breaking ties by first occurrence.
func rankTokens(text string, keep func(string) bool) []models.SkillCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, tok := range tokenize(text) {
		tok = strings.ToLower(tok)
		if !keep(tok) {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	ranked := make([]models.SkillCount, 0, len(order))
	for _, tok := range order {
		ranked = append(ranked, models.SkillCount{Skill: tok, Count: counts[tok]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

func isKeywordToken(tok string) bool {
	if len(tok) <= 2 {
		return false
	}
	_, stop := stopwords[tok]
	return !stop
}

func isSkillToken(tok string) bool {
	if !isKeywordToken(tok) || isAllDigits(tok) {
		return false
	}
	_, ok := technicalSkills[tok]
	return ok
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func topN(ranked []models.SkillCount, n int) []string {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, 0, n)
	for _, sc := range ranked[:n] {
		out = append(out, sc.Skill)
	}
	return out
}

// ExtractKeywords returns the topN most frequent non-stopword tokens.
func ExtractKeywords(text string, n int) []string {
	if text == "" {
		return []string{}
	}
	return topN(rankTokens(text, isKeywordToken), n)
}

// GetTopSkills is ExtractKeywords restricted to the technical vocabulary.
func GetTopSkills(text string, n int) []string {
	return topN(rankTokens(text, isSkillToken), n)
}

// GetSkillFrequencies lists every vocabulary skill found in text with its count.
func GetSkillFrequencies(text string) []models.SkillCount {
	return rankTokens(text, isSkillToken)
}

// CalculateSkillCoverage reports how many keywords the text contains.
func CalculateSkillCoverage(text string, keywords []string) models.SkillCoverage {
	found := countContained(text, keywords)
	return models.SkillCoverage{
		Found:   found,
		Missing: len(keywords) - found,
		Percent: percentHalfEven(found, len(keywords)),
	}
}
