package services

import (
	"fmt"
	"strings"
)

const (
	missingHeader     = "⚠️ Consider learning or adding these skills to strengthen your resume:"
	allPresentMessage = "✅ Excellent! Your resume already includes all key skills."
	foundHeader       = "💡 Make sure these skills stand out clearly in your resume:"
	noneFoundMessage  = "None of the key skills for this role were detected yet. Start with the ones listed above."
	foundSuggestion   = "Highlight projects or achievements where you applied this."
	foundTemplateKey  = "found:"
)

type FeedbackGenerator struct {
	templates map[string]string
}

// NewFeedbackGenerator takes suggestion templates keyed by lowercased skill.
// A nil map is valid and yields generic suggestions only.
func NewFeedbackGenerator(templates map[string]string) *FeedbackGenerator {
	normalized := make(map[string]string, len(templates))
	for k, v := range templates {
		normalized[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &FeedbackGenerator{templates: normalized}
}

// GenerateFeedback returns display lines: one suggestion per missing skill
// and one stand-out reminder per found skill, or a single summary line for
// an empty side.
func (g *FeedbackGenerator) GenerateFeedback(found, missing []string) []string {
	lines := make([]string, 0, len(found)+len(missing)+2)

	if len(missing) > 0 {
		lines = append(lines, missingHeader)
		for _, skill := range missing {
			lines = append(lines, fmt.Sprintf("- %s → %s", skill, g.missingSuggestion(skill)))
		}
	} else {
		lines = append(lines, allPresentMessage)
	}

	if len(found) > 0 {
		lines = append(lines, foundHeader)
		for _, skill := range found {
			lines = append(lines, fmt.Sprintf("- %s → %s", skill, g.foundSuggestion(skill)))
		}
	} else {
		lines = append(lines, noneFoundMessage)
	}

	return lines
}

func (g *FeedbackGenerator) missingSuggestion(skill string) string {
	if tpl, ok := g.templates[strings.ToLower(skill)]; ok && tpl != "" {
		return tpl
	}
	return fmt.Sprintf("Add more detail about your experience with %s.", skill)
}

func (g *FeedbackGenerator) foundSuggestion(skill string) string {
	if tpl, ok := g.templates[foundTemplateKey+strings.ToLower(skill)]; ok && tpl != "" {
		return tpl
	}
	return foundSuggestion
}

// FeedbackText joins feedback lines the way the report renders them.
func FeedbackText(lines []string) string {
	return strings.Join(lines, "\n")
}
