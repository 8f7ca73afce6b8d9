package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateFeedback_TemplatesAndFallbacks(t *testing.T) {
	gen := NewFeedbackGenerator(map[string]string{
		"SQL":          "Mention database projects or coursework.",
		"found:python": "Quantify the impact of your Python work.",
	})

	lines := gen.GenerateFeedback([]string{"Python", "Django"}, []string{"sql", "Kafka"})

	assert.Equal(t, []string{
		missingHeader,
		"- sql → Mention database projects or coursework.",
		"- Kafka → Add more detail about your experience with Kafka.",
		foundHeader,
		"- Python → Quantify the impact of your Python work.",
		"- Django → " + foundSuggestion,
	}, lines)
}

func TestGenerateFeedback_NothingMissing(t *testing.T) {
	lines := NewFeedbackGenerator(nil).GenerateFeedback([]string{"Go"}, nil)

	assert.Equal(t, allPresentMessage, lines[0])
	assert.Equal(t, foundHeader, lines[1])
	assert.Len(t, lines, 3)
}

func TestGenerateFeedback_NothingFound(t *testing.T) {
	lines := NewFeedbackGenerator(nil).GenerateFeedback(nil, []string{"Go"})

	assert.Equal(t, []string{
		missingHeader,
		"- Go → Add more detail about your experience with Go.",
		noneFoundMessage,
	}, lines)
}

func TestFeedbackText(t *testing.T) {
	assert.Equal(t, "a\nb", FeedbackText([]string{"a", "b"}))
}
