package services

import (
	"fmt"
	"strings"

	"resume-analyzer/internal/models"
)

// maxPromptResumeChars bounds how many runes of resume text are sent to the model.
const maxPromptResumeChars = 6000

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCoachPrompt creates the prompt for short resume improvement tips.
func (pb *PromptBuilder) BuildCoachPrompt(role string, keywords models.KeywordResult, atsScore float64, resumeText string) string {
	resumeText = preview(resumeText, maxPromptResumeChars)

	return fmt.Sprintf(`You are an experienced technical recruiter reviewing a resume for a %s position.

ATS KEYWORD SCORE: %.2f / 100

KEYWORDS FOUND:
%s

KEYWORDS MISSING:
%s

RESUME TEXT:
%s

Give exactly three short, concrete suggestions that would improve this resume for the role.
Each suggestion must be one sentence on its own line, starting with "- ".
Do not invent experience the candidate does not have. Do not repeat the score.`,
		role, atsScore, bulletList(keywords.Found), bulletList(keywords.Missing), resumeText)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(items, "\n- ")
}
