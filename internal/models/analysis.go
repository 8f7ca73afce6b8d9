package models

import (
	"time"
)

// JobRoles maps a role name to its required keywords, in display order.
type JobRoles map[string][]string

type KeywordResult struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

type SkillMatchResult struct {
	Percent       int      `json:"percent"`
	MatchedCount  int      `json:"matched_count"`
	TotalRequired int      `json:"total_required"`
	Matched       []string `json:"matched"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type SkillCoverage struct {
	Found   int `json:"found"`
	Missing int `json:"missing"`
	Percent int `json:"percent"`
}

type LanguageBytes struct {
	Language string `json:"language"`
	Bytes    int64  `json:"bytes"`
}

type GitHubProfileStats struct {
	Username      string          `json:"username"`
	Repositories  int             `json:"repositories"`
	Followers     int             `json:"followers"`
	Contributions int             `json:"contributions"`
	TopLanguages  []LanguageBytes `json:"top_languages"`
	Feedback      []string        `json:"feedback"`
}

// GitHubResult carries either Stats or Error, never both.
type GitHubResult struct {
	Stats *GitHubProfileStats `json:"stats,omitempty"`
	Error string              `json:"error,omitempty"`
}

func (r *GitHubResult) OK() bool {
	return r != nil && r.Stats != nil
}

// AnalysisReport is the bundle handed to report renderers.
type AnalysisReport struct {
	ID               string             `json:"id"`
	Role             string             `json:"role"`
	Keywords         KeywordResult      `json:"keywords"`
	Feedback         []string           `json:"feedback"`
	ATSScore         float64            `json:"ats_score"`
	AllScores        map[string]float64 `json:"all_scores"`
	SkillMatch       SkillMatchResult   `json:"skill_match"`
	Coverage         SkillCoverage      `json:"coverage"`
	TopSkills        []string           `json:"top_skills"`
	TopKeywords      []string           `json:"top_keywords"`
	SkillFrequencies []SkillCount       `json:"skill_frequencies"`
	GitHub           *GitHubResult      `json:"github,omitempty"`
	AICoaching       string             `json:"ai_coaching,omitempty"`
	TextPreview      string             `json:"text_preview"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// AnalysisSession is the per-client context kept between requests.
type AnalysisSession struct {
	ID        string   `json:"id"`
	SavedKeys []string `json:"saved_keys"`
	HasReport bool     `json:"has_report"`
}
