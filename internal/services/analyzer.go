package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/metrics"
	"resume-analyzer/internal/models"
	"resume-analyzer/internal/repositories"
)

const (
	topSkillCount    = 10
	topKeywordCount  = 15
	textPreviewRunes = 1000
	coachTemperature = 0.4
)

type AnalysisInput struct {
	Document       models.ResumeDocument
	Role           string
	GitHubUsername string
}

type AnalyzerService interface {
	Roles() models.JobRoles
	AnalyzeResume(ctx context.Context, input AnalysisInput) (*models.AnalysisReport, error)
	RecordSnapshot(ctx context.Context, sessionID string, report *models.AnalysisReport, username string) (*models.HistoryRecord, bool, error)
	SaveEntry(ctx context.Context, sessionID string, entry models.HistoryEntry) (*models.HistoryRecord, bool, error)
}

type analyzerService struct {
	extractor     TextExtractor
	roles         models.JobRoles
	feedback      *FeedbackGenerator
	github        GitHubAnalyzer
	gemini        GeminiService
	historyRepo   repositories.HistoryRepository
	sessions      SessionStore
	promptBuilder *PromptBuilder
	log           *zap.Logger
	now           func() time.Time
}

// NewAnalyzerService wires the pipeline. github, gemini and sessions may be
// nil; the matching steps are then skipped.
func NewAnalyzerService(
	extractor TextExtractor,
	roles models.JobRoles,
	feedback *FeedbackGenerator,
	github GitHubAnalyzer,
	gemini GeminiService,
	historyRepo repositories.HistoryRepository,
	sessions SessionStore,
	log *zap.Logger,
) AnalyzerService {
	if feedback == nil {
		feedback = NewFeedbackGenerator(nil)
	}
	return &analyzerService{
		extractor:     extractor,
		roles:         roles,
		feedback:      feedback,
		github:        github,
		gemini:        gemini,
		historyRepo:   historyRepo,
		sessions:      sessions,
		promptBuilder: NewPromptBuilder(),
		log:           logger.OrNop(log),
		now:           time.Now,
	}
}

func (a *analyzerService) Roles() models.JobRoles {
	return a.roles
}

func (a *analyzerService) AnalyzeResume(ctx context.Context, input AnalysisInput) (*models.AnalysisReport, error) {
	format := string(input.Document.Format)

	keywords, ok := a.roles[input.Role]
	if !ok {
		metrics.ResumeAnalyses.WithLabelValues(format, "unknown_role").Inc()
		return nil, apperrors.NewUnknownRoleError(input.Role)
	}

	text, err := a.extractor.ExtractText(input.Document)
	if err != nil {
		metrics.ResumeAnalyses.WithLabelValues(format, string(apperrors.CodeOf(err))).Inc()
		a.log.Warn("Resume extraction failed",
			zap.String("filename", input.Document.Filename), zap.Error(err))
		return nil, err
	}

	kw := MatchKeywords(text, keywords)
	score := CalculateATSScore(text, keywords)

	report := &models.AnalysisReport{
		ID:               uuid.NewString(),
		Role:             input.Role,
		Keywords:         kw,
		Feedback:         a.feedback.GenerateFeedback(kw.Found, kw.Missing),
		ATSScore:         score,
		AllScores:        CalculateAllScores(text, a.roles),
		SkillMatch:       CalculateSkillMatch(text, keywords),
		Coverage:         CalculateSkillCoverage(text, keywords),
		TopSkills:        GetTopSkills(text, topSkillCount),
		TopKeywords:      ExtractKeywords(text, topKeywordCount),
		SkillFrequencies: GetSkillFrequencies(text),
		TextPreview:      preview(text, textPreviewRunes),
		GeneratedAt:      a.now(),
	}

	if username := strings.TrimSpace(input.GitHubUsername); username != "" && a.github != nil {
		report.GitHub = a.lookupGitHub(ctx, username)
	}

	if a.gemini != nil {
		prompt := a.promptBuilder.BuildCoachPrompt(input.Role, kw, score, text)
		coaching, err := a.gemini.GenerateText(ctx, prompt, coachTemperature)
		if err != nil {
			a.log.Warn("AI coaching unavailable", zap.Error(err))
		} else {
			report.AICoaching = coaching
		}
	}

	metrics.ResumeAnalyses.WithLabelValues(format, "success").Inc()
	metrics.ATSScore.Observe(score)

	a.log.Info("Resume analyzed",
		zap.String("report_id", report.ID),
		zap.String("role", report.Role),
		zap.Float64("ats_score", score),
		zap.Int("found", len(kw.Found)),
		zap.Int("missing", len(kw.Missing)))

	return report, nil
}

// lookupGitHub folds a failed lookup into the result instead of failing the report.
func (a *analyzerService) lookupGitHub(ctx context.Context, username string) *models.GitHubResult {
	stats, err := a.github.AnalyzeProfile(ctx, username)
	if err != nil {
		a.log.Warn("GitHub lookup failed",
			zap.String("username", username), zap.Error(err))
		return &models.GitHubResult{Error: err.Error()}
	}
	return &models.GitHubResult{Stats: stats}
}

// RecordSnapshot saves report under username with the report's GitHub
// stats, or zeros when the lookup was skipped or failed. username defaults
// to the GitHub login embedded in the report.
func (a *analyzerService) RecordSnapshot(ctx context.Context, sessionID string, report *models.AnalysisReport, username string) (*models.HistoryRecord, bool, error) {
	if report == nil {
		return nil, false, apperrors.NewInvalidRequestError("no report to save")
	}

	entry := models.HistoryEntry{
		Username: strings.TrimSpace(username),
		Role:     report.Role,
		ATSScore: report.ATSScore,
	}
	if report.GitHub.OK() {
		stats := report.GitHub.Stats
		if entry.Username == "" {
			entry.Username = stats.Username
		}
		entry.Repositories = stats.Repositories
		entry.Followers = stats.Followers
		entry.Contributions = stats.Contributions
	}

	return a.SaveEntry(ctx, sessionID, entry)
}

// SaveEntry writes entry unless this session already saved the same
// username and role. The boolean reports whether a row was written.
func (a *analyzerService) SaveEntry(ctx context.Context, sessionID string, entry models.HistoryEntry) (*models.HistoryRecord, bool, error) {
	if strings.TrimSpace(entry.Username) == "" {
		return nil, false, apperrors.NewEmptyUsernameError()
	}

	if a.sessions != nil && sessionID != "" {
		first, err := a.sessions.MarkSaved(ctx, sessionID, entry.Username, entry.Role)
		if err != nil {
			a.log.Warn("Session guard unavailable, saving anyway",
				zap.String("session_id", sessionID), zap.Error(err))
		} else if !first {
			metrics.HistorySaves.WithLabelValues("duplicate").Inc()
			a.log.Debug("Skipping duplicate snapshot",
				zap.String("session_id", sessionID),
				zap.String("username", entry.Username),
				zap.String("role", entry.Role))
			return nil, false, nil
		}
	}

	record, err := a.historyRepo.Save(ctx, entry)
	if err != nil {
		metrics.HistorySaves.WithLabelValues("error").Inc()
		return nil, false, err
	}

	metrics.HistorySaves.WithLabelValues("success").Inc()
	a.log.Info("Analysis snapshot saved",
		zap.Uint("id", record.ID),
		zap.String("username", record.Username),
		zap.Int("points", record.Points))

	return record, true, nil
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
