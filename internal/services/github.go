package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"resume-analyzer/internal/config"
	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/metrics"
	"resume-analyzer/internal/models"
)

const (
	topLanguageCount = 5

	minRepositories  = 5
	minFollowers     = 20
	minContributions = 100

	feedbackMoreRepos     = "Add more repositories to showcase your projects and skills."
	feedbackEngage        = "Engage with the community to grow your followers: contribute to discussions and open source."
	feedbackMoreCommits   = "Increase your commit activity; consistent contributions signal active development."
	feedbackProfileStrong = "Great job! Your GitHub profile shows strong activity and community presence."

	acceptJSON = "application/vnd.github+json"
	acceptHTML = "text/html,application/xhtml+xml"
)

var (
	lastYearPattern      = regexp.MustCompile(`(?i)([\d,]+)\s+contributions?\s+in\s+the\s+last\s+year`)
	contributionsPattern = regexp.MustCompile(`(?i)([\d,]+)\s+contributions?`)
)

type GitHubAnalyzer interface {
	AnalyzeProfile(ctx context.Context, username string) (*models.GitHubProfileStats, error)
}

type githubAnalyzer struct {
	client    *http.Client
	apiBase   string
	webBase   string
	token     string
	userAgent string
	timeout   time.Duration
	maxRepos  int
	log       *zap.Logger
}

type githubUser struct {
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	ReposURL    string `json:"repos_url"`
}

type githubRepo struct {
	Name         string `json:"name"`
	LanguagesURL string `json:"languages_url"`
}

func NewGitHubAnalyzer(cfg config.GitHubConfig, log *zap.Logger) GitHubAnalyzer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxRepos := cfg.MaxRepos
	if maxRepos <= 0 {
		maxRepos = 10
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &githubAnalyzer{
		client:    &http.Client{Timeout: timeout},
		apiBase:   strings.TrimRight(cfg.APIBaseURL, "/"),
		webBase:   strings.TrimRight(cfg.WebBaseURL, "/"),
		token:     cfg.Token,
		userAgent: userAgent,
		timeout:   timeout,
		maxRepos:  maxRepos,
		log:       logger.OrNop(log),
	}
}

// AnalyzeProfile fetches public statistics for username. Only the profile
// lookup is fatal; contributions and languages degrade to zero values.
func (g *githubAnalyzer) AnalyzeProfile(ctx context.Context, username string) (*models.GitHubProfileStats, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		metrics.GitHubLookups.WithLabelValues("empty_username").Inc()
		return nil, apperrors.NewEmptyUsernameError()
	}

	start := time.Now()
	defer func() {
		metrics.GitHubLookupDuration.Observe(time.Since(start).Seconds())
	}()

	user, err := g.fetchUser(ctx, username)
	if err != nil {
		metrics.GitHubLookups.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	stats := &models.GitHubProfileStats{
		Username:     username,
		Repositories: user.PublicRepos,
		Followers:    user.Followers,
		TopLanguages: []models.LanguageBytes{},
	}

	contributions, err := g.fetchContributions(ctx, username)
	if err != nil {
		g.log.Warn("Contribution count unavailable",
			zap.String("username", username), zap.Error(err))
	}
	stats.Contributions = contributions

	languages, err := g.fetchTopLanguages(ctx, username)
	if err != nil {
		g.log.Warn("Language breakdown unavailable",
			zap.String("username", username), zap.Error(err))
	} else {
		stats.TopLanguages = languages
	}

	stats.Feedback = DeriveGitHubFeedback(stats)
	metrics.GitHubLookups.WithLabelValues("success").Inc()

	g.log.Info("GitHub profile analyzed",
		zap.String("username", username),
		zap.Int("repositories", stats.Repositories),
		zap.Int("followers", stats.Followers),
		zap.Int("contributions", stats.Contributions))

	return stats, nil
}

func (g *githubAnalyzer) fetchUser(ctx context.Context, username string) (*githubUser, error) {
	endpoint := fmt.Sprintf("%s/users/%s", g.apiBase, url.PathEscape(username))

	body, status, err := g.get(ctx, endpoint, acceptJSON)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	if status != http.StatusOK {
		return nil, apperrors.NewProfileNotFoundError(username, status)
	}

	var user githubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apperrors.NewNetworkError(fmt.Errorf("failed to decode profile: %w", err))
	}
	return &user, nil
}

func (g *githubAnalyzer) fetchContributions(ctx context.Context, username string) (int, error) {
	endpoint := fmt.Sprintf("%s/users/%s/contributions", g.webBase, url.PathEscape(username))

	body, status, err := g.get(ctx, endpoint, acceptHTML)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("contributions endpoint returned status %d", status)
	}
	return ParseContributions(string(body)), nil
}

func (g *githubAnalyzer) fetchTopLanguages(ctx context.Context, username string) ([]models.LanguageBytes, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d", g.apiBase, url.PathEscape(username), g.maxRepos)

	body, status, err := g.get(ctx, endpoint, acceptJSON)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("repos endpoint returned status %d", status)
	}

	var repos []githubRepo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, fmt.Errorf("failed to decode repos: %w", err)
	}
	if len(repos) > g.maxRepos {
		repos = repos[:g.maxRepos]
	}

	totals := make(map[string]int64)
	for _, repo := range repos {
		if repo.LanguagesURL == "" {
			continue
		}
		langs, err := g.fetchLanguages(ctx, repo.LanguagesURL)
		if err != nil {
			g.log.Debug("Skipping repository languages",
				zap.String("repo", repo.Name), zap.Error(err))
			continue
		}
		for lang, n := range langs {
			totals[lang] += n
		}
	}

	return TopLanguages(totals, topLanguageCount), nil
}

func (g *githubAnalyzer) fetchLanguages(ctx context.Context, endpoint string) (map[string]int64, error) {
	body, status, err := g.get(ctx, endpoint, acceptJSON)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("languages endpoint returned status %d", status)
	}

	var langs map[string]int64
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	return langs, nil
}

// get performs a single GET bounded by the per-request timeout.
func (g *githubAnalyzer) get(ctx context.Context, endpoint, accept string) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", accept)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// ParseContributions extracts the yearly contribution total from the
// contributions calendar fragment. It prefers the headline sentence, then
// the sum of per-day data-count attributes, then the largest "N contributions"
// phrase. Unparseable input yields 0.
func ParseContributions(html string) int {
	if m := lastYearPattern.FindStringSubmatch(html); m != nil {
		return parseCount(m[1])
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		total, seen := 0, false
		doc.Find("[data-count]").Each(func(_ int, s *goquery.Selection) {
			if v, ok := s.Attr("data-count"); ok {
				total += parseCount(v)
				seen = true
			}
		})
		if seen {
			return total
		}
	}

	best := 0
	for _, m := range contributionsPattern.FindAllStringSubmatch(html, -1) {
		if n := parseCount(m[1]); n > best {
			best = n
		}
	}
	return best
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// TopLanguages orders totals by bytes descending, ties by name, and keeps n.
func TopLanguages(totals map[string]int64, n int) []models.LanguageBytes {
	out := make([]models.LanguageBytes, 0, len(totals))
	for lang, bytes := range totals {
		out = append(out, models.LanguageBytes{Language: lang, Bytes: bytes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Language < out[j].Language
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DeriveGitHubFeedback applies the activity thresholds in a fixed order.
func DeriveGitHubFeedback(stats *models.GitHubProfileStats) []string {
	if stats == nil {
		return []string{}
	}

	feedback := make([]string, 0, 3)
	if stats.Repositories < minRepositories {
		feedback = append(feedback, feedbackMoreRepos)
	}
	if stats.Followers < minFollowers {
		feedback = append(feedback, feedbackEngage)
	}
	if stats.Contributions < minContributions {
		feedback = append(feedback, feedbackMoreCommits)
	}
	if len(feedback) == 0 {
		feedback = append(feedback, feedbackProfileStrong)
	}
	return feedback
}
