package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/config"
	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/models"
	"resume-analyzer/internal/repositories"
	"resume-analyzer/internal/services"
)

type stubExtractor struct{ text string }

func (s stubExtractor) ExtractText(models.ResumeDocument) (string, error) { return s.text, nil }
func (s stubExtractor) ExtractTextFromFile(string) (string, error)         { return s.text, nil }

type stubGitHub struct{}

func (stubGitHub) AnalyzeProfile(_ context.Context, username string) (*models.GitHubProfileStats, error) {
	if username == "ghost" {
		return nil, apperrors.NewProfileNotFoundError(username, http.StatusNotFound)
	}
	stats := &models.GitHubProfileStats{Username: username, Repositories: 7, Followers: 25, Contributions: 120}
	stats.Feedback = services.DeriveGitHubFeedback(stats)
	return stats, nil
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Server:   config.ServerConfig{Env: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "history.db")},
	}
	db, err := config.InitDatabase(cfg, nil)
	require.NoError(t, err)

	historyRepo := repositories.NewHistoryRepository(db)
	storage := services.NewStorageService(filepath.Join(dir, "data"), "job_roles.json", "feedback_templates.json", 1<<20, nil)
	sessions := services.NewMemorySessionStore(time.Hour)
	roles := models.JobRoles{"Data Scientist": {"Python", "SQL", "Machine Learning"}}

	analyzer := services.NewAnalyzerService(
		stubExtractor{text: "Python and SQL analyst"},
		roles,
		services.NewFeedbackGenerator(storage.LoadFeedbackTemplates()),
		stubGitHub{},
		nil,
		historyRepo,
		sessions,
		nil,
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Register(app.Group("/api/v1"),
		NewAnalyzeHandler(analyzer, storage, sessions, nil),
		NewGitHubHandler(stubGitHub{}),
		NewHistoryHandler(historyRepo, analyzer),
	)
	return app
}

func analyzeRequest(t *testing.T, sessionID, filename string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("stub"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	return req
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func jsonRequest(method, path, sessionID, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	return req
}

const testSession = "4f8f6a36-2c55-4d1e-9d2b-8a5b2f0f4c11"

func TestHealthIssuesSessionID(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(SessionHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set(SessionHeader, testSession)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, testSession, resp.Header.Get(SessionHeader))
}

func TestRoles(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/roles", nil))
	require.NoError(t, err)

	var body struct {
		Roles    []string          `json:"roles"`
		Keywords models.JobRoles `json:"keywords"`
	}
	decode(t, resp, &body)
	assert.Equal(t, []string{"Data Scientist"}, body.Roles)
}

func TestAnalyze_SavesOncePerSession(t *testing.T) {
	app := setupApp(t)
	fields := map[string]string{"role": "Data Scientist", "github_username": "octo", "save": "true"}

	resp, err := app.Test(analyzeRequest(t, testSession, "cv.pdf", fields))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var first models.AnalyzeResponse
	decode(t, resp, &first)
	assert.Equal(t, testSession, first.SessionID)
	assert.Equal(t, 66.67, first.Report.ATSScore)
	assert.Equal(t, []string{"Machine Learning"}, first.Report.Keywords.Missing)
	require.True(t, first.Report.GitHub.OK())
	assert.True(t, first.Saved)
	require.NotNil(t, first.Record)
	assert.Equal(t, 120, first.Record.Contributions)
	assert.Equal(t, 79, first.Record.Points)

	resp, err = app.Test(analyzeRequest(t, testSession, "cv.pdf", fields))
	require.NoError(t, err)
	var second models.AnalyzeResponse
	decode(t, resp, &second)
	assert.False(t, second.Saved)
	assert.Nil(t, second.Record)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/history/octo", nil))
	require.NoError(t, err)
	var history models.HistoryResponse
	decode(t, resp, &history)
	assert.Len(t, history.Records, 1)
}

func TestAnalyze_SaveWithoutUsernameKeepsReport(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(analyzeRequest(t, testSession, "cv.pdf", map[string]string{
		"role": "Data Scientist", "save": "true",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.AnalyzeResponse
	decode(t, resp, &body)
	require.NotNil(t, body.Report)
	assert.Equal(t, 66.67, body.Report.ATSScore)
	assert.False(t, body.Saved)
	assert.Nil(t, body.Record)
	assert.Contains(t, body.Warning, "username cannot be empty")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	req.Header.Set(SessionHeader, testSession)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyze_Errors(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		status   int
		code     string
	}{
		{"missing role", "cv.pdf", map[string]string{}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown role", "cv.pdf", map[string]string{"role": "Astronaut"}, http.StatusBadRequest, "UNKNOWN_ROLE"},
		{"missing file", "", map[string]string{"role": "Data Scientist"}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unsupported format", "cv.txt", map[string]string{"role": "Data Scientist"}, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(analyzeRequest(t, "", tt.filename, tt.fields))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]interface{}
			decode(t, resp, &body)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalyze_GitHubFailureStillReports(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(analyzeRequest(t, "", "cv.docx", map[string]string{
		"role": "Data Scientist", "github_username": "ghost",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.AnalyzeResponse
	decode(t, resp, &body)
	assert.Equal(t, "profile not found", body.Report.GitHub.Error)
	assert.False(t, body.Saved)
}

func TestReportDownload(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	req.Header.Set(SessionHeader, testSession)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, err = app.Test(analyzeRequest(t, testSession, "cv.pdf", map[string]string{"role": "Data Scientist"}))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	req.Header.Set(SessionHeader, testSession)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	var report models.AnalysisReport
	decode(t, resp, &report)
	assert.Equal(t, "Data Scientist", report.Role)
}

func TestGitHubProfile(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/github/octo", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.GitHubProfileStats
	decode(t, resp, &stats)
	assert.Equal(t, 7, stats.Repositories)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/github/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "profile not found", body["error"])
}

func TestHistoryLifecycle(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/history", testSession,
		`{"username":"jane","role":"Data Scientist","ats_score":84,"repositories":"12","followers":3.0,"contributions":"1,050"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var saved models.SaveHistoryResponse
	decode(t, resp, &saved)
	require.True(t, saved.Saved)
	assert.Equal(t, 12, saved.Record.Repositories)
	assert.Equal(t, 1050, saved.Record.Contributions)
	assert.Equal(t, 189, saved.Record.Points)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/history", testSession,
		`{"username":"jane","role":"Data Scientist","ats_score":90}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/history", "",
		`{"username":"bob","role":"Data Scientist","ats_score":50,"contributions":"n/a"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil))
	require.NoError(t, err)
	var board models.LeaderboardResponse
	decode(t, resp, &board)
	require.Len(t, board.Rows, 2)
	assert.Equal(t, "jane", board.Rows[0].Username)
	assert.Equal(t, 50, board.Rows[1].TotalPoints)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/history/jane", nil))
	require.NoError(t, err)
	var cleared map[string]interface{}
	decode(t, resp, &cleared)
	assert.Equal(t, float64(1), cleared["deleted"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/history/jane", nil))
	require.NoError(t, err)
	var history models.HistoryResponse
	decode(t, resp, &history)
	assert.NotNil(t, history.Records)
	assert.Empty(t, history.Records)
}

func TestHistorySave_Validation(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/history", "", `{"username":"  ","role":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "EMPTY_USERNAME", body["code"])

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/history", "", `{"username":"jane","role":"x","ats_score":140}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/history", "", `{not json`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionDescribe(t *testing.T) {
	app := setupApp(t)

	_, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/history", testSession,
		`{"username":"jane","role":"Data Scientist","ats_score":10}`))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set(SessionHeader, testSession)
	resp, err := app.Test(req)
	require.NoError(t, err)

	var sess models.AnalysisSession
	decode(t, resp, &sess)
	assert.Equal(t, testSession, sess.ID)
	assert.Equal(t, []string{"jane|Data Scientist"}, sess.SavedKeys)
	assert.False(t, sess.HasReport)
}
