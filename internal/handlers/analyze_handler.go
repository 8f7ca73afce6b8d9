package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/models"
	"resume-analyzer/internal/services"
)

type AnalyzeHandler struct {
	analyzer       services.AnalyzerService
	storageService services.StorageService
	sessions       services.SessionStore
	log            *zap.Logger
}

func NewAnalyzeHandler(
	analyzer services.AnalyzerService,
	storageService services.StorageService,
	sessions services.SessionStore,
	log *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       analyzer,
		storageService: storageService,
		sessions:       sessions,
		log:            logger.OrNop(log),
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequestError("invalid request payload")
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	file, err := c.FormFile("resume")
	if err != nil {
		return apperrors.NewInvalidRequestError("resume file is required")
	}

	doc, err := h.storageService.ReadUpload(file)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	report, err := h.analyzer.AnalyzeResume(ctx, services.AnalysisInput{
		Document:       doc,
		Role:           req.Role,
		GitHubUsername: req.GitHubUsername,
	})
	if err != nil {
		return err
	}

	sid := sessionID(c)
	if err := h.sessions.PutReport(ctx, sid, report); err != nil {
		h.log.Warn("Failed to keep report for session",
			zap.String("session_id", sid), zap.Error(err))
	}

	resp := models.AnalyzeResponse{SessionID: sid, Report: report}
	if req.Save {
		record, saved, err := h.analyzer.RecordSnapshot(ctx, sid, report, req.GitHubUsername)
		if err != nil {
			// The report is still returned; the client can retry through POST /history.
			h.log.Warn("Analysis not saved to history",
				zap.String("session_id", sid), zap.Error(err))
			resp.Warning = "not saved: " + err.Error()
		} else {
			resp.Saved = saved
			resp.Record = record
		}
	}

	return c.JSON(resp)
}

// HandleRoles handles GET /roles
func (h *AnalyzeHandler) HandleRoles(c *fiber.Ctx) error {
	roles := h.analyzer.Roles()
	return c.JSON(fiber.Map{
		"roles":    services.RoleNames(roles),
		"keywords": roles,
	})
}

// HandleReport handles GET /report
func (h *AnalyzeHandler) HandleReport(c *fiber.Ctx) error {
	report, err := h.sessions.GetReport(c.UserContext(), sessionID(c))
	if errors.Is(err, services.ErrReportNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no analysis in this session yet")
	}
	if err != nil {
		return err
	}

	c.Attachment("resume-report-" + report.ID + ".json")
	return c.JSON(report)
}

// HandleSession handles GET /session
func (h *AnalyzeHandler) HandleSession(c *fiber.Ctx) error {
	sess, err := h.sessions.Describe(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(sess)
}
