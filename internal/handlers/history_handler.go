package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "resume-analyzer/internal/errors"
	"resume-analyzer/internal/models"
	"resume-analyzer/internal/repositories"
	"resume-analyzer/internal/services"
)

type HistoryHandler struct {
	historyRepo repositories.HistoryRepository
	analyzer    services.AnalyzerService
}

func NewHistoryHandler(historyRepo repositories.HistoryRepository, analyzer services.AnalyzerService) *HistoryHandler {
	return &HistoryHandler{
		historyRepo: historyRepo,
		analyzer:    analyzer,
	}
}

// HandleSave handles POST /history
func (h *HistoryHandler) HandleSave(c *fiber.Ctx) error {
	var req models.SaveHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidRequestError("invalid request payload")
	}
	if strings.TrimSpace(req.Username) == "" {
		return apperrors.NewEmptyUsernameError()
	}
	if err := validateStruct(&req); err != nil {
		return err
	}

	record, saved, err := h.analyzer.SaveEntry(c.UserContext(), sessionID(c), models.HistoryEntry{
		Username:      strings.TrimSpace(req.Username),
		Role:          req.Role,
		ATSScore:      req.ATSScore,
		Repositories:  repositories.CoerceCount(req.Repositories),
		Followers:     repositories.CoerceCount(req.Followers),
		Contributions: repositories.CoerceCount(req.Contributions),
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if saved {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(models.SaveHistoryResponse{Saved: saved, Record: record})
}

// HandleGetHistory handles GET /history/:username
func (h *HistoryHandler) HandleGetHistory(c *fiber.Ctx) error {
	username := c.Params("username")

	records, err := h.historyRepo.GetHistory(c.UserContext(), username)
	if err != nil {
		return err
	}

	return c.JSON(models.HistoryResponse{Username: username, Records: records})
}

// HandleClearHistory handles DELETE /history/:username
func (h *HistoryHandler) HandleClearHistory(c *fiber.Ctx) error {
	username := c.Params("username")

	deleted, err := h.historyRepo.ClearHistory(c.UserContext(), username)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"username": username,
		"deleted":  deleted,
	})
}

// HandleLeaderboard handles GET /leaderboard
func (h *HistoryHandler) HandleLeaderboard(c *fiber.Ctx) error {
	rows, err := h.historyRepo.GetLeaderboard(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(models.LeaderboardResponse{Rows: rows})
}
