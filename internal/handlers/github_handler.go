package handlers

import (
	"github.com/gofiber/fiber/v2"

	"resume-analyzer/internal/services"
)

type GitHubHandler struct {
	github services.GitHubAnalyzer
}

func NewGitHubHandler(github services.GitHubAnalyzer) *GitHubHandler {
	return &GitHubHandler{github: github}
}

// HandleProfile handles GET /github/:username
func (h *GitHubHandler) HandleProfile(c *fiber.Ctx) error {
	stats, err := h.github.AnalyzeProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
