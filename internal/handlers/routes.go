package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the API routes on router, normally the /api/v1 group.
func Register(router fiber.Router, analyze *AnalyzeHandler, github *GitHubHandler, history *HistoryHandler) {
	router.Use(Session())

	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.Get("/roles", analyze.HandleRoles)
	router.Post("/analyze", analyze.HandleAnalyze)
	router.Get("/report", analyze.HandleReport)
	router.Get("/session", analyze.HandleSession)

	router.Get("/github/:username", github.HandleProfile)

	router.Post("/history", history.HandleSave)
	router.Get("/history/:username", history.HandleGetHistory)
	router.Delete("/history/:username", history.HandleClearHistory)
	router.Get("/leaderboard", history.HandleLeaderboard)
}
