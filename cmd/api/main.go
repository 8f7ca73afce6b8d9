package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/handlers"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/repositories"
	"resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()
	log.Info("Config loaded", zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	historyRepo := repositories.NewHistoryRepository(db)

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	updated, err := historyRepo.RecalcAllPoints(startupCtx)
	cancel()
	if err != nil {
		log.Fatal("Failed to recalculate history points", zap.Error(err))
	}
	log.Info("History points recalculated", zap.Int64("rows", updated))

	// Initialize services
	storageService := services.NewStorageService(
		cfg.Data.Dir,
		cfg.Data.JobRolesFile,
		cfg.Data.FeedbackTemplatesFile,
		cfg.Storage.MaxFileSize,
		log,
	)
	if err := storageService.EnsureDataDir(); err != nil {
		log.Fatal("Failed to create data directory", zap.Error(err))
	}
	roles := storageService.LoadJobRoles()
	feedback := services.NewFeedbackGenerator(storageService.LoadFeedbackTemplates())
	log.Info("Catalog loaded", zap.Int("roles", len(roles)))

	sessions := newSessionStore(cfg, log)
	github := services.NewGitHubAnalyzer(cfg.GitHub, log)

	var gemini services.GeminiService
	if cfg.Gemini.APIKey != "" {
		gemini, err = services.NewGeminiService(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			log.Warn("AI coaching disabled", zap.Error(err))
			gemini = nil
		}
	}

	analyzer := services.NewAnalyzerService(
		services.NewTextExtractor(log),
		roles,
		feedback,
		github,
		gemini,
		historyRepo,
		sessions,
		log,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, " + handlers.SessionHeader,
		ExposeHeaders: handlers.SessionHeader + ", Content-Disposition",
	}))

	// Routes
	handlers.Register(app.Group("/api/v1"),
		handlers.NewAnalyzeHandler(analyzer, storageService, sessions, log),
		handlers.NewGitHubHandler(github),
		handlers.NewHistoryHandler(historyRepo, analyzer),
	)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"GET /api/v1/roles",
				"POST /api/v1/analyze",
				"GET /api/v1/report",
				"GET /api/v1/github/:username",
				"POST /api/v1/history",
				"GET /api/v1/history/:username",
				"DELETE /api/v1/history/:username",
				"GET /api/v1/leaderboard",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newSessionStore(cfg *config.Config, log *zap.Logger) services.SessionStore {
	if cfg.Redis.Addr == "" {
		log.Info("Using in-memory session store")
		return services.NewMemorySessionStore(cfg.Redis.SessionTTL)
	}

	client := services.NewRedisClient(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, falling back to in-memory sessions",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return services.NewMemorySessionStore(cfg.Redis.SessionTTL)
	}

	log.Info("Using Redis session store", zap.String("addr", cfg.Redis.Addr))
	return services.NewRedisSessionStore(client, cfg.Redis.SessionTTL)
}
