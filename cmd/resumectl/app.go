package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"resume-analyzer/internal/config"
	"resume-analyzer/internal/logger"
	"resume-analyzer/internal/repositories"
	"resume-analyzer/internal/services"
)

// app holds the dependencies shared by subcommands. The CLI has no client
// session, so saves are never deduplicated here.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	history  repositories.HistoryRepository
	github   services.GitHubAnalyzer
	analyzer services.AnalyzerService
}

func newApp() (*app, error) {
	cfg := config.Load()
	log := logger.New(logLevel, "console")

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	storage := services.NewStorageService(
		cfg.Data.Dir,
		cfg.Data.JobRolesFile,
		cfg.Data.FeedbackTemplatesFile,
		cfg.Storage.MaxFileSize,
		log,
	)
	history := repositories.NewHistoryRepository(db)
	github := services.NewGitHubAnalyzer(cfg.GitHub, log)

	analyzer := services.NewAnalyzerService(
		services.NewTextExtractor(log),
		storage.LoadJobRoles(),
		services.NewFeedbackGenerator(storage.LoadFeedbackTemplates()),
		github,
		nil,
		history,
		nil,
		log,
	)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		history:  history,
		github:   github,
		analyzer: analyzer,
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
