package cmd

import (
	"context"
	"fmt"

	"github.com/tieubaoca/pitchdeck-be/config"
	"github.com/tieubaoca/pitchdeck-be/database"
	"github.com/tieubaoca/pitchdeck-be/repository"
	"github.com/tieubaoca/pitchdeck-be/service"
	"github.com/tieubaoca/pitchdeck-be/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds what every command needs: config, logger and the store.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	decks    repository.DeckRepo
	startups repository.StartupRepo
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		decks:    repository.NewDeckRepo(db),
		startups: repository.NewStartupRepo(db),
	}, nil
}

// newPipeline wires the extractor and the configured AI provider into a
// deck pipeline.
func (a *app) newPipeline(ctx context.Context, notifier service.ProgressNotifier) (*service.DeckPipeline, error) {
	ai, err := service.NewAIService(ctx, a.cfg.AI, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI service: %w", err)
	}
	a.logger.Info("analysis provider selected", zap.String("provider", ai.Provider()))

	analyst := service.NewDeckAnalyst(ai, a.cfg.AI.RequestTimeout, a.cfg.AI.MaxInputChars, a.logger.Named("analyst"))
	extractor := service.NewPDFService(service.PDFServiceConfig{
		OCRLanguages: a.cfg.OCRLanguages,
	}, a.logger.Named("extractor"))

	pipeline := service.NewDeckPipeline(a.decks, extractor, analyst, a.cfg.AI.AssessConcurrency, a.logger.Named("pipeline"))
	if notifier != nil {
		pipeline.WithNotifier(notifier)
	}
	return pipeline, nil
}

func (a *app) newScheduler(pipeline service.Processor) *service.Scheduler {
	return service.NewScheduler(a.decks, pipeline, a.cfg.Scheduler.Interval, a.cfg.Scheduler.RunOnStart, a.logger.Named("scheduler"))
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}
