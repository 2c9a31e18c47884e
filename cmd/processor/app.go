package main

import (
	"context"
	"fmt"

	"github.com/avery/session-insights/internal/config"
	"github.com/avery/session-insights/internal/db"
	"github.com/avery/session-insights/internal/insights"
	"github.com/avery/session-insights/internal/logger"
	"github.com/avery/session-insights/internal/media"
	"github.com/avery/session-insights/internal/notify"
	"github.com/avery/session-insights/internal/pipeline"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/transcribe"
)

// app holds the fully wired service. Both serve and work build the same
// graph so either can run alone or side by side against the same database.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *db.DB
	queue    *queue.Store
	pipeline *pipeline.Pipeline
	analyzer *insights.GeminiAnalyzer
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	store := queue.NewStore(database.Pool())
	store.SetVisibilityTimeout(cfg.VisibilityTimeout)

	var blobs media.BlobStore
	if cfg.S3Bucket != "" {
		s3Store, err := media.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create S3 store: %w", err)
		}
		blobs = s3Store
	}

	analyzer, err := insights.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	transcriber := transcribe.NewClient(cfg.TranscribeURL, cfg.TranscribeAPIKey)
	notifier := notify.New(database, cfg.DashboardCallbackURL, log)

	p := pipeline.New(database, store, media.NewResolver(blobs), transcriber, analyzer, notifier, log)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       database,
		queue:    store,
		pipeline: p,
		analyzer: analyzer,
	}, nil
}

func (a *app) close() {
	if err := a.analyzer.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close analyzer client")
	}
	a.db.Close()
}
