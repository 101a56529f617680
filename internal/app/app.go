// Package app assembles the shared infrastructure used by the server and worker binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/cache"
	"github.com/unclebandit/advocacy-backend/internal/config"
	"github.com/unclebandit/advocacy-backend/internal/db"
	"github.com/unclebandit/advocacy-backend/internal/events"
	"github.com/unclebandit/advocacy-backend/internal/queue"
	"github.com/unclebandit/advocacy-backend/internal/repository"
	"github.com/unclebandit/advocacy-backend/internal/service"
)

type App struct {
	Config config.Config
	Logger *zap.Logger

	DB     *sql.DB
	Cache  cache.SnapshotCache
	Events events.Publisher

	Campaigns *repository.CampaignRepository
	Actions   *repository.ActionRepository

	closers []func() error
}

// Build connects to Postgres (running migrations), and to Redis and Kafka when configured.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	conn, err := db.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	a.DB = conn
	a.closers = append(a.closers, conn.Close)

	if err := db.Migrate(ctx, conn); err != nil {
		a.Close()
		return nil, err
	}
	a.Campaigns = &repository.CampaignRepository{DB: conn}
	a.Actions = &repository.ActionRepository{DB: conn}

	a.Cache = cache.NoopCache{}
	if cfg.RedisURL != "" {
		var client *redis.Client
		client, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, demographics will not be cached", zap.Error(err))
		} else {
			a.Cache = cache.NewRedisSnapshotCache(client, cfg.DemographicsCacheTTL)
			a.closers = append(a.closers, client.Close)
		}
	}

	a.Events = events.NewLoggingPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicCampaigns)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("kafka publisher: %w", err)
		}
		a.Events = kp
		a.closers = append(a.closers, kp.Close)
	}

	return a, nil
}

// CampaignService wires the read and write paths over q.
func (a *App) CampaignService(q queue.Queue) (*service.CampaignService, error) {
	seeds, err := service.DefaultSeeds()
	if err != nil {
		return nil, err
	}
	return &service.CampaignService{
		CampaignRepo: a.Campaigns,
		Queue:        q,
		Events:       a.Events,
		Cache:        a.Cache,
		Loader: &service.CampaignLoader{
			Repo:   a.Campaigns,
			Seeds:  seeds,
			Logger: a.Logger,
		},
		Resolver: &service.CrossReferenceResolver{
			Repo:        a.Campaigns,
			Concurrency: a.Config.CrossRefConcurrency,
			Logger:      a.Logger,
		},
		Aggregator: &service.DemographicsAggregator{
			Actions:   a.Actions,
			Cache:     a.Cache,
			MinSample: a.Config.DemographicsMinSample,
			Logger:    a.Logger,
		},
		Logger: a.Logger,
	}, nil
}

func (a *App) ActionWorker() *service.ActionWorker {
	return &service.ActionWorker{
		Actions: a.Actions,
		Cache:   a.Cache,
		Events:  a.Events,
		Logger:  a.Logger,
	}
}

// OnClose registers fn to run on Close, before the connections it may depend on.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
