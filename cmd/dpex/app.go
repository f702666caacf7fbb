package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/config"
	"github.com/kailas-cloud/dpex/internal/db"
	dbRedis "github.com/kailas-cloud/dpex/internal/db/redis"
	"github.com/kailas-cloud/dpex/internal/domain/geo"
	logpkg "github.com/kailas-cloud/dpex/internal/logger"
	"github.com/kailas-cloud/dpex/internal/metrics"
	quotarepo "github.com/kailas-cloud/dpex/internal/repository/quota"
	"github.com/kailas-cloud/dpex/internal/transport/ademe"
	healthuc "github.com/kailas-cloud/dpex/internal/usecase/health"
	quotauc "github.com/kailas-cloud/dpex/internal/usecase/quota"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

const (
	quotaUpstream = "ademe"
	dailyKeyTTL   = 48 * time.Hour
	monthlyKeyTTL = 62 * 24 * time.Hour
)

// app is the composition root shared by all commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	client *ademe.Client
	store  db.Store
	quota  *quotauc.Tracker
	search *searchuc.Service
	health *healthuc.Service
}

// loadApp reads the configuration and builds a logger for loggerEnv.
func loadApp(ctx context.Context, opts *rootOptions, loggerEnv string) (*app, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if loggerEnv == "cli" {
		level = ""
	}
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logpkg.NewLogger(loggerEnv, level)
	if err != nil {
		return nil, err
	}

	return newApp(ctx, cfg, logger)
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterSearchMetrics()

	a := &app{cfg: cfg, logger: logger}

	a.client = ademe.NewClient(&ademe.Config{
		BaseURL:    cfg.Upstream.BaseURL,
		Dataset:    cfg.Upstream.Dataset,
		Timeout:    time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
		RatePerSec: cfg.Upstream.RatePerSec,
		Burst:      cfg.Upstream.Burst,
		UserAgent:  cfg.Upstream.UserAgent,
		Logger:     logger,
	})

	a.quota = quotauc.NewTracker(quotaUpstream,
		cfg.Quota.DailyRequestLimit, cfg.Quota.MonthlyRequestLimit,
		quotauc.Action(cfg.Quota.Action), logger)

	if cfg.Database.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create database store: %w", err)
		}
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
		a.store = store
		a.quota.WithStore(ctx, quotarepo.New(store, dailyKeyTTL, monthlyKeyTTL))
	}

	a.search = searchuc.New(a.client).WithQuota(a.quota).WithLogger(logger)

	a.health = healthuc.New(a.client, a.store)

	return a, nil
}

func (a *app) viewConfig() geo.ViewConfig {
	return geo.ViewConfig{
		DefaultCenter: geo.Point{Lat: a.cfg.Map.DefaultLat, Lon: a.cfg.Map.DefaultLon},
		DefaultZoom:   a.cfg.Map.DefaultZoom,
		PointZoom:     a.cfg.Map.PointZoom,
		PaddingPx:     a.cfg.Map.PaddingPx,
	}
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}
