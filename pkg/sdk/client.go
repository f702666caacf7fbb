package dpex

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/db"
	dbRedis "github.com/kailas-cloud/dpex/internal/db/redis"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
	quotarepo "github.com/kailas-cloud/dpex/internal/repository/quota"
	"github.com/kailas-cloud/dpex/internal/transport/ademe"
	healthuc "github.com/kailas-cloud/dpex/internal/usecase/health"
	quotauc "github.com/kailas-cloud/dpex/internal/usecase/quota"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	dailyKeyTTL             = 48 * time.Hour
	monthlyKeyTTL           = 62 * 24 * time.Hour
)

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, f filter.State) (searchuc.Outcome, error)
	Lookup(ctx context.Context, id string) (Record, error)
	Describe(f filter.State) (string, string)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the dpex SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	core      *searchuc.Service
	searchSvc searchUseCase
	healthSvc healthUseCase
	quota     *quotauc.Tracker
	logger    *zap.Logger
	obs       *observer
}

// New creates a Client. When WithRedis is given, the provided context bounds
// the initial readiness check and quota counters are loaded from Redis.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.baseURL != "" {
		u, err := url.Parse(cfg.baseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("dpex: invalid base URL %q", cfg.baseURL)
		}
	}
	if cfg.dailyLimit < 0 || cfg.monthlyLimit < 0 {
		return nil, errors.New("dpex: quota limits must not be negative")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var store db.Store
	if len(cfg.redisAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("dpex: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("dpex: database not ready: %w", err)
		}
		store = s
	}

	return wireClient(ctx, cfg, store, logger, obs), nil
}

func wireClient(ctx context.Context, cfg *clientConfig, store db.Store, logger *zap.Logger, obs *observer) *Client {
	remote := ademe.NewClient(&ademe.Config{
		BaseURL:    cfg.baseURL,
		Dataset:    cfg.dataset,
		Timeout:    cfg.timeout,
		RatePerSec: cfg.ratePerSec,
		Burst:      cfg.burst,
		UserAgent:  cfg.userAgent,
		HTTPClient: cfg.httpClient,
		Logger:     logger,
	})

	action := quotauc.ActionWarn
	if cfg.rejectQuota {
		action = quotauc.ActionReject
	}
	tracker := quotauc.NewTracker(remote.Dataset(), cfg.dailyLimit, cfg.monthlyLimit, action, logger)

	var dbPinger healthuc.Pinger
	if store != nil {
		tracker = tracker.WithStore(ctx, quotarepo.New(store, dailyKeyTTL, monthlyKeyTTL))
		dbPinger = store
	}

	core := searchuc.New(remote).WithQuota(tracker).WithLogger(logger)

	return &Client{
		store:     store,
		core:      core,
		searchSvc: core,
		healthSvc: healthuc.New(remote, dbPinger),
		quota:     tracker,
		logger:    logger,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Search runs one bounded search. The filter is used as is; call Sanitize
// first to drop malformed user input instead of failing.
func (c *Client) Search(ctx context.Context, f Filter) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	out, err := c.searchSvc.Search(ctx, f)
	if err != nil {
		return Result{Query: out.Query, URL: out.URL}, err
	}
	return Result{Records: out.Records, Raw: out.Raw, Query: out.Query, URL: out.URL}, nil
}

// Lookup fetches one diagnosis by its DPE number.
func (c *Client) Lookup(ctx context.Context, id string) (rec Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("lookup", start, err) }()

	return c.searchSvc.Lookup(ctx, id)
}

// Query returns the dataset query and API URL a search would use, without
// calling the API. apiURL is empty when the query is too long to send.
func (c *Client) Query(f Filter) (query, apiURL string) {
	return c.searchSvc.Describe(f)
}

// NewSession creates a session for one interactive user.
func (c *Client) NewSession() *Session {
	return searchuc.NewSession(c.core, c.logger)
}

// QuotaRemaining returns the calls left today and this month (-1 = unlimited).
func (c *Client) QuotaRemaining() (daily, monthly int64) {
	return c.quota.Remaining(quotauc.Daily), c.quota.Remaining(quotauc.Monthly)
}
