// Package quota keeps the upstream dataset API within a daily and monthly
// request budget.
package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/metrics"
)

// Action defines behavior once a budget is spent.
type Action string

const (
	// ActionWarn logs and lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrQuotaExceeded.
	ActionReject Action = "reject"
)

// Store persists counters so they survive restarts.
// IncrBy may be called repeatedly for the same key.
type Store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// Period is a budget window.
type Period string

// Budget windows.
const (
	Daily   Period = "daily"
	Monthly Period = "monthly"
)

type window struct {
	period Period
	limit  int64
	used   int64
	start  time.Time
}

func (w *window) roll(now time.Time) {
	if s := w.startOf(now); s.After(w.start) {
		w.used = 0
		w.start = s
	}
}

func (w *window) startOf(t time.Time) time.Time {
	t = t.UTC()
	if w.period == Daily {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (w *window) exceeded() bool {
	return w.limit > 0 && w.used >= w.limit
}

// remaining returns -1 for an unlimited window.
func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

func (w *window) layout() string {
	if w.period == Daily {
		return "2006-01-02"
	}
	return "2006-01"
}

// Tracker counts upstream requests in memory. Check never leaves the process;
// Record writes behind to the store when one is attached.
type Tracker struct {
	mu       sync.Mutex
	upstream string
	action   Action
	day      window
	month    window
	store    Store
	now      func() time.Time
	logger   *zap.Logger
}

// NewTracker creates a tracker. A zero limit means unlimited.
func NewTracker(upstream string, dailyLimit, monthlyLimit int64, action Action, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		upstream: upstream,
		action:   action,
		day:      window{period: Daily, limit: dailyLimit},
		month:    window{period: Monthly, limit: monthlyLimit},
		now:      time.Now,
		logger:   logger,
	}
	now := t.now()
	t.day.start = t.day.startOf(now)
	t.month.start = t.month.startOf(now)
	return t
}

// WithStore attaches a persistence store and loads the current counters.
func (t *Tracker) WithStore(ctx context.Context, store Store) *Tracker {
	t.store = store
	t.load(ctx)
	return t
}

func (t *Tracker) load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for _, w := range []*window{&t.day, &t.month} {
		key := t.key(w, now)
		val, err := t.store.Get(ctx, key)
		if err != nil {
			t.logger.Warn("Failed to load quota counter", zap.String("key", key), zap.Error(err))
			continue
		}
		w.used = val
	}
	t.publish()

	t.logger.Info("Quota loaded from store",
		zap.String("upstream", t.upstream),
		zap.Int64("daily_used", t.day.used),
		zap.Int64("monthly_used", t.month.used),
	)
}

// Key returns the store key of a period's counter at time at.
func (t *Tracker) Key(p Period, at time.Time) string {
	if p == Daily {
		return t.key(&t.day, at)
	}
	return t.key(&t.month, at)
}

func (t *Tracker) key(w *window, at time.Time) string {
	return fmt.Sprintf("%squota:%s:%s:%s", domain.KeyPrefix, t.upstream, w.period, at.UTC().Format(w.layout()))
}

// Check reports whether another upstream request is allowed.
func (t *Tracker) Check(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rollover()
	if !t.day.exceeded() && !t.month.exceeded() {
		return nil
	}
	if t.action == ActionReject {
		return domain.ErrQuotaExceeded
	}

	t.logger.Warn("Upstream quota exceeded",
		zap.String("upstream", t.upstream),
		zap.Int64("daily_used", t.day.used),
		zap.Int64("daily_limit", t.day.limit),
		zap.Int64("monthly_used", t.month.used),
		zap.Int64("monthly_limit", t.month.limit),
	)
	return nil
}

// Record counts requests sent upstream.
func (t *Tracker) Record(requests int64) {
	t.mu.Lock()
	t.rollover()
	t.day.used += requests
	t.month.used += requests
	t.publish()
	now := t.now()
	keys := []string{t.key(&t.day, now), t.key(&t.month, now)}
	store := t.store
	t.mu.Unlock()

	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := store.IncrBy(ctx, key, requests); err != nil {
			t.logger.Warn("Failed to persist quota counter", zap.String("key", key), zap.Error(err))
		}
	}
}

// Remaining returns requests left in a period, or -1 when unlimited.
func (t *Tracker) Remaining(p Period) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	if p == Daily {
		return t.day.remaining()
	}
	return t.month.remaining()
}

// Used returns requests made in a period.
func (t *Tracker) Used(p Period) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	if p == Daily {
		return t.day.used
	}
	return t.month.used
}

// Limit returns the cap of a period; zero means unlimited.
func (t *Tracker) Limit(p Period) int64 {
	if p == Daily {
		return t.day.limit
	}
	return t.month.limit
}

func (t *Tracker) rollover() {
	now := t.now()
	t.day.roll(now)
	t.month.roll(now)
}

func (t *Tracker) publish() {
	metrics.QuotaRequestsRemaining.WithLabelValues(t.upstream, string(Daily)).Set(float64(t.day.remaining()))
	metrics.QuotaRequestsRemaining.WithLabelValues(t.upstream, string(Monthly)).Set(float64(t.month.remaining()))
}
