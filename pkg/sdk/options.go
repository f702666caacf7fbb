package dpex

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	dataset    string
	timeout    time.Duration
	ratePerSec float64
	burst      int
	userAgent  string
	httpClient *http.Client

	dailyLimit   int64
	monthlyLimit int64
	rejectQuota  bool

	redisAddrs    []string
	redisPassword string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithBaseURL overrides the dataset API root (default https://data.ademe.fr).
func WithBaseURL(u string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = u
	})
}

// WithDataset selects the dataset identifier (default dpe03existant).
func WithDataset(id string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dataset = id
	})
}

// WithTimeout bounds every dataset API call. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRate limits outgoing calls to perSec requests per second with the given burst.
// Unlimited by default.
func WithRate(perSec float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ratePerSec = perSec
		c.burst = burst
	})
}

// WithUserAgent sets the User-Agent header sent to the dataset API.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithHTTPClient replaces the HTTP client used for dataset calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithQuota caps dataset calls per UTC day and month (0 = unlimited).
// When reject is false, exceeding the cap only logs a warning.
func WithQuota(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = daily
		c.monthlyLimit = monthly
		c.rejectQuota = reject
	})
}

// WithRedis persists quota counters in Redis so several processes share them.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
