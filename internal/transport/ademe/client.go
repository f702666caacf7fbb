// Package ademe is the client of the ADEME data-fair dataset API.
package ademe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/search/request"
	"github.com/kailas-cloud/dpex/internal/metrics"
)

// Defaults for the public ADEME endpoint.
const (
	DefaultBaseURL = "https://data.ademe.fr"
	DefaultDataset = "dpe03existant"
	DefaultTimeout = 15 * time.Second
)

const maxErrorBody = 512

// Config holds the dataset API settings.
type Config struct {
	BaseURL    string
	Dataset    string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client queries the lines endpoint of one dataset.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	base      string
	dataset   string
	userAgent string
	limiter   *rate.Limiter
	group     singleflight.Group
	logger    *zap.Logger
}

// NewClient creates a dataset API client. Zero values fall back to the
// public endpoint defaults; a non-positive rate disables limiting.
func NewClient(cfg *Config) *Client {
	c := &Client{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		dataset:   cfg.Dataset,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.dataset == "" {
		c.dataset = DefaultDataset
	}
	c.timeout = cfg.Timeout
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	limit, burst := rate.Inf, cfg.Burst
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)

	return c
}

// Dataset returns the dataset identifier.
func (c *Client) Dataset() string { return c.dataset }

// URL renders the full GET URL of a request.
func (c *Client) URL(req request.Request) string {
	v := url.Values{}
	v.Set("size", strconv.Itoa(req.Size()))
	v.Set("sort", req.Sort())
	if q := req.Query(); q != "" {
		v.Set("qs", q)
	}
	return c.linesURL() + "?" + v.Encode()
}

func (c *Client) linesURL() string {
	return fmt.Sprintf("%s/data-fair/api/v1/datasets/%s/lines", c.base, url.PathEscape(c.dataset))
}

// Search fetches one page of records. Identical concurrent requests share a
// single upstream call. A response without a usable results array is an
// empty page, not an error.
func (c *Client) Search(ctx context.Context, req request.Request) ([]dpe.Record, error) {
	u := c.URL(req)

	ch := c.group.DoChan(u, func() (any, error) {
		// Coalesced callers must not be cancelled by the first one leaving.
		return c.fetch(context.WithoutCancel(ctx), u)
	})

	select {
	case <-ctx.Done():
		return nil, domain.NewUpstreamError(0, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("shared in-flight dataset request", zap.String("url", u))
		}
		return res.Val.([]dpe.Record), nil
	}
}

func (c *Client) fetch(ctx context.Context, u string) ([]dpe.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(c.dataset, "rate_limited").Inc()
		return nil, domain.NewUpstreamError(0, fmt.Errorf("rate limit: %w", err))
	}

	body, status, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	records, ok := decodeLines(body)
	if !ok {
		metrics.UpstreamErrorsTotal.WithLabelValues(c.dataset, "malformed_response").Inc()
		c.logger.Warn("dataset API returned no usable results array",
			zap.String("url", u),
			zap.Int("status", status),
		)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	metrics.UpstreamRequestDuration.WithLabelValues(c.dataset).Observe(duration.Seconds())

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(c.dataset, "error").Inc()
		metrics.UpstreamErrorsTotal.WithLabelValues(c.dataset, errorType(err)).Inc()
		c.logger.Warn("dataset API request failed", zap.String("url", u), zap.Error(err))
		return nil, 0, domain.NewUpstreamError(0, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(c.dataset, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.UpstreamErrorsTotal.WithLabelValues(c.dataset, "http_status").Inc()
		c.logger.Warn("dataset API returned an error status",
			zap.String("url", u),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", duration),
		)
		return nil, resp.StatusCode, domain.NewUpstreamError(resp.StatusCode,
			fmt.Errorf("dataset API: %s", strings.TrimSpace(string(snippet))))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues(c.dataset, "read_body").Inc()
		return nil, resp.StatusCode, domain.NewUpstreamError(0, fmt.Errorf("read body: %w", err))
	}

	c.logger.Debug("dataset API request completed",
		zap.String("url", u),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)
	return body, resp.StatusCode, nil
}

// Ping checks that the dataset metadata endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/data-fair/api/v1/datasets/%s", c.base, url.PathEscape(c.dataset))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.NewUpstreamError(0, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewUpstreamError(resp.StatusCode, errors.New("dataset metadata unavailable"))
	}
	return nil
}

// decodeLines extracts the results array. The boolean is false when the
// payload had no usable array; the returned slice is never nil.
func decodeLines(body []byte) ([]dpe.Record, bool) {
	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []dpe.Record{}, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(envelope.Results, &items); err != nil || items == nil {
		return []dpe.Record{}, false
	}

	records := make([]dpe.Record, 0, len(items))
	for _, raw := range items {
		var r map[string]any
		if err := json.Unmarshal(raw, &r); err != nil || r == nil {
			continue
		}
		records = append(records, dpe.Record(r))
	}
	return records, true
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network"
	}
}
