package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
	"github.com/kailas-cloud/dpex/internal/domain/search/query"
	"github.com/kailas-cloud/dpex/internal/domain/search/request"
	"github.com/kailas-cloud/dpex/internal/domain/search/result"
	"github.com/kailas-cloud/dpex/internal/metrics"
)

// Outcome is the result of one search round-trip.
type Outcome struct {
	Query   string
	URL     string
	Raw     int
	Records []dpe.Record
}

// Service runs the stateless pipeline: build query, call the dataset API,
// re-filter the response.
type Service struct {
	remote Searcher
	quota  QuotaChecker
	logger *zap.Logger
}

// New creates a search service.
func New(remote Searcher) *Service {
	return &Service{remote: remote, logger: zap.NewNop()}
}

// WithQuota attaches an upstream request budget.
func (s *Service) WithQuota(q QuotaChecker) *Service {
	s.quota = q
	return s
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Describe returns the query string and raw API URL a filter state maps to,
// without calling the API.
func (s *Service) Describe(f filter.State) (string, string) {
	q := query.Build(f)
	req, err := request.New(q)
	if err != nil {
		return q, ""
	}
	return q, s.url(req)
}

// Search executes one bounded search. Transport and quota errors are returned
// as is; a malformed response is an empty result, not an error.
func (s *Service) Search(ctx context.Context, f filter.State) (Outcome, error) {
	q := query.Build(f)
	req, err := request.New(q)
	if err != nil {
		return Outcome{Query: q}, fmt.Errorf("build request: %w", err)
	}
	out := Outcome{Query: q, URL: s.url(req)}

	if s.quota != nil {
		if err := s.quota.Check(ctx); err != nil {
			return out, fmt.Errorf("check quota: %w", err)
		}
	}

	raw, err := s.remote.Search(ctx, req)
	if s.quota != nil {
		s.quota.Record(1)
	}
	if err != nil {
		return out, fmt.Errorf("search dataset: %w", err)
	}

	out.Raw = len(raw)
	out.Records = result.Normalize(raw, f)

	metrics.RecordsTotal.WithLabelValues("raw").Add(float64(out.Raw))
	metrics.RecordsTotal.WithLabelValues("kept").Add(float64(len(out.Records)))
	s.logger.Debug("search completed",
		zap.String("query", q),
		zap.Int("raw", out.Raw),
		zap.Int("kept", len(out.Records)),
	)

	return out, nil
}

func (s *Service) url(req request.Request) string {
	if b, ok := s.remote.(URLBuilder); ok {
		return b.URL(req)
	}
	return ""
}

// Lookup fetches one diagnosis by its number.
func (s *Service) Lookup(ctx context.Context, id string) (dpe.Record, error) {
	id = strings.TrimSpace(id)
	if !validID(id) {
		return nil, fmt.Errorf("diagnosis number %q: %w", id, domain.ErrInvalidQuery)
	}
	req, err := request.New(query.NewBuilder().Field(dpe.FieldID, id).String())
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if s.quota != nil {
		if err := s.quota.Check(ctx); err != nil {
			return nil, fmt.Errorf("check quota: %w", err)
		}
	}
	raw, err := s.remote.Search(ctx, req)
	if s.quota != nil {
		s.quota.Record(1)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}

	for _, r := range raw {
		if r != nil && r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("diagnosis %s: %w", id, domain.ErrNotFound)
}

// validID accepts the dataset's alphanumeric diagnosis numbers only, so the
// value can be embedded in a query without escaping.
func validID(id string) bool {
	if id == "" || len(id) > 32 {
		return false
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
