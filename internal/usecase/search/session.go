package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
	"github.com/kailas-cloud/dpex/internal/metrics"
)

// State is what a Session publishes to the presentation layer.
// Records is shared and must be treated as read-only.
type State struct {
	Records    []dpe.Record
	Loading    bool
	Err        string
	Cause      error
	Query      string
	URL        string
	Generation uint64
}

var errInterrupted = errors.New("search interrupted")

// Session owns the published search state for one user. Every Execute call
// takes a new generation; only the latest generation may publish results or
// clear the loading flag, so a slow response can never overwrite a newer one.
type Session struct {
	svc    *Service
	logger *zap.Logger

	mu       sync.Mutex
	gen      uint64
	state    State
	onChange func(State)
}

// NewSession creates a session on top of a search service.
func NewSession(svc *Service, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{svc: svc, logger: logger, state: State{Records: []dpe.Record{}}}
}

// OnChange registers a listener called after every published change.
// The listener runs on the goroutine that made the change.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// State returns a snapshot of the published state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Execute runs a search for f and returns the published state afterwards.
// If a newer Execute started meanwhile, this call's outcome is dropped and the
// returned state belongs to the newer generation.
func (s *Session) Execute(ctx context.Context, f filter.State) (st State) {
	gen := s.begin(f)

	var (
		records []dpe.Record
		cause   = errInterrupted
	)
	defer func() {
		st = s.finish(gen, records, cause)
	}()

	out, err := s.svc.Search(ctx, f)
	if err != nil {
		s.logger.Warn("search failed",
			zap.Uint64("generation", gen),
			zap.String("query", out.Query),
			zap.Error(err),
		)
		cause = err
		return st
	}

	records, cause = out.Records, nil
	return st
}

func (s *Session) begin(f filter.State) uint64 {
	q, url := s.svc.Describe(f)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.Loading = true
	s.state.Err, s.state.Cause = "", nil
	s.state.Query = q
	s.state.URL = url
	s.state.Generation = gen
	snapshot, listener := s.state, s.onChange
	s.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
	return gen
}

func (s *Session) finish(gen uint64, records []dpe.Record, cause error) State {
	s.mu.Lock()
	if gen != s.gen {
		current := s.state
		s.mu.Unlock()
		metrics.StaleResponsesTotal.Inc()
		s.logger.Debug("dropping stale search response",
			zap.Uint64("generation", gen),
			zap.Uint64("current", current.Generation),
		)
		return current
	}

	if records == nil {
		records = []dpe.Record{}
	}
	s.state.Records = records
	s.state.Cause = cause
	s.state.Err = ""
	if cause != nil {
		s.state.Err = UserMessage(cause)
	}
	s.state.Loading = false
	snapshot, listener := s.state, s.onChange
	s.mu.Unlock()

	if listener != nil {
		listener(snapshot)
	}
	return snapshot
}

// UserMessage turns a search error into a message fit for display.
func UserMessage(err error) string {
	var ue *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "The request quota for the DPE dataset API is exhausted, try again later."
	case errors.Is(err, context.Canceled):
		return "Search cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The DPE dataset API did not answer in time."
	case errors.As(err, &ue) && ue.Status != 0:
		return fmt.Sprintf("The DPE dataset API returned an error (HTTP %d).", ue.Status)
	case errors.Is(err, domain.ErrUpstream):
		return "The DPE dataset API could not be reached."
	case errors.Is(err, errInterrupted):
		return "The search was interrupted."
	default:
		return "Search failed."
	}
}
