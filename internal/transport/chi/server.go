package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dpex/internal/domain"
	"github.com/kailas-cloud/dpex/internal/domain/geo"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
	"github.com/kailas-cloud/dpex/internal/logger"
	healthuc "github.com/kailas-cloud/dpex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

// statusClientClosedRequest is logged when the caller went away mid-search.
const statusClientClosedRequest = 499

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	view          geo.ViewConfig
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	view geo.ViewConfig,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search: search,
		health: health,
		view:   view,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests, ErrorResponseCodeQuotaExceeded),
		sentinelHandler(context.Canceled, statusClientClosedRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorResponseCodeUpstreamTimeout),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, ErrorResponseCodeUpstreamError),
	}
	return s
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request, params FilterParams) {
	st := s.execute(r, params)
	if st.Cause != nil {
		s.handleSearchError(w, st)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Records: st.Records,
		Count:   len(st.Records),
		Loading: st.Loading,
		Query:   st.Query,
		URL:     st.URL,
	})
}

// Markers handles GET /api/v1/markers.
func (s *Server) Markers(w http.ResponseWriter, r *http.Request, params FilterParams) {
	st := s.execute(r, params)
	if st.Cause != nil {
		s.handleSearchError(w, st)
		return
	}

	markers := geo.Markers(st.Records)
	writeJSON(w, http.StatusOK, MarkersResponse{
		Markers: markers,
		View:    geo.FitView(geo.Points(markers), s.view),
		Count:   len(st.Records),
		Plotted: len(markers),
		Query:   st.Query,
		URL:     st.URL,
	})
}

// BuildQuery handles GET /api/v1/query.
func (s *Server) BuildQuery(w http.ResponseWriter, _ *http.Request, params FilterParams) {
	q, url := s.search.Describe(filterFromParams(params))
	writeJSON(w, http.StatusOK, QueryResponse{Query: q, URL: url})
}

// GetRecord handles GET /api/v1/records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.search.Lookup(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err, safeDomainMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// execute runs one request-scoped session so concurrent HTTP clients never
// share published state.
func (s *Server) execute(r *http.Request, params FilterParams) searchuc.State {
	session := searchuc.NewSession(s.search, logger.FromContext(r.Context()))
	return session.Execute(r.Context(), filterFromParams(params))
}

func (s *Server) handleSearchError(w http.ResponseWriter, st searchuc.State) {
	s.handleDomainError(w, st.Cause, st.Err)
}

func filterFromParams(p FilterParams) filter.State {
	f := filter.State{
		PostalCode:    deref(p.PostalCode),
		CommunePrefix: deref(p.Commune),
		SurfaceMin:    deref(p.SurfaceMin),
		SurfaceMax:    deref(p.SurfaceMax),
		BuildingType:  deref(p.BuildingType),
		StartDate:     deref(p.StartDate),
		EndDate:       deref(p.EndDate),
	}
	if p.Labels != nil {
		f.Labels = *p.Labels
	}
	return f.Sanitize()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// WriteBadRequest renders a parameter binding error.
func WriteBadRequest(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "invalid request"
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		msg = "invalid parameter " + pe.ParamName
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, msg)
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return domain.ErrInvalidQuery.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "diagnosis not found"
	}
	return searchuc.UserMessage(err)
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error, msg string) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
