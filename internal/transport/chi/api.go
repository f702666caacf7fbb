package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/geo"
)

// ErrorResponseCode is the machine-readable error code of an ErrorResponse.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest      ErrorResponseCode = "bad_request"
	ErrorResponseCodeNotFound        ErrorResponseCode = "not_found"
	ErrorResponseCodeQuotaExceeded   ErrorResponseCode = "quota_exceeded"
	ErrorResponseCodeUpstreamError   ErrorResponseCode = "upstream_error"
	ErrorResponseCodeUpstreamTimeout ErrorResponseCode = "upstream_timeout"
	ErrorResponseCodeInternalError   ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// FilterParams are the query parameters shared by the search endpoints.
type FilterParams struct {
	PostalCode   *string   `form:"postal_code,omitempty" json:"postal_code,omitempty"`
	Commune      *string   `form:"commune,omitempty" json:"commune,omitempty"`
	SurfaceMin   *string   `form:"surface_min,omitempty" json:"surface_min,omitempty"`
	SurfaceMax   *string   `form:"surface_max,omitempty" json:"surface_max,omitempty"`
	Labels       *[]string `form:"labels,omitempty" json:"labels,omitempty"`
	BuildingType *string   `form:"building_type,omitempty" json:"building_type,omitempty"`
	StartDate    *string   `form:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate      *string   `form:"end_date,omitempty" json:"end_date,omitempty"`
}

// SearchResponse is the published state of one search.
type SearchResponse struct {
	Records []dpe.Record `json:"records"`
	Count   int          `json:"count"`
	Loading bool         `json:"loading"`
	Error   *string      `json:"error,omitempty"`
	Query   string       `json:"query"`
	URL     string       `json:"url"`
}

// MarkersResponse holds the plottable records and how to frame them.
type MarkersResponse struct {
	Markers []geo.Marker `json:"markers"`
	View    geo.View     `json:"view"`
	Count   int          `json:"count"`
	Plotted int          `json:"plotted"`
	Query   string       `json:"query"`
	URL     string       `json:"url"`
}

// QueryResponse describes a search without running it.
type QueryResponse struct {
	Query string `json:"query"`
	URL   string `json:"url"`
}

// HealthResponse is the aggregated health report.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/v1/search)
	Search(w http.ResponseWriter, r *http.Request, params FilterParams)
	// (GET /api/v1/markers)
	Markers(w http.ResponseWriter, r *http.Request, params FilterParams)
	// (GET /api/v1/query)
	BuildQuery(w http.ResponseWriter, r *http.Request, params FilterParams)
	// (GET /api/v1/records/{id})
	GetRecord(w http.ResponseWriter, r *http.Request, id string)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// InvalidParamFormatError reports a query or path parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ServerInterfaceWrapper binds request parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func bindFilterParams(r *http.Request) (FilterParams, error) {
	var params FilterParams
	q := r.URL.Query()
	targets := []struct {
		name string
		dest any
	}{
		{"postal_code", &params.PostalCode},
		{"commune", &params.Commune},
		{"surface_min", &params.SurfaceMin},
		{"surface_max", &params.SurfaceMax},
		{"labels", &params.Labels},
		{"building_type", &params.BuildingType},
		{"start_date", &params.StartDate},
		{"end_date", &params.EndDate},
	}
	for _, t := range targets {
		if err := runtime.BindQueryParameter("form", false, false, t.name, q, t.dest); err != nil {
			return FilterParams{}, &InvalidParamFormatError{ParamName: t.name, Err: err}
		}
	}
	return params, nil
}

func (siw *ServerInterfaceWrapper) withFilter(call func(http.ResponseWriter, *http.Request, FilterParams)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := bindFilterParams(r)
		if err != nil {
			siw.ErrorHandlerFunc(w, r, err)
			return
		}
		siw.wrap(func(w http.ResponseWriter, r *http.Request) { call(w, r, params) }).ServeHTTP(w, r)
	}
}

// GetRecord binds the {id} path parameter.
func (siw *ServerInterfaceWrapper) GetRecord(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return
	}
	siw.wrap(func(w http.ResponseWriter, r *http.Request) { siw.Handler.GetRecord(w, r, id) }).ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) wrap(h http.HandlerFunc) http.Handler {
	var handler http.Handler = h
	for _, m := range siw.HandlerMiddlewares {
		handler = m(handler)
	}
	return handler
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates an http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions mounts the API on options.BaseRouter, creating one when nil.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/search", wrapper.withFilter(si.Search))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/markers", wrapper.withFilter(si.Markers))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/query", wrapper.withFilter(si.BuildQuery))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/records/{id}", wrapper.GetRecord)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health", wrapper.wrap(si.HealthCheck).ServeHTTP)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.wrap(si.Metrics).ServeHTTP)
	})

	return r
}
