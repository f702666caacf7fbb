package dpex

import (
	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/geo"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

// Filter is the user-facing search filter. Every field is optional.
type Filter = filter.State

// Record is one dataset line, keyed by dataset field name.
type Record = dpe.Record

// Marker, Point, View and ViewConfig describe map output.
type (
	Marker     = geo.Marker
	Point      = geo.Point
	View       = geo.View
	ViewConfig = geo.ViewConfig
)

// Session tracks the latest search for one user; State is what it publishes.
type (
	Session = searchuc.Session
	State   = searchuc.State
)

// Result is the outcome of one search.
type Result struct {
	Records []Record
	Raw     int    // lines returned by the API before local re-filtering
	Query   string // dataset full-text query
	URL     string // API URL that was called
}

// DefaultViewConfig frames metropolitan France.
func DefaultViewConfig() ViewConfig {
	return geo.DefaultViewConfig()
}

// Markers returns a marker for every record with usable coordinates.
func Markers(records []Record) []Marker {
	return geo.Markers(records)
}

// FitView picks how a map should frame markers.
func FitView(markers []Marker, cfg ViewConfig) View {
	return geo.FitView(geo.Points(markers), cfg)
}

// Sanitize drops malformed filter values instead of rejecting them.
func Sanitize(f Filter) Filter {
	return f.Sanitize()
}
