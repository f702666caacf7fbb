// Package filter holds the user-facing DPE filter state.
package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// ValidLabels lists the DPE energy labels in order.
var ValidLabels = []string{"A", "B", "C", "D", "E", "F", "G"}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// State is an immutable snapshot of the filters chosen by a user.
// Every field is optional; the zero value means "no restriction".
type State struct {
	PostalCode    string
	CommunePrefix string
	SurfaceMin    string
	SurfaceMax    string
	Labels        []string
	BuildingType  string
	StartDate     string
	EndDate       string
}

// IsEmpty reports whether no dimension restricts the search.
func (s State) IsEmpty() bool {
	return strings.TrimSpace(s.PostalCode) == "" &&
		strings.TrimSpace(s.CommunePrefix) == "" &&
		strings.TrimSpace(s.SurfaceMin) == "" &&
		strings.TrimSpace(s.SurfaceMax) == "" &&
		len(s.NormalizedLabels()) == 0 &&
		strings.TrimSpace(s.BuildingType) == "" &&
		strings.TrimSpace(s.StartDate) == "" && strings.TrimSpace(s.EndDate) == ""
}

// NormalizedLabels returns the labels uppercased, trimmed and deduplicated,
// in input order. Empty entries are dropped.
func (s State) NormalizedLabels() []string {
	if len(s.Labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.Labels))
	seen := make(map[string]struct{}, len(s.Labels))
	for _, l := range s.Labels {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// NormalizedBuildingType returns the building type trimmed and lowercased.
func (s State) NormalizedBuildingType() string {
	return strings.ToLower(strings.TrimSpace(s.BuildingType))
}

// MatchesDatePattern reports whether v has the YYYY-MM-DD shape.
// It does not check that the date exists in the calendar.
func MatchesDatePattern(v string) bool {
	return datePattern.MatchString(v)
}

// ParseDate parses a YYYY-MM-DD calendar date (UTC). Surrounding whitespace
// is ignored, as the query builder does.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if !MatchesDatePattern(v) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateRange returns the parsed inclusive date bounds. A bound that is absent
// or not a valid calendar date is returned as nil.
func (s State) DateRange() (start, end *time.Time) {
	if t, ok := ParseDate(s.StartDate); ok {
		start = &t
	}
	if t, ok := ParseDate(s.EndDate); ok {
		end = &t
	}
	return start, end
}

// Sanitize returns a copy where malformed values are dropped instead of rejected:
// non-numeric or negative surfaces, labels outside A-G, unknown building types
// and dates that are not YYYY-MM-DD. Used at the HTTP and CLI boundaries so a
// search is never blocked by bad input.
func (s State) Sanitize() State {
	out := State{
		PostalCode:    strings.TrimSpace(s.PostalCode),
		CommunePrefix: strings.TrimSpace(s.CommunePrefix),
		SurfaceMin:    sanitizeSurface(s.SurfaceMin),
		SurfaceMax:    sanitizeSurface(s.SurfaceMax),
		BuildingType:  sanitizeBuildingType(s.BuildingType),
		StartDate:     sanitizeDate(s.StartDate),
		EndDate:       sanitizeDate(s.EndDate),
	}
	for _, l := range s.NormalizedLabels() {
		if isValidLabel(l) {
			out.Labels = append(out.Labels, l)
		}
	}
	return out
}

func sanitizeSurface(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return v
}

func sanitizeBuildingType(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case dpe.BuildingHouse, dpe.BuildingApartment:
		return v
	default:
		return ""
	}
}

func sanitizeDate(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := ParseDate(v); !ok {
		return ""
	}
	return v
}

func isValidLabel(l string) bool {
	for _, v := range ValidLabels {
		if l == v {
			return true
		}
	}
	return false
}
