// Package result re-applies the filters the search API only enforces on a
// best-effort basis, so that what is displayed always matches the filter state.
package result

import (
	"strings"
	"time"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
)

// Predicate keeps a record when it returns true.
type Predicate func(dpe.Record) bool

// Normalize drops every record that fails one of the active re-filters:
// date range, label set, building type. Order is preserved and the input
// slice is left untouched. The result is never nil.
func Normalize(records []dpe.Record, f filter.State) []dpe.Record {
	preds := Predicates(f)
	out := make([]dpe.Record, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if keep(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

// Predicates returns the active re-filters for a filter state, in the order
// they are applied.
func Predicates(f filter.State) []Predicate {
	var preds []Predicate
	if start, end := f.DateRange(); start != nil || end != nil {
		preds = append(preds, dateWithin(start, end))
	}
	if labels := f.NormalizedLabels(); len(labels) > 0 {
		preds = append(preds, labelIn(labels))
	}
	if bt := f.NormalizedBuildingType(); bt != "" {
		preds = append(preds, buildingTypeIs(bt))
	}
	return preds
}

func keep(r dpe.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func dateWithin(start, end *time.Time) Predicate {
	return func(r dpe.Record) bool {
		d, ok := RecordDate(r)
		if !ok {
			return false
		}
		if start != nil && d.Before(*start) {
			return false
		}
		if end != nil && d.After(*end) {
			return false
		}
		return true
	}
}

func labelIn(labels []string) Predicate {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return func(r dpe.Record) bool {
		_, ok := set[r.Label()]
		return ok
	}
}

func buildingTypeIs(bt string) Predicate {
	return func(r dpe.Record) bool {
		return r.BuildingType() == bt
	}
}

// RecordDate parses date_etablissement_dpe, truncated to the calendar day.
// The dataset stores plain dates; timestamps are accepted and cut to their date part.
func RecordDate(r dpe.Record) (time.Time, bool) {
	v := strings.TrimSpace(r.String(dpe.FieldDate))
	if len(v) > len(filter.DateLayout) && v[len(filter.DateLayout)] == 'T' {
		v = v[:len(filter.DateLayout)]
	}
	return filter.ParseDate(v)
}
