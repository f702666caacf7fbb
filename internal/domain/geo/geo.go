// Package geo extracts map coordinates from DPE records and decides how a
// map should frame them.
package geo

import (
	"math"
	"strconv"
	"strings"

	olc "github.com/google/open-location-code/go"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
)

// Candidate coordinate field names, tried in order. The dataset has used
// several spellings across versions.
var (
	LatitudeFields  = []string{"coordonnee_cartographique_y_ban", "y_ban", "y"}
	LongitudeFields = []string{"coordonnee_cartographique_x_ban", "x_ban", "x"}
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Extract returns the record position. The first present field of each alias
// list wins even if it does not parse; both axes must parse to finite numbers.
func Extract(r dpe.Record) (Point, bool) {
	lat, ok := axis(r, LatitudeFields)
	if !ok {
		return Point{}, false
	}
	lon, ok := axis(r, LongitudeFields)
	if !ok {
		return Point{}, false
	}
	return Point{Lat: lat, Lon: lon}, true
}

func axis(r dpe.Record, fields []string) (float64, bool) {
	for _, f := range fields {
		if !r.Has(f) {
			continue
		}
		return parseFinite(r[f])
	}
	return 0, false
}

func parseFinite(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		var err error
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Marker is one plottable record.
type Marker struct {
	ID       string            `json:"id"`
	Point    Point             `json:"point"`
	PlusCode string            `json:"plus_code,omitempty"`
	Fields   map[string]string `json:"fields"`
}

// PlusCodeLength is the Open Location Code precision of markers, about 14m.
const PlusCodeLength = 10

// PlusCode encodes p as an Open Location Code. Points outside WGS84 degree
// ranges get no code.
func PlusCode(p Point) string {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ""
	}
	return olc.Encode(p.Lat, p.Lon, PlusCodeLength)
}

// PopupFields are copied from a record into its marker.
var PopupFields = []string{
	dpe.FieldAddress,
	dpe.FieldLabel,
	dpe.FieldGHGLabel,
	dpe.FieldDate,
	dpe.FieldSurface,
	dpe.FieldBuildingType,
	dpe.FieldConstructionYear,
	dpe.FieldConstructionEra,
}

// Markers returns a marker for every record with a usable position, in record order.
func Markers(records []dpe.Record) []Marker {
	out := make([]Marker, 0, len(records))
	for _, r := range records {
		p, ok := Extract(r)
		if !ok {
			continue
		}
		fields := make(map[string]string, len(PopupFields))
		for _, f := range PopupFields {
			if v := r.String(f); v != "" {
				fields[f] = v
			}
		}
		out = append(out, Marker{ID: r.ID(), Point: p, PlusCode: PlusCode(p), Fields: fields})
	}
	return out
}

// Points returns the marker positions.
func Points(markers []Marker) []Point {
	out := make([]Point, len(markers))
	for i, m := range markers {
		out[i] = m.Point
	}
	return out
}
