package geo

// ViewKind tells the map how to frame the markers.
type ViewKind string

const (
	// ViewDefault shows the configured wide view.
	ViewDefault ViewKind = "default"
	// ViewPoint centers on a single marker.
	ViewPoint ViewKind = "point"
	// ViewBounds fits all markers.
	ViewBounds ViewKind = "bounds"
)

// ViewConfig holds the fixed framing parameters.
type ViewConfig struct {
	DefaultCenter Point
	DefaultZoom   int
	PointZoom     int
	PaddingPx     int
}

// DefaultViewConfig frames metropolitan France.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		DefaultCenter: Point{Lat: 46.6, Lon: 2.4},
		DefaultZoom:   6,
		PointZoom:     16,
		PaddingPx:     40,
	}
}

// Bounds is the smallest box containing a set of points.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Contains reports whether p lies inside the box (edges included).
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lon >= b.West && p.Lon <= b.East
}

// View is what the map collaborator applies after rendering markers.
type View struct {
	Kind    ViewKind `json:"kind"`
	Center  *Point   `json:"center,omitempty"`
	Zoom    int      `json:"zoom,omitempty"`
	Bounds  *Bounds  `json:"bounds,omitempty"`
	Padding int      `json:"padding,omitempty"`
}

// FitView chooses the framing: default view for no points, a close zoom on a
// single point, enclosing bounds with padding otherwise.
func FitView(points []Point, cfg ViewConfig) View {
	switch len(points) {
	case 0:
		c := cfg.DefaultCenter
		return View{Kind: ViewDefault, Center: &c, Zoom: cfg.DefaultZoom}
	case 1:
		c := points[0]
		return View{Kind: ViewPoint, Center: &c, Zoom: cfg.PointZoom}
	}
	b := EnclosingBounds(points)
	return View{Kind: ViewBounds, Bounds: &b, Padding: cfg.PaddingPx}
}

// EnclosingBounds returns the minimal box around points. It panics on an empty slice.
func EnclosingBounds(points []Point) Bounds {
	b := Bounds{South: points[0].Lat, North: points[0].Lat, West: points[0].Lon, East: points[0].Lon}
	for _, p := range points[1:] {
		b.South = min(b.South, p.Lat)
		b.North = max(b.North, p.Lat)
		b.West = min(b.West, p.Lon)
		b.East = max(b.East, p.Lon)
	}
	return b
}
