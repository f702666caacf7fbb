package filter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestState_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"zero value", State{}, true},
		{"whitespace only", State{PostalCode: "  ", CommunePrefix: "\t", SurfaceMin: " "}, true},
		{"blank labels", State{Labels: []string{"", " "}}, true},
		{"postal code", State{PostalCode: "42450"}, false},
		{"labels", State{Labels: []string{"a"}}, false},
		{"start date", State{StartDate: "2023-01-01"}, false},
		{"blank dates", State{StartDate: " ", EndDate: "\t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_NormalizedLabels(t *testing.T) {
	s := State{Labels: []string{"a", " C", "", "A", "g "}}
	want := []string{"A", "C", "G"}
	if diff := cmp.Diff(want, s.NormalizedLabels()); diff != "" {
		t.Errorf("NormalizedLabels() mismatch (-want +got):\n%s", diff)
	}
	if got := (State{}).NormalizedLabels(); got != nil {
		t.Errorf("NormalizedLabels() = %v, want nil", got)
	}
}

func TestState_NormalizedLabels_DoesNotMutate(t *testing.T) {
	labels := []string{"a", "b"}
	s := State{Labels: labels}
	_ = s.NormalizedLabels()
	if labels[0] != "a" || labels[1] != "b" {
		t.Errorf("input labels mutated: %v", labels)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2023-01-01", true},
		{"2024-02-29", true},
		{"2023-02-29", false}, // not a leap year
		{"2023-13-01", false},
		{"2023-1-01", false},
		{"bad-date", false},
		{"", false},
		{"2023-01-01T00:00:00Z", false},
		{" 2023-01-01 ", true},
	}
	for _, tc := range tests {
		_, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}

func TestMatchesDatePattern_ShapeOnly(t *testing.T) {
	if !MatchesDatePattern("2023-13-45") {
		t.Error("pattern check must accept any digit shape")
	}
	if MatchesDatePattern("23-01-01") {
		t.Error("pattern check accepted two-digit year")
	}
}

func TestState_DateRange(t *testing.T) {
	s := State{StartDate: "2023-01-01", EndDate: "bad-date"}
	start, end := s.DateRange()
	if start == nil || !start.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if end != nil {
		t.Errorf("end = %v, want nil for malformed bound", end)
	}
}

func TestState_Sanitize(t *testing.T) {
	in := State{
		PostalCode:    " 42450 ",
		CommunePrefix: " Sury ",
		SurfaceMin:    "abc",
		SurfaceMax:    "120",
		Labels:        []string{"a", "Z", "c", "A++"},
		BuildingType:  "Maison",
		StartDate:     "2023-02-30",
		EndDate:       "2024-12-31",
	}
	want := State{
		PostalCode:    "42450",
		CommunePrefix: "Sury",
		SurfaceMax:    "120",
		Labels:        []string{"A", "C"},
		BuildingType:  "maison",
		EndDate:       "2024-12-31",
	}
	if diff := cmp.Diff(want, in.Sanitize()); diff != "" {
		t.Errorf("Sanitize() mismatch (-want +got):\n%s", diff)
	}
}

func TestState_Sanitize_NegativeSurface(t *testing.T) {
	got := State{SurfaceMin: "-5", SurfaceMax: "0"}.Sanitize()
	if got.SurfaceMin != "" {
		t.Errorf("SurfaceMin = %q, want dropped", got.SurfaceMin)
	}
	if got.SurfaceMax != "0" {
		t.Errorf("SurfaceMax = %q, want 0", got.SurfaceMax)
	}
}

func TestState_Sanitize_UnknownBuildingType(t *testing.T) {
	if got := (State{BuildingType: "immeuble"}).Sanitize(); got.BuildingType != "" {
		t.Errorf("BuildingType = %q, want dropped", got.BuildingType)
	}
}
