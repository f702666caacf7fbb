package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
)

func TestFilterFlags_State(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want filter.State
	}{
		{
			name: "empty",
			want: filter.State{},
		},
		{
			name: "all dimensions",
			args: []string{
				"--postal-code", " 69001 ",
				"--commune", "Saint Et",
				"--surface-min", "20",
				"--surface-max", "120.5",
				"--labels", "f,g",
				"--building-type", "Maison",
				"--start-date", "2024-01-01",
				"--end-date", "2024-12-31",
			},
			want: filter.State{
				PostalCode:    "69001",
				CommunePrefix: "Saint Et",
				SurfaceMin:    "20",
				SurfaceMax:    "120.5",
				Labels:        []string{"F", "G"},
				BuildingType:  "maison",
				StartDate:     "2024-01-01",
				EndDate:       "2024-12-31",
			},
		},
		{
			name: "malformed values dropped",
			args: []string{
				"--surface-min", "abc",
				"--surface-max", "-5",
				"--labels", "A,Z,a",
				"--labels", "B",
				"--building-type", "castle",
				"--start-date", "2024-02-30",
				"--end-date", "01/01/2024",
			},
			want: filter.State{Labels: []string{"A", "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &filterFlags{}
			cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
			flags.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			if diff := cmp.Diff(tt.want, flags.state()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
