package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
)

type filterFlags struct {
	postalCode   string
	commune      string
	surfaceMin   string
	surfaceMax   string
	labels       []string
	buildingType string
	startDate    string
	endDate      string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.postalCode, "postal-code", "", "postal code, e.g. 69001")
	fs.StringVar(&f.commune, "commune", "", "commune name prefix, e.g. \"Saint Et\"")
	fs.StringVar(&f.surfaceMin, "surface-min", "", "minimum habitable surface in m²")
	fs.StringVar(&f.surfaceMax, "surface-max", "", "maximum habitable surface in m²")
	fs.StringSliceVar(&f.labels, "labels", nil, "energy labels A to G, comma separated")
	fs.StringVar(&f.buildingType, "building-type", "", "maison or appartement")
	fs.StringVar(&f.startDate, "start-date", "", "earliest diagnosis date (YYYY-MM-DD)")
	fs.StringVar(&f.endDate, "end-date", "", "latest diagnosis date (YYYY-MM-DD)")
}

// state returns the sanitized filter; malformed values are dropped.
func (f *filterFlags) state() filter.State {
	return filter.State{
		PostalCode:    f.postalCode,
		CommunePrefix: f.commune,
		SurfaceMin:    f.surfaceMin,
		SurfaceMax:    f.surfaceMax,
		Labels:        f.labels,
		BuildingType:  f.buildingType,
		StartDate:     f.startDate,
		EndDate:       f.endDate,
	}.Sanitize()
}
