// Package dpex is a Go client for the ADEME energy performance diagnostics
// (DPE) dataset. It builds dataset queries from a structured filter, runs
// bounded searches against the public API, re-filters the returned lines
// locally and turns them into map markers.
//
// # One-shot searches
//
//	client, _ := dpex.New(ctx, dpex.WithRate(5, 2))
//	defer client.Close()
//
//	res, err := client.Search(ctx, dpex.Filter{
//	    PostalCode: "69001",
//	    Labels:     []string{"F", "G"},
//	})
//	markers := dpex.Markers(res.Records)
//	view := dpex.FitView(markers, dpex.DefaultViewConfig())
//
// # Interactive sessions
//
// A Session publishes loading/results/error state for a UI and drops
// responses that were overtaken by a newer search:
//
//	s := client.NewSession()
//	s.OnChange(func(st dpex.State) { render(st) })
//	go s.Execute(ctx, f1)
//	go s.Execute(ctx, f2) // f1's results are never shown once f2 started
//
// # Request quota
//
// WithQuota caps the number of dataset API calls per day and month.
// Counters live in memory unless WithRedis is given, in which case they are
// shared between processes.
package dpex
