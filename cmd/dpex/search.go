package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kailas-cloud/dpex/internal/domain/geo"
	searchuc "github.com/kailas-cloud/dpex/internal/usecase/search"
)

type searchOptions struct {
	format  string
	markers bool
	width   int
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	flags := &filterFlags{}
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the dataset and print the matching diagnoses",
		Example: `  dpex search --postal-code 69001 --labels F,G
  dpex search --commune "Saint Et" --building-type maison --start-date 2024-01-01 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts, "cli")
			if err != nil {
				return err
			}
			defer a.Close()

			session := searchuc.NewSession(a.search, a.logger)
			st := session.Execute(cmd.Context(), flags.state())
			if st.Cause != nil {
				return errors.New(st.Err)
			}

			return printSearch(cmd.OutOrStdout(), st, so, a.viewConfig())
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&so.format, "format", "auto", "output format: auto, table or json")
	cmd.Flags().BoolVar(&so.markers, "markers", false, "print map markers and view instead of records (json)")
	cmd.Flags().IntVar(&so.width, "width", 0, "table width in columns (default: terminal width, or 160)")
	return cmd
}

func printSearch(w io.Writer, st searchuc.State, so *searchOptions, view geo.ViewConfig) error {
	if so.markers {
		markers := geo.Markers(st.Records)
		return writeIndentedJSON(w, map[string]any{
			"markers": markers,
			"view":    geo.FitView(geo.Points(markers), view),
			"query":   st.Query,
		})
	}

	switch resolveFormat(so.format, w) {
	case "json":
		return writeIndentedJSON(w, map[string]any{
			"records": st.Records,
			"count":   len(st.Records),
			"query":   st.Query,
			"url":     st.URL,
		})
	case "table":
		width := so.width
		if width <= 0 {
			width = terminalWidth(w)
		}
		renderTable(w, st.Records, width)
		fmt.Fprintf(w, "\n%d diagnoses  query: %s\n", len(st.Records), orDash(st.Query))
		return nil
	default:
		return fmt.Errorf("unknown format %q", so.format)
	}
}

// resolveFormat picks table output for terminals and JSON for pipes.
func resolveFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "table"
	}
	return "json"
}

// terminalWidth returns the terminal width, or 0 (the table default) when w
// is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
