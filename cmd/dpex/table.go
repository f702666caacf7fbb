package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
)

const defaultTableWidth = 160

type column struct {
	title string
	width int
	value func(dpe.Record) string
}

var tableColumns = []column{
	{"DPE", 13, func(r dpe.Record) string { return r.ID() }},
	{"DATE", 10, func(r dpe.Record) string { return r.String(dpe.FieldDate) }},
	{"LBL", 3, func(r dpe.Record) string { return r.Label() }},
	{"GES", 3, func(r dpe.Record) string { return r.String(dpe.FieldGHGLabel) }},
	{"TYPE", 11, func(r dpe.Record) string { return r.BuildingType() }},
	{"M²", 6, func(r dpe.Record) string { return r.String(dpe.FieldSurface) }},
	{"BUILT", 12, func(r dpe.Record) string { return r.Construction() }},
	{"CP", 5, func(r dpe.Record) string { return r.String(dpe.FieldPostalCode) }},
	{"COMMUNE", 22, func(r dpe.Record) string { return r.String(dpe.FieldCommune) }},
}

// renderTable writes records as fixed-width columns. The last column
// (address) takes whatever width remains.
func renderTable(w io.Writer, records []dpe.Record, width int) {
	if width <= 0 {
		width = defaultTableWidth
	}

	used := 0
	for _, c := range tableColumns {
		used += c.width + 1
	}
	addrWidth := width - used
	if addrWidth < 10 {
		addrWidth = 10
	}

	header := make([]string, 0, len(tableColumns)+1)
	for _, c := range tableColumns {
		header = append(header, cell(c.title, c.width))
	}
	header = append(header, "ADDRESS")
	fmt.Fprintln(w, strings.Join(header, " "))

	for _, r := range records {
		row := make([]string, 0, len(tableColumns)+1)
		for _, c := range tableColumns {
			row = append(row, cell(c.value(r), c.width))
		}
		row = append(row, runewidth.Truncate(r.String(dpe.FieldAddress), addrWidth, "…"))
		fmt.Fprintln(w, strings.TrimRight(strings.Join(row, " "), " "))
	}
}

// cell truncates or pads s to exactly width display columns.
func cell(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
