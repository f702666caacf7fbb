package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"pads", "ab", 4, "ab  "},
		{"exact", "abcd", 4, "abcd"},
		{"truncates", "Saint-Étienne", 6, "Saint…"},
		{"newline", "a\nb", 3, "a b"},
		{"empty", "", 2, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cell(tt.in, tt.width)
			if got != tt.want {
				t.Errorf("cell(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
			if w := runewidth.StringWidth(got); w != tt.width {
				t.Errorf("display width = %d, want %d", w, tt.width)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	records := []dpe.Record{
		{
			dpe.FieldID:           "2369E0000001X",
			dpe.FieldDate:         "2024-03-01",
			dpe.FieldLabel:        "f",
			dpe.FieldBuildingType: "Maison",
			dpe.FieldSurface:      72.5,
			dpe.FieldCommune:      "Lyon",
			dpe.FieldAddress:      "1 Rue de la République 69001 Lyon",
		},
		{dpe.FieldID: "2369E0000002Y"},
	}

	var buf bytes.Buffer
	renderTable(&buf, records, 0)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "DPE") || !strings.HasSuffix(lines[0], "ADDRESS") {
		t.Errorf("unexpected header %q", lines[0])
	}
	for _, want := range []string{"2369E0000001X", "2024-03-01", " F ", "maison", "72.5", "Lyon", "République"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
	if strings.HasSuffix(lines[2], " ") {
		t.Errorf("row has trailing spaces: %q", lines[2])
	}
}

func TestRenderTable_NarrowWidthTruncatesAddress(t *testing.T) {
	records := []dpe.Record{{dpe.FieldAddress: strings.Repeat("x", 50)}}

	var buf bytes.Buffer
	renderTable(&buf, records, 1)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.HasSuffix(lines[1], "xxxxxxxxx…") {
		t.Errorf("address not truncated to minimum width: %q", lines[1])
	}
}
