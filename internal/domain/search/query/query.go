// Package query translates a filter.State into the Lucene-style query string
// understood by the dataset search API (the "qs" parameter).
package query

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/dpex/internal/domain/dpe"
	"github.com/kailas-cloud/dpex/internal/domain/search/filter"
)

// Grammar tokens.
const (
	Unbounded      = "*"
	SingleWildcard = "?"
	And            = " AND "
	Or             = " OR "
)

// reserved are the query syntax characters escaped with a backslash in user
// values. '<' and '>' cannot be escaped and are removed instead.
const reserved = `+-=&|!(){}[]^"~*?:\/`

var whitespaceRun = regexp.MustCompile(`\s+`)

// Builder accumulates clauses in call order and joins them with AND.
type Builder struct {
	clauses []string
}

// NewBuilder starts an empty conjunction.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildingType adds type_batiment:<value>, lowercased. Blank values are ignored.
func (b *Builder) BuildingType(v string) *Builder {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return b
	}
	return b.add(dpe.FieldBuildingType + ":" + literal(v))
}

// Field adds an exact field:value term. Blank values are ignored.
func (b *Builder) Field(name, v string) *Builder {
	v = strings.TrimSpace(v)
	if v == "" {
		return b
	}
	return b.add(name + ":" + literal(v))
}

// PostalCode matches either postal code field.
func (b *Builder) PostalCode(v string) *Builder {
	v = strings.TrimSpace(v)
	if v == "" {
		return b
	}
	v = literal(v)
	return b.add("((" + dpe.FieldPostalCode + ":" + v + Or + dpe.FieldPostalCodeRaw + ":" + v + "))")
}

// CommunePrefix adds a prefix query on the commune name. Whitespace runs are
// bridged with a single-character wildcard so multi-word names stay one term.
func (b *Builder) CommunePrefix(v string) *Builder {
	v = strings.TrimSpace(v)
	if v == "" {
		return b
	}
	token := whitespaceRun.ReplaceAllString(Escape(v), SingleWildcard)
	return b.add(dpe.FieldCommune + ":" + token + "*")
}

// SurfaceRange adds an inclusive range; a blank bound is open.
func (b *Builder) SurfaceRange(lo, hi string) *Builder {
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if lo == "" && hi == "" {
		return b
	}
	return b.add(rangeClause(dpe.FieldSurface, orUnbounded(lo), orUnbounded(hi)))
}

// Labels adds a disjunction over the energy labels. Labels must already be normalized.
func (b *Builder) Labels(labels []string) *Builder {
	if len(labels) == 0 {
		return b
	}
	escaped := make([]string, len(labels))
	for i, l := range labels {
		escaped[i] = literal(l)
	}
	return b.add(dpe.FieldLabel + ":(" + strings.Join(escaped, Or) + ")")
}

// DateRange adds an inclusive date range. A bound that does not look like
// YYYY-MM-DD is treated as open; if both are open no clause is added.
func (b *Builder) DateRange(start, end string) *Builder {
	start, end = dateBound(start), dateBound(end)
	if start == Unbounded && end == Unbounded {
		return b
	}
	return b.add(rangeClause(dpe.FieldDate, start, end))
}

// String joins the clauses. No clause yields "".
func (b *Builder) String() string {
	return strings.Join(b.clauses, And)
}

// Len returns the number of clauses.
func (b *Builder) Len() int { return len(b.clauses) }

func (b *Builder) add(clause string) *Builder {
	b.clauses = append(b.clauses, clause)
	return b
}

// Build translates a filter state into a query string. Clause order is fixed:
// building type, postal code, commune, surface, labels, dates.
func Build(f filter.State) string {
	return NewBuilder().
		BuildingType(f.BuildingType).
		PostalCode(f.PostalCode).
		CommunePrefix(f.CommunePrefix).
		SurfaceRange(f.SurfaceMin, f.SurfaceMax).
		Labels(f.NormalizedLabels()).
		DateRange(f.StartDate, f.EndDate).
		String()
}

// Escape backslash-escapes reserved query characters and drops '<' and '>'.
// Whitespace is left as is.
func Escape(v string) string {
	var sb strings.Builder
	sb.Grow(len(v))
	for _, r := range v {
		switch {
		case r == '<' || r == '>':
			continue
		case strings.ContainsRune(reserved, r):
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// literal escapes v and its inner whitespace so it stays one exact term.
func literal(v string) string {
	return strings.Join(strings.Fields(Escape(v)), `\ `)
}

func rangeClause(field, lo, hi string) string {
	return field + ":[" + lo + " TO " + hi + "]"
}

func orUnbounded(v string) string {
	if v == "" {
		return Unbounded
	}
	return v
}

func dateBound(v string) string {
	v = strings.TrimSpace(v)
	if !filter.MatchesDatePattern(v) {
		return Unbounded
	}
	return v
}
