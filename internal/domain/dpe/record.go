// Package dpe models a single energy-performance diagnostic as returned by
// the ADEME dataset API.
package dpe

import (
	"strconv"
	"strings"
)

// Dataset field names used across the search pipeline.
const (
	FieldID               = "numero_dpe"
	FieldDate             = "date_etablissement_dpe"
	FieldLabel            = "etiquette_dpe"
	FieldGHGLabel         = "etiquette_ges"
	FieldConstructionYear = "annee_construction"
	FieldConstructionEra  = "periode_construction"
	FieldSurface          = "surface_habitable_logement"
	FieldBuildingType     = "type_batiment"
	FieldAddress          = "adresse_ban"
	FieldCommune          = "nom_commune_ban"
	FieldPostalCode       = "code_postal_ban"
	FieldPostalCodeRaw    = "code_postal_brut"
)

// Building types accepted by the dataset.
const (
	BuildingHouse     = "maison"
	BuildingApartment = "appartement"
)

// Record is one dataset line. Values are whatever the JSON decoder produced
// (string, float64, bool, nil); the record is never modified once decoded.
type Record map[string]any

// ID returns the diagnostic number.
func (r Record) ID() string { return r.String(FieldID) }

// Has reports whether the field is present with a non-nil value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// String returns the field rendered as text. Numbers keep their shortest
// representation; missing and nil fields yield "".
func (r Record) String(field string) string {
	return Text(r[field])
}

// Text renders a decoded JSON value as text.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Label returns the uppercased DPE energy label.
func (r Record) Label() string {
	return strings.ToUpper(strings.TrimSpace(r.String(FieldLabel)))
}

// BuildingType returns type_batiment lowercased.
func (r Record) BuildingType() string {
	return strings.ToLower(strings.TrimSpace(r.String(FieldBuildingType)))
}

// Construction returns the construction year, falling back to the construction period.
func (r Record) Construction() string {
	if y := r.String(FieldConstructionYear); y != "" {
		return y
	}
	return r.String(FieldConstructionEra)
}
