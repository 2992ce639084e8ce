package record

import (
	"strings"
	"time"
	"unicode"
)

// Canonical column names. Lookup is case-insensitive and tolerant of
// underscores instead of spaces.
const (
	colFamily     = "family"
	colGenus      = "genus"
	colSpecies    = "species"
	colCultivar   = "cultivar"
	colCommonName = "common name"

	// Legacy combined column, used as fallback when the separate
	// cultivar and common name columns are absent.
	colLegacyCombined = "common name/variety"

	colNickname       = "nickname"
	colLocation       = "location"
	colFertSchedule   = "fertilizer schedule"
	colAcquiredDate   = "acquired date"
	colLastFertilized = "last fertilized"

	colDateStarted    = "date started"
	colSourceType     = "source type"
	colExternalSource = "external source"
	colParentPlant    = "parent plant"
)

// Validate coerces a raw CSV row into a ProcessedRecord of the given
// import type. All field problems for the row are collected rather
// than short-circuiting on the first one. The returned record is nil
// if and only if at least one problem has severity=error; a row with
// warnings only is still valid and proceeds to matching.
//
// dateLayout pins date parsing to one layout; empty means
// auto-detection (see ParseDate).
func Validate(
	raw RawRow,
	typ ImportType,
	row int,
	dateLayout string,
) (*ProcessedRecord, []ImportError) {
	v := &rowValidator{
		raw:        normalizeKeys(raw),
		row:        row,
		dateLayout: dateLayout,
	}

	rec := &ProcessedRecord{Type: typ, Row: row}
	rec.Taxonomy = v.taxonomy()

	switch typ {
	case TypeInstance:
		rec.Instance = v.instance()
	case TypePropagation:
		rec.Propagation = v.propagation()
	case TypeTaxonomy:
		// Taxonomy records carry no variant fields.
	default:
		v.addError("", string(typ), "unsupported import type")
	}

	if HasBlocking(v.errs) {
		return nil, v.errs
	}
	return rec, v.errs
}

type rowValidator struct {
	raw        map[string]string
	row        int
	dateLayout string
	errs       []ImportError
}

func (v *rowValidator) addError(field, value, msg string) {
	v.errs = append(v.errs, ImportError{
		Row:      v.row,
		Field:    field,
		Value:    value,
		Message:  msg,
		Severity: SeverityError,
	})
}

func (v *rowValidator) addWarning(field, value, msg string) {
	v.errs = append(v.errs, ImportError{
		Row:      v.row,
		Field:    field,
		Value:    value,
		Message:  msg,
		Severity: SeverityWarning,
	})
}

// field returns the trimmed value of a column and whether the column
// exists in the row at all.
func (v *rowValidator) field(name string) (string, bool) {
	val, ok := v.raw[name]
	return strings.TrimSpace(val), ok
}

func (v *rowValidator) required(name string) string {
	val, ok := v.field(name)
	if !ok {
		v.addError(name, "", "required column is missing")
		return ""
	}
	if val == "" {
		v.addError(name, "", "required field is empty")
		return ""
	}
	return val
}

func (v *rowValidator) optional(name string) *string {
	val, ok := v.field(name)
	if !ok || val == "" {
		return nil
	}
	return &val
}

func (v *rowValidator) optionalDate(name string) *time.Time {
	val, ok := v.field(name)
	if !ok || val == "" {
		return nil
	}
	t, err := ParseDate(val, v.dateLayout)
	if err != nil {
		v.addWarning(name, val, "unparseable date, stored as empty")
		return nil
	}
	return &t
}

func (v *rowValidator) taxonomy() Taxonomy {
	t := Taxonomy{
		Family:  Capitalize(v.required(colFamily)),
		Genus:   Capitalize(v.required(colGenus)),
		Species: strings.ToLower(v.required(colSpecies)),
	}

	cultivar, hasCultivarCol := v.field(colCultivar)
	commonName, hasCommonCol := v.field(colCommonName)

	if hasCultivarCol || hasCommonCol {
		// Explicit separate columns win over the legacy combined one.
		if cultivar != "" {
			t.Cultivar = &cultivar
		}
		switch {
		case !hasCommonCol:
			v.addError(colCommonName, "", "required column is missing")
		case commonName == "":
			v.addError(colCommonName, "", "required field is empty")
		}
		t.CommonName = commonName
		return t
	}

	combined, hasLegacy := v.field(colLegacyCombined)
	if !hasLegacy {
		v.addError(colCommonName, "", "required column is missing")
		return t
	}
	if combined == "" {
		v.addError(colLegacyCombined, "", "required field is empty")
		return t
	}

	// Legacy format packs "Common Name/Variety" into one cell.
	name, variety, found := strings.Cut(combined, "/")
	t.CommonName = strings.TrimSpace(name)
	if t.CommonName == "" {
		v.addError(colLegacyCombined, combined, "common name part is empty")
	}
	if found {
		variety = strings.TrimSpace(variety)
		if variety != "" {
			t.Cultivar = &variety
		}
	}
	return t
}

func (v *rowValidator) instance() *InstanceFields {
	return &InstanceFields{
		Nickname:           v.optional(colNickname),
		Location:           v.optional(colLocation),
		FertilizerSchedule: v.optional(colFertSchedule),
		AcquiredOn:         v.optionalDate(colAcquiredDate),
		LastFertilized:     v.optionalDate(colLastFertilized),
	}
}

func (v *rowValidator) propagation() *PropagationFields {
	p := &PropagationFields{
		DateStarted: v.optionalDate(colDateStarted),
	}

	srcVal := v.required(colSourceType)
	switch SourceType(strings.ToLower(srcVal)) {
	case SourceInternal:
		p.SourceType = SourceInternal
		p.ParentPlantName = v.required(colParentPlant)
	case SourceExternal:
		p.SourceType = SourceExternal
		p.ExternalSource = v.externalSource()
	default:
		if srcVal != "" {
			v.addError(colSourceType, srcVal,
				"source type must be internal or external")
		}
	}

	return p
}

func (v *rowValidator) externalSource() ExternalSource {
	val, ok := v.field(colExternalSource)
	if !ok || val == "" {
		v.addWarning(colExternalSource, "",
			"external source not given, recorded as other")
		return SourceOther
	}

	norm := strings.ReplaceAll(strings.ToLower(val), " ", "_")
	switch ExternalSource(norm) {
	case SourceNursery, SourceGardenCenter, SourceOnlineStore,
		SourceTrade, SourceGift, SourceOther:
		return ExternalSource(norm)
	}

	v.addWarning(colExternalSource, val,
		"unknown external source, recorded as other")
	return SourceOther
}

// normalizeKeys rewrites the row keys into canonical form: lowercase,
// underscores replaced with spaces, surrounding space trimmed.
func normalizeKeys(raw RawRow) map[string]string {
	res := make(map[string]string, len(raw))
	for k, val := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		k = strings.ReplaceAll(k, "_", " ")
		k = strings.Join(strings.Fields(k), " ")
		res[k] = val
	}
	return res
}

// Capitalize uppercases the first rune and lowercases the rest,
// following the convention for family and genus names.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
