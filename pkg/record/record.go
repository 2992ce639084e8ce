// Package record defines the typed row shapes of the import pipeline
// and validation of raw CSV rows into them.
//
// This is a pure package: validation is computation over in-memory
// data, no I/O happens here.
package record

import "time"

// ImportType selects the row shape of an import file.
type ImportType string

const (
	// TypeTaxonomy imports plant taxonomy records into the catalog.
	TypeTaxonomy ImportType = "taxonomy"
	// TypeInstance imports owned-plant instances.
	TypeInstance ImportType = "instance"
	// TypePropagation imports propagation records.
	TypePropagation ImportType = "propagation"
)

// ParseImportType converts a string to an ImportType.
func ParseImportType(s string) (ImportType, bool) {
	switch ImportType(s) {
	case TypeTaxonomy, TypeInstance, TypePropagation:
		return ImportType(s), true
	}
	return "", false
}

// RawRow is an untyped CSV row keyed by column header.
// It is ephemeral and discarded after validation.
type RawRow map[string]string

// SourceType tells whether a propagation came from a plant the user
// already owns or from outside.
type SourceType string

const (
	SourceInternal SourceType = "internal"
	SourceExternal SourceType = "external"
)

// ExternalSource classifies where an external propagation came from.
type ExternalSource string

const (
	SourceNursery      ExternalSource = "nursery"
	SourceGardenCenter ExternalSource = "garden_center"
	SourceOnlineStore  ExternalSource = "online_store"
	SourceTrade        ExternalSource = "trade"
	SourceGift         ExternalSource = "gift"
	SourceOther        ExternalSource = "other"
)

// Taxonomy is the family/genus/species/cultivar/common-name tuple
// identifying a plant type.
//
// Invariants after validation: Family, Genus, Species and CommonName
// are non-empty and case-normalized (Family/Genus capitalized,
// Species lowercase); Cultivar is nil rather than empty.
type Taxonomy struct {
	Family     string  `json:"family"`
	Genus      string  `json:"genus"`
	Species    string  `json:"species"`
	Cultivar   *string `json:"cultivar,omitempty"`
	CommonName string  `json:"commonName"`
}

// InstanceFields carries the owned-plant specific columns.
type InstanceFields struct {
	Nickname           *string    `json:"nickname,omitempty"`
	Location           *string    `json:"location,omitempty"`
	FertilizerSchedule *string    `json:"fertilizerSchedule,omitempty"`
	AcquiredOn         *time.Time `json:"acquiredOn,omitempty"`
	LastFertilized     *time.Time `json:"lastFertilized,omitempty"`
}

// PropagationFields carries the propagation specific columns.
type PropagationFields struct {
	DateStarted     *time.Time     `json:"dateStarted,omitempty"`
	SourceType      SourceType     `json:"sourceType"`
	ExternalSource  ExternalSource `json:"externalSource,omitempty"`
	ParentPlantName string         `json:"parentPlantName,omitempty"`
}

// ProcessedRecord is the validated, typed result of a RawRow.
// It is a tagged union over the three import types: exactly one of
// Instance and Propagation is non-nil for the respective type, both
// are nil for taxonomy records.
type ProcessedRecord struct {
	// Type tags the variant.
	Type ImportType `json:"type"`

	// Row is the origin data-row index (1-based, header excluded),
	// preserved for error correlation.
	Row int `json:"row"`

	Taxonomy Taxonomy `json:"taxonomy"`

	Instance    *InstanceFields    `json:"instance,omitempty"`
	Propagation *PropagationFields `json:"propagation,omitempty"`
}
