// Package match scores plant taxonomies against an in-memory catalog
// snapshot and returns ranked candidate matches with confidence.
//
// This is a pure package: matching is a read-only computation over an
// immutable snapshot taken at job start.
package match

import (
	"github.com/verdant/plantimport/pkg/record"
)

// CatalogPlant is one entry of the catalog snapshot the matcher
// scores against.
type CatalogPlant struct {
	// ID is the catalog plant's immutable identifier.
	ID string `json:"id"`

	Family     string  `json:"family"`
	Genus      string  `json:"genus"`
	Species    string  `json:"species"`
	Cultivar   *string `json:"cultivar,omitempty"`
	CommonName string  `json:"commonName"`

	// Verified marks entries that went through manual curation.
	Verified bool `json:"verified"`
}

// PlantMatch is a candidate catalog entry with its similarity score.
type PlantMatch struct {
	// PlantID references the catalog plant.
	PlantID string `json:"plantId"`

	// Score is the similarity in [0,1]; 1.0 means exact taxonomy
	// equality.
	Score float64 `json:"score"`

	// MatchedFields lists the fields that contributed to the match.
	MatchedFields []string `json:"matchedFields"`

	// Plant is the matched snapshot entry.
	Plant CatalogPlant `json:"plant"`
}

// Result is the per-row aggregate of matching one taxonomy against
// the snapshot.
type Result struct {
	// Input is the submitted taxonomy.
	Input record.Taxonomy `json:"input"`

	// Matches is ordered by descending score.
	Matches []PlantMatch `json:"matches"`

	// BestMatch is the top candidate, nil when nothing scored above
	// the minimum.
	BestMatch *PlantMatch `json:"bestMatch,omitempty"`

	// Confidence is the best candidate's score, 0 without candidates.
	Confidence float64 `json:"confidence"`

	// RequiresManualReview is true when confidence falls below the
	// configured threshold or when two candidates tie within the
	// configured epsilon.
	RequiresManualReview bool `json:"requiresManualReview"`
}

// Config tunes the matcher.
type Config struct {
	// Threshold is the minimum confidence that avoids manual review.
	Threshold float64

	// TieEpsilon is the score delta under which the two best
	// candidates count as an ambiguous tie.
	TieEpsilon float64

	// MinScore drops candidates scoring below it entirely.
	MinScore float64

	// Weights distributes field contributions; zero value falls back
	// to DefaultWeights.
	Weights Weights
}

// Weights is the relative contribution of each taxonomy field to the
// fuzzy score. CommonName and species discriminate most between
// visually similar entries; family contributes least since many
// genera share a family.
type Weights struct {
	CommonName float64
	Species    float64
	Genus      float64
	Family     float64
}

// DefaultWeights is used when Config.Weights is the zero value.
var DefaultWeights = Weights{
	CommonName: 0.35,
	Species:    0.30,
	Genus:      0.20,
	Family:     0.15,
}

func (w Weights) total() float64 {
	return w.CommonName + w.Species + w.Genus + w.Family
}
