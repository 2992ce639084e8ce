// Package resolve classifies unresolved rows into conflict categories
// and assigns resolution outcomes driven by import policy.
//
// This is a pure package: resolution is a decision over already
// gathered facts; any I/O (parent lookups, persistence) happens in
// the orchestrator.
package resolve

import (
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/record"
)

// ConflictType classifies a disagreement between input and catalog
// state.
type ConflictType string

const (
	// ConflictDuplicatePlant marks a row whose taxonomy already
	// exists in the catalog.
	ConflictDuplicatePlant ConflictType = "duplicate_plant"
	// ConflictMissingParent marks a row referencing a plant or
	// instance that cannot be found.
	ConflictMissingParent ConflictType = "missing_parent"
	// ConflictInvalidTaxonomy marks a row whose taxonomy cannot be
	// placed in the catalog with confidence.
	ConflictInvalidTaxonomy ConflictType = "invalid_taxonomy"
)

// SuggestedAction is the resolution suggested for a conflict.
type SuggestedAction string

const (
	ActionSkip         SuggestedAction = "skip"
	ActionMerge        SuggestedAction = "merge"
	ActionCreateNew    SuggestedAction = "create_new"
	ActionManualReview SuggestedAction = "manual_review"
)

// ImportConflict is a classified, expected disagreement requiring
// policy-driven or human resolution. Conflicts are append-only during
// a run and never mutated.
type ImportConflict struct {
	// Row is the originating row index.
	Row int `json:"row"`

	Type ConflictType `json:"type"`

	// Message is human-readable.
	Message string `json:"message"`

	// ExistingID references the conflicting catalog record, when one
	// exists.
	ExistingID string `json:"existingId,omitempty"`

	SuggestedAction SuggestedAction `json:"suggestedAction"`

	// Matches carries the candidates for ambiguous rows so a
	// reviewer sees what the matcher saw.
	Matches []match.PlantMatch `json:"matches,omitempty"`
}

// OutcomeKind tags the Outcome union.
type OutcomeKind int

const (
	// OutcomePersist means the row should be written to the store.
	OutcomePersist OutcomeKind = iota
	// OutcomeConflict defers the row with a classified conflict.
	OutcomeConflict
	// OutcomeError rejects the row with a row-level error.
	OutcomeError
)

// Outcome is the tagged result of resolving one row. Exactly one of
// Conflict and Error is non-nil for the respective kind; both are nil
// for OutcomePersist.
type Outcome struct {
	Kind OutcomeKind

	// MatchedPlantID is the catalog plant to persist against; empty
	// means a new catalog entry should be created.
	MatchedPlantID string

	Conflict *ImportConflict
	Error    *record.ImportError
}

// persist builds a persist outcome.
func persist(plantID string) Outcome {
	return Outcome{Kind: OutcomePersist, MatchedPlantID: plantID}
}

// conflict builds a conflict outcome.
func conflict(c ImportConflict) Outcome {
	return Outcome{Kind: OutcomeConflict, Conflict: &c}
}
