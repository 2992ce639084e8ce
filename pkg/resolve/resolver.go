package resolve

import (
	"fmt"

	"github.com/verdant/plantimport/pkg/config"
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/record"
)

// Policy is the subset of import configuration that drives
// resolution.
type Policy struct {
	// Threshold is the confidence at or above which a match counts
	// as certain.
	Threshold float64

	// HandleDuplicates governs taxonomy rows whose taxonomy already
	// exists in the catalog.
	HandleDuplicates config.DuplicatePolicy

	// CreateMissingPlants allows unmatched taxonomies to create new
	// catalog entries.
	CreateMissingPlants bool
}

// ParentLookup carries the result of resolving a propagation row's
// parent plant name against the user's instances. The lookup itself
// is I/O and happens in the orchestrator before resolution.
type ParentLookup struct {
	// Attempted is true for propagation rows with an internal source.
	Attempted bool

	// InstanceID is the resolved parent instance, empty when the
	// name did not resolve.
	InstanceID string
}

// Resolver assigns outcomes to matched rows.
type Resolver struct {
	policy Policy
}

// New creates a Resolver with the given policy.
func New(policy Policy) *Resolver {
	return &Resolver{policy: policy}
}

// Resolve decides what happens to one validated, matched row:
// persist, record a conflict, or record an error. It never performs
// I/O and never mutates its inputs.
func (r *Resolver) Resolve(
	rec *record.ProcessedRecord,
	mr match.Result,
	parent ParentLookup,
) Outcome {
	// An internal propagation whose parent instance is unknown must
	// never silently create a synthetic parent.
	if parent.Attempted && parent.InstanceID == "" {
		name := ""
		if rec.Propagation != nil {
			name = rec.Propagation.ParentPlantName
		}
		return conflict(ImportConflict{
			Row:  rec.Row,
			Type: ConflictMissingParent,
			Message: fmt.Sprintf(
				"parent plant %q does not match any of your plants", name,
			),
			SuggestedAction: ActionManualReview,
		})
	}

	// Ambiguity defers to a human: a tie or low confidence is not an
	// error, it is a conflict carrying the candidates.
	if mr.RequiresManualReview {
		c := ImportConflict{
			Row:             rec.Row,
			Type:            ConflictInvalidTaxonomy,
			Message:         reviewMessage(mr),
			SuggestedAction: ActionManualReview,
			Matches:         mr.Matches,
		}
		if mr.BestMatch != nil {
			c.ExistingID = mr.BestMatch.PlantID
		}
		return conflict(c)
	}

	if mr.BestMatch != nil && mr.Confidence >= r.policy.Threshold {
		return r.resolveMatched(rec, mr)
	}

	return r.resolveUnmatched(rec)
}

// resolveMatched handles rows with a certain catalog match.
func (r *Resolver) resolveMatched(
	rec *record.ProcessedRecord,
	mr match.Result,
) Outcome {
	// Instances and propagations want to link to an existing catalog
	// plant; a confident match is the happy path.
	if rec.Type != record.TypeTaxonomy {
		return persist(mr.BestMatch.PlantID)
	}

	// A taxonomy row matching an existing entry is a duplicate;
	// policy decides.
	switch r.policy.HandleDuplicates {
	case config.DuplicateMerge:
		return persist(mr.BestMatch.PlantID)
	case config.DuplicateCreateNew:
		return persist("")
	default:
		return conflict(ImportConflict{
			Row:  rec.Row,
			Type: ConflictDuplicatePlant,
			Message: fmt.Sprintf(
				"%s %s already exists in the catalog",
				rec.Taxonomy.Genus, rec.Taxonomy.Species,
			),
			ExistingID:      mr.BestMatch.PlantID,
			SuggestedAction: ActionSkip,
		})
	}
}

// resolveUnmatched handles rows without any usable catalog match.
func (r *Resolver) resolveUnmatched(rec *record.ProcessedRecord) Outcome {
	if r.policy.CreateMissingPlants {
		return persist("")
	}

	typ := ConflictMissingParent
	action := ActionCreateNew
	msg := fmt.Sprintf(
		"no catalog plant found for %s %s",
		rec.Taxonomy.Genus, rec.Taxonomy.Species,
	)
	if rec.Type == record.TypeTaxonomy {
		typ = ConflictInvalidTaxonomy
		msg = fmt.Sprintf(
			"%s %s is not a known taxonomy",
			rec.Taxonomy.Genus, rec.Taxonomy.Species,
		)
	}

	return conflict(ImportConflict{
		Row:             rec.Row,
		Type:            typ,
		Message:         msg,
		SuggestedAction: action,
	})
}

func reviewMessage(mr match.Result) string {
	if len(mr.Matches) > 1 {
		return fmt.Sprintf(
			"%d catalog plants match with similar scores, pick one manually",
			len(mr.Matches),
		)
	}
	return "best catalog match is below the confidence threshold"
}
