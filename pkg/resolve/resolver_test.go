package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/pkg/config"
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/record"
	"github.com/verdant/plantimport/pkg/resolve"
)

func policy() resolve.Policy {
	return resolve.Policy{
		Threshold:           0.7,
		HandleDuplicates:    config.DuplicateSkip,
		CreateMissingPlants: true,
	}
}

func taxRecord(typ record.ImportType) *record.ProcessedRecord {
	rec := &record.ProcessedRecord{
		Type: typ,
		Row:  5,
		Taxonomy: record.Taxonomy{
			Family:     "Araceae",
			Genus:      "Monstera",
			Species:    "deliciosa",
			CommonName: "Swiss Cheese Plant",
		},
	}
	switch typ {
	case record.TypeInstance:
		rec.Instance = &record.InstanceFields{}
	case record.TypePropagation:
		rec.Propagation = &record.PropagationFields{
			SourceType:      record.SourceInternal,
			ParentPlantName: "Monty",
		}
	}
	return rec
}

func exactMatch() match.Result {
	best := match.PlantMatch{PlantID: "p-1", Score: 1.0}
	return match.Result{
		Matches:    []match.PlantMatch{best},
		BestMatch:  &best,
		Confidence: 1.0,
	}
}

func noMatch() match.Result {
	return match.Result{}
}

func TestDuplicateTaxonomySkip(t *testing.T) {
	r := resolve.New(policy())
	out := r.Resolve(taxRecord(record.TypeTaxonomy), exactMatch(), resolve.ParentLookup{})

	require.Equal(t, resolve.OutcomeConflict, out.Kind)
	require.NotNil(t, out.Conflict)
	assert.Equal(t, resolve.ConflictDuplicatePlant, out.Conflict.Type)
	assert.Equal(t, resolve.ActionSkip, out.Conflict.SuggestedAction)
	assert.Equal(t, "p-1", out.Conflict.ExistingID)
	assert.Equal(t, 5, out.Conflict.Row)
}

func TestDuplicateTaxonomyMerge(t *testing.T) {
	p := policy()
	p.HandleDuplicates = config.DuplicateMerge
	r := resolve.New(p)

	out := r.Resolve(taxRecord(record.TypeTaxonomy), exactMatch(), resolve.ParentLookup{})
	require.Equal(t, resolve.OutcomePersist, out.Kind)
	assert.Equal(t, "p-1", out.MatchedPlantID)
}

func TestDuplicateTaxonomyCreateNew(t *testing.T) {
	p := policy()
	p.HandleDuplicates = config.DuplicateCreateNew
	r := resolve.New(p)

	out := r.Resolve(taxRecord(record.TypeTaxonomy), exactMatch(), resolve.ParentLookup{})
	require.Equal(t, resolve.OutcomePersist, out.Kind)
	assert.Empty(t, out.MatchedPlantID)
}

func TestInstanceLinksToMatchedPlant(t *testing.T) {
	// A confident match is the happy path for instances; the
	// duplicate policy does not apply.
	r := resolve.New(policy())
	out := r.Resolve(taxRecord(record.TypeInstance), exactMatch(), resolve.ParentLookup{})

	require.Equal(t, resolve.OutcomePersist, out.Kind)
	assert.Equal(t, "p-1", out.MatchedPlantID)
}

func TestMissingParentNeverCreatesSyntheticParent(t *testing.T) {
	r := resolve.New(policy())
	out := r.Resolve(
		taxRecord(record.TypePropagation),
		exactMatch(),
		resolve.ParentLookup{Attempted: true, InstanceID: ""},
	)

	require.Equal(t, resolve.OutcomeConflict, out.Kind)
	assert.Equal(t, resolve.ConflictMissingParent, out.Conflict.Type)
	assert.Equal(t, resolve.ActionManualReview, out.Conflict.SuggestedAction)
	assert.Contains(t, out.Conflict.Message, "Monty")
}

func TestResolvedParentPersists(t *testing.T) {
	r := resolve.New(policy())
	out := r.Resolve(
		taxRecord(record.TypePropagation),
		exactMatch(),
		resolve.ParentLookup{Attempted: true, InstanceID: "inst-9"},
	)
	require.Equal(t, resolve.OutcomePersist, out.Kind)
	assert.Equal(t, "p-1", out.MatchedPlantID)
}

func TestManualReviewBecomesConflict(t *testing.T) {
	r := resolve.New(policy())

	best := match.PlantMatch{PlantID: "p-1", Score: 0.85}
	second := match.PlantMatch{PlantID: "p-2", Score: 0.84}
	mr := match.Result{
		Matches:              []match.PlantMatch{best, second},
		BestMatch:            &best,
		Confidence:           0.85,
		RequiresManualReview: true,
	}

	out := r.Resolve(taxRecord(record.TypeTaxonomy), mr, resolve.ParentLookup{})
	require.Equal(t, resolve.OutcomeConflict, out.Kind)
	assert.Equal(t, resolve.ConflictInvalidTaxonomy, out.Conflict.Type)
	assert.Equal(t, resolve.ActionManualReview, out.Conflict.SuggestedAction)
	assert.Len(t, out.Conflict.Matches, 2)
	assert.Equal(t, "p-1", out.Conflict.ExistingID)
}

func TestUnmatchedCreatesWhenAllowed(t *testing.T) {
	r := resolve.New(policy())
	out := r.Resolve(taxRecord(record.TypeTaxonomy), noMatch(), resolve.ParentLookup{})

	require.Equal(t, resolve.OutcomePersist, out.Kind)
	assert.Empty(t, out.MatchedPlantID)
}

func TestUnmatchedConflictsWhenCreationDisabled(t *testing.T) {
	p := policy()
	p.CreateMissingPlants = false
	r := resolve.New(p)

	out := r.Resolve(taxRecord(record.TypeTaxonomy), noMatch(), resolve.ParentLookup{})
	require.Equal(t, resolve.OutcomeConflict, out.Kind)
	assert.Equal(t, resolve.ConflictInvalidTaxonomy, out.Conflict.Type)

	out = r.Resolve(taxRecord(record.TypeInstance), noMatch(), resolve.ParentLookup{})
	require.Equal(t, resolve.OutcomeConflict, out.Kind)
	assert.Equal(t, resolve.ConflictMissingParent, out.Conflict.Type)
}
