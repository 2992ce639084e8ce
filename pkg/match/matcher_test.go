package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/parserpool"
	"github.com/verdant/plantimport/pkg/record"
)

var pool = parserpool.NewPool(2)

func defaultConfig() match.Config {
	return match.Config{
		Threshold:  0.7,
		TieEpsilon: 0.03,
		MinScore:   0.4,
	}
}

func strPtr(s string) *string { return &s }

func catalog() []match.CatalogPlant {
	return []match.CatalogPlant{
		{
			ID:         "p-monstera",
			Family:     "Araceae",
			Genus:      "Monstera",
			Species:    "deliciosa",
			CommonName: "Swiss Cheese Plant",
			Verified:   true,
		},
		{
			ID:         "p-pothos",
			Family:     "Araceae",
			Genus:      "Epipremnum",
			Species:    "aureum",
			CommonName: "Golden Pothos",
		},
		{
			ID:         "p-fiddle",
			Family:     "Moraceae",
			Genus:      "Ficus",
			Species:    "lyrata",
			CommonName: "Fiddle Leaf Fig",
		},
	}
}

func TestExactMatchShortCircuits(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosa",
		CommonName: "Swiss Cheese Plant",
	}
	res := m.Match(tax, snap)

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, 1.0, res.BestMatch.Score)
	assert.Equal(t, "p-monstera", res.BestMatch.PlantID)
	assert.Equal(t, 1.0, res.Confidence)
	assert.False(t, res.RequiresManualReview)
	// Exact equality returns a single candidate only.
	assert.Len(t, res.Matches, 1)
}

func TestExactMatchIsCaseInsensitive(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "ARACEAE",
		Genus:      "monstera",
		Species:    "DELICIOSA",
		CommonName: "swiss cheese plant",
	}
	res := m.Match(tax, snap)
	require.NotNil(t, res.BestMatch)
	assert.Equal(t, 1.0, res.BestMatch.Score)
}

func TestCultivarBreaksExactEquality(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosa",
		Cultivar:   strPtr("Thai Constellation"),
		CommonName: "Swiss Cheese Plant",
	}
	res := m.Match(tax, snap)

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, "p-monstera", res.BestMatch.PlantID)
	// All scored fields agree, so the fuzzy score is still 1.0, but
	// it went through weighted scoring, not the exact shortcut.
	assert.InDelta(t, 1.0, res.BestMatch.Score, 1e-9)
}

func TestStemmedComparisonForgivesLatinSuffix(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosus",
		CommonName: "Swiss Cheese Plant",
	}
	res := m.Match(tax, snap)

	require.NotNil(t, res.BestMatch)
	assert.Equal(t, "p-monstera", res.BestMatch.PlantID)
	assert.Greater(t, res.Confidence, 0.95)
	assert.False(t, res.RequiresManualReview)
}

func TestNoMatchBelowMinScore(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "Cactaceae",
		Genus:      "Echinopsis",
		Species:    "pachanoi",
		CommonName: "San Pedro Cactus",
	}
	res := m.Match(tax, snap)

	assert.Empty(t, res.Matches)
	assert.Nil(t, res.BestMatch)
	assert.Zero(t, res.Confidence)
	assert.False(t, res.RequiresManualReview)
}

func TestLowConfidenceRequiresReview(t *testing.T) {
	cfg := defaultConfig()
	cfg.MinScore = 0.2
	m := match.New(cfg, pool)
	snap := match.NewSnapshot(catalog(), pool)

	// Same family as two entries, everything else different: scores
	// land above MinScore but far below the threshold.
	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Anthurium",
		Species:    "clarinervium",
		CommonName: "Velvet Cardboard",
	}
	res := m.Match(tax, snap)

	require.NotNil(t, res.BestMatch)
	assert.Less(t, res.Confidence, cfg.Threshold)
	assert.True(t, res.RequiresManualReview)
}

func TestAmbiguousTieRequiresReview(t *testing.T) {
	m := match.New(defaultConfig(), pool)

	// Two near-identical entries differing only in common name tail;
	// both score within the tie epsilon of each other.
	plants := []match.CatalogPlant{
		{
			ID:         "p-one",
			Family:     "Araceae",
			Genus:      "Monstera",
			Species:    "deliciosa",
			Cultivar:   strPtr("Albo"),
			CommonName: "Swiss Cheese Plant",
		},
		{
			ID:         "p-two",
			Family:     "Araceae",
			Genus:      "Monstera",
			Species:    "deliciosa",
			Cultivar:   strPtr("Aurea"),
			CommonName: "Swiss Cheese Plantz",
		},
	}
	snap := match.NewSnapshot(plants, pool)

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosa",
		CommonName: "Swiss Cheese Plant",
	}
	res := m.Match(tax, snap)

	require.Len(t, res.Matches, 2)
	// Ordered by descending score.
	assert.Equal(t, "p-one", res.Matches[0].PlantID)
	assert.GreaterOrEqual(t, res.Matches[0].Score, res.Matches[1].Score)
	assert.Less(t, res.Matches[0].Score-res.Matches[1].Score, 0.03)
	assert.True(t, res.RequiresManualReview)
}

func TestMatchedFields(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosa",
		CommonName: "Monstera",
	}
	res := m.Match(tax, snap)

	require.NotNil(t, res.BestMatch)
	assert.Contains(t, res.BestMatch.MatchedFields, "family")
	assert.Contains(t, res.BestMatch.MatchedFields, "genus")
	assert.Contains(t, res.BestMatch.MatchedFields, "species")
	assert.NotContains(t, res.BestMatch.MatchedFields, "commonName")
}

func TestMatchIsDeterministic(t *testing.T) {
	m := match.New(defaultConfig(), pool)
	snap := match.NewSnapshot(catalog(), pool)

	tax := record.Taxonomy{
		Family:     "Araceae",
		Genus:      "Monstera",
		Species:    "deliciosa",
		CommonName: "Swiss Cheese Plant",
	}

	first := m.Match(tax, snap)
	second := m.Match(tax, snap)
	assert.Equal(t, first, second)
}
