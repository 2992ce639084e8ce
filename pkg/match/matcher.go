package match

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/verdant/plantimport/pkg/parserpool"
	"github.com/verdant/plantimport/pkg/record"
)

// Matcher scores taxonomies against catalog snapshots.
type Matcher struct {
	cfg    Config
	parser parserpool.Pool
}

// New creates a Matcher. A zero Weights config falls back to
// DefaultWeights.
func New(cfg Config, parser parserpool.Pool) *Matcher {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights
	}
	return &Matcher{cfg: cfg, parser: parser}
}

// fieldMatchMin is the similarity above which a field counts as
// having contributed to a match.
const fieldMatchMin = 0.75

// Match scores the taxonomy against every snapshot entry and returns
// ranked candidates. An exact family+genus+species+cultivar equality
// short-circuits with a single score-1.0 match.
func (m *Matcher) Match(tax record.Taxonomy, snap Snapshot) Result {
	res := Result{Input: tax}

	queryStem := m.parser.Stem(scientificName(tax.Genus, tax.Species))

	for i, plant := range snap.plants {
		if exactEqual(tax, plant) {
			best := PlantMatch{
				PlantID: plant.ID,
				Score:   1.0,
				MatchedFields: []string{
					"family", "genus", "species", "cultivar",
				},
				Plant: plant,
			}
			res.Matches = []PlantMatch{best}
			res.BestMatch = &best
			res.Confidence = 1.0
			res.RequiresManualReview = false
			return res
		}

		cand := m.score(tax, queryStem, plant, snap.stems[i])
		if cand.Score >= m.cfg.MinScore {
			res.Matches = append(res.Matches, cand)
		}
	}

	sort.SliceStable(res.Matches, func(i, j int) bool {
		if res.Matches[i].Score != res.Matches[j].Score {
			return res.Matches[i].Score > res.Matches[j].Score
		}
		return res.Matches[i].PlantID < res.Matches[j].PlantID
	})

	if len(res.Matches) == 0 {
		res.RequiresManualReview = false
		return res
	}

	res.BestMatch = &res.Matches[0]
	res.Confidence = res.Matches[0].Score

	if res.Confidence < m.cfg.Threshold {
		res.RequiresManualReview = true
	}
	// An ambiguous tie between the two best candidates always defers
	// to a human, no matter how high the scores are.
	if len(res.Matches) > 1 &&
		res.Matches[0].Score-res.Matches[1].Score < m.cfg.TieEpsilon {
		res.RequiresManualReview = true
	}

	return res
}

// score computes the weighted fuzzy similarity of one catalog entry.
func (m *Matcher) score(
	tax record.Taxonomy,
	queryStem string,
	plant CatalogPlant,
	plantStem string,
) PlantMatch {
	w := m.cfg.Weights

	familySim := similarity(tax.Family, plant.Family)
	genusSim := similarity(tax.Genus, plant.Genus)
	speciesSim := similarity(tax.Species, plant.Species)
	commonSim := similarity(tax.CommonName, plant.CommonName)

	// Stemmed canonical forms forgive Latin suffix variation in the
	// genus+species pair; take the better of verbatim and stemmed.
	if queryStem != "" && plantStem != "" {
		stemSim := similarity(queryStem, plantStem)
		genusSim = max(genusSim, stemSim)
		speciesSim = max(speciesSim, stemSim)
	}

	score := (w.Family*familySim +
		w.Genus*genusSim +
		w.Species*speciesSim +
		w.CommonName*commonSim) / w.total()

	var fields []string
	for _, f := range []struct {
		name string
		sim  float64
	}{
		{"family", familySim},
		{"genus", genusSim},
		{"species", speciesSim},
		{"commonName", commonSim},
	} {
		if f.sim >= fieldMatchMin {
			fields = append(fields, f.name)
		}
	}

	return PlantMatch{
		PlantID:       plant.ID,
		Score:         score,
		MatchedFields: fields,
		Plant:         plant,
	}
}

// exactEqual reports case-insensitive equality of the full taxonomy
// tuple including the cultivar.
func exactEqual(tax record.Taxonomy, plant CatalogPlant) bool {
	if !strings.EqualFold(tax.Family, plant.Family) ||
		!strings.EqualFold(tax.Genus, plant.Genus) ||
		!strings.EqualFold(tax.Species, plant.Species) {
		return false
	}

	switch {
	case tax.Cultivar == nil && plant.Cultivar == nil:
		return true
	case tax.Cultivar != nil && plant.Cultivar != nil:
		return strings.EqualFold(*tax.Cultivar, *plant.Cultivar)
	default:
		return false
	}
}

// similarity converts Levenshtein distance into [0,1]: identical
// strings score 1, fully different strings score 0.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	dist := fuzzy.LevenshteinDistance(a, b)
	longest := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(dist)/float64(longest)
}
