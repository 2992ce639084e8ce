package match

import (
	"fmt"

	"github.com/verdant/plantimport/pkg/parserpool"
)

// Snapshot is the read-only catalog view one import job matches
// against. It pairs every catalog entry with the stemmed canonical
// form of its scientific name, computed once so that per-row matching
// stays cheap. Concurrent catalog writes from other jobs are not
// visible here.
type Snapshot struct {
	plants []CatalogPlant
	stems  []string
}

// NewSnapshot builds a snapshot from catalog entries. The parser pool
// is used to stem "Genus species" strings; entries gnparser cannot
// parse keep an empty stem and are compared verbatim.
func NewSnapshot(plants []CatalogPlant, parser parserpool.Pool) Snapshot {
	stems := make([]string, len(plants))
	for i, p := range plants {
		stems[i] = parser.Stem(scientificName(p.Genus, p.Species))
	}
	return Snapshot{plants: plants, stems: stems}
}

// Len returns the number of catalog entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.plants)
}

// Plants returns the snapshot entries.
func (s Snapshot) Plants() []CatalogPlant {
	return s.plants
}

func scientificName(genus, species string) string {
	return fmt.Sprintf("%s %s", genus, species)
}
