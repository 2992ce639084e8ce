// Package iocatalog implements the catalog store boundary of the
// import pipeline over PostgreSQL (production) and SQLite (local
// single-file catalogs).
package iocatalog

import (
	"strings"

	"github.com/gnames/gnuuid"
	"github.com/verdant/plantimport/pkg/record"
)

// plantID derives the deterministic catalog ID of a taxonomy entry.
// UUID v5 over the lowercased canonical tuple, so re-importing the
// same taxonomy yields the same row.
func plantID(tax record.Taxonomy) string {
	parts := []string{tax.Family, tax.Genus, tax.Species}
	if tax.Cultivar != nil {
		parts = append(parts, *tax.Cultivar)
	}
	canonical := strings.ToLower(strings.Join(parts, "|"))
	return gnuuid.New(canonical).String()
}
