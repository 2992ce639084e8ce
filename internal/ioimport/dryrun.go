package ioimport

import (
	"context"

	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/record"
	"github.com/verdant/plantimport/pkg/resolve"

	"github.com/verdant/plantimport/internal/iocsv"
)

// ValidateOnly runs validation, matching and resolution without
// writing anything. Parent lookups are reads and still happen, so the
// report shows the same conflicts a real import would.
func (imp *ioimport) ValidateOnly(
	ctx context.Context,
	data []byte,
	typ record.ImportType,
) (*pipeline.ValidationReport, error) {
	if _, ok := record.ParseImportType(string(typ)); !ok {
		return nil, ImportTypeError(string(typ))
	}

	_, rows, err := iocsv.Parse(data)
	if err != nil {
		return nil, err
	}

	plants, err := imp.store.GetCatalogSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	snap := match.NewSnapshot(plants, imp.parser)

	recs, rowErrs := imp.validateAll(rows, typ)
	results := imp.matchAll(recs, snap, rowErrs)

	resolver := imp.resolver()
	report := &pipeline.ValidationReport{RecordCount: len(rows)}

	for i := range rows {
		report.Errors = append(report.Errors, rowErrs[i]...)
		rec := recs[i]
		if rec == nil || record.HasBlocking(rowErrs[i]) {
			continue
		}

		parent, rowErr, fatal := imp.lookupParent(ctx, rec, "")
		if fatal {
			return nil, pipeline.ErrStoreUnavailable
		}
		if rowErr != nil {
			report.Errors = append(report.Errors, *rowErr)
			continue
		}

		outcome := resolver.Resolve(rec, results[i], parent)
		switch outcome.Kind {
		case resolve.OutcomeConflict:
			report.Conflicts = append(report.Conflicts, *outcome.Conflict)
		case resolve.OutcomeError:
			report.Errors = append(report.Errors, *outcome.Error)
		}
	}

	return report, nil
}
