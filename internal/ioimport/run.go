package ioimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/progress"
	"github.com/verdant/plantimport/pkg/record"
	"github.com/verdant/plantimport/pkg/resolve"
)

// run processes one job to its terminal state. It is the only writer
// of the job's progress entry.
func (imp *ioimport) run(
	ctx context.Context,
	p progress.ImportProgress,
	rows []record.RawRow,
) {
	defer func() {
		if r := recover(); r != nil {
			imp.log.Error("Import job panicked",
				"jobID", p.ID, "panic", r,
			)
			imp.failJob(&p, fmt.Sprintf("internal error: %v", r))
		}
	}()

	p.Status = progress.StatusProcessing
	imp.progress.Set(p.ID, p)

	plants, err := imp.store.GetCatalogSnapshot(ctx)
	if err != nil {
		imp.log.Error("Catalog snapshot failed", "jobID", p.ID, "error", err)
		imp.failJob(&p, "cannot read the plant catalog")
		return
	}
	snap := match.NewSnapshot(plants, imp.parser)

	recs, rowErrs := imp.validateAll(rows, p.ImportType)
	results := imp.matchAll(recs, snap, rowErrs)

	resolver := imp.resolver()

	// Every row lands in exactly one bucket: persisted, skipped by
	// policy (a conflict), or errored. Errored rows are counted only
	// by their entries in the errors array.
	var successful, skipped int

	for i := range rows {
		rowIssues := rowErrs[i]
		rec := recs[i]

		if rec == nil || record.HasBlocking(rowIssues) {
			// Blocked by validation or a matching failure; the row is
			// dropped but the job continues.
			imp.advance(&p, rowIssues, nil)
			continue
		}

		parent, rowErr, fatal := imp.lookupParent(ctx, rec, p.UserID)
		if fatal {
			imp.failJob(&p, "catalog store became unavailable")
			return
		}
		if rowErr != nil {
			imp.advance(&p, append(rowIssues, *rowErr), nil)
			continue
		}

		outcome := resolver.Resolve(rec, results[i], parent)
		switch outcome.Kind {
		case resolve.OutcomePersist:
			rowErr, fatal := imp.persistRow(
				ctx, rec, outcome.MatchedPlantID, parent, p.UserID,
			)
			if fatal {
				imp.failJob(&p, "catalog store became unavailable")
				return
			}
			if rowErr != nil {
				imp.advance(&p, append(rowIssues, *rowErr), nil)
				continue
			}
			successful++
			imp.advance(&p, rowIssues, nil)

		case resolve.OutcomeConflict:
			skipped++
			imp.advance(&p, rowIssues, outcome.Conflict)

		case resolve.OutcomeError:
			imp.advance(&p, append(rowIssues, *outcome.Error), nil)
		}
	}

	imp.finishJob(&p, successful, skipped)
}

// validateAll validates every raw row. recs[i] stays nil for rows with
// blocking errors; rowErrs[i] holds that row's errors and warnings.
func (imp *ioimport) validateAll(
	rows []record.RawRow,
	typ record.ImportType,
) ([]*record.ProcessedRecord, [][]record.ImportError) {
	recs := make([]*record.ProcessedRecord, len(rows))
	rowErrs := make([][]record.ImportError, len(rows))
	for i, raw := range rows {
		recs[i], rowErrs[i] = record.Validate(
			raw, typ, i+1, imp.cfg.Import.DateFormat,
		)
	}
	return recs, rowErrs
}

// matchAll runs the matching stage concurrently. A panic while
// matching one row becomes that row's error, not the job's.
func (imp *ioimport) matchAll(
	recs []*record.ProcessedRecord,
	snap match.Snapshot,
	rowErrs [][]record.ImportError,
) []match.Result {
	results := make([]match.Result, len(recs))
	m := imp.matcher()

	var g errgroup.Group
	g.SetLimit(imp.cfg.JobsNumber)

	for i, rec := range recs {
		if rec == nil {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					rowErrs[i] = append(rowErrs[i], record.ImportError{
						Row:      rec.Row,
						Message:  fmt.Sprintf("matching failed: %v", r),
						Severity: record.SeverityError,
					})
				}
			}()
			results[i] = m.Match(rec.Taxonomy, snap)
			return nil
		})
	}
	g.Wait()

	return results
}

// lookupParent resolves the parent instance of an internal
// propagation. fatal is true when the store is unreachable.
func (imp *ioimport) lookupParent(
	ctx context.Context,
	rec *record.ProcessedRecord,
	userID string,
) (parent resolve.ParentLookup, rowErr *record.ImportError, fatal bool) {
	if rec.Type != record.TypePropagation ||
		rec.Propagation.SourceType != record.SourceInternal {
		return resolve.ParentLookup{}, nil, false
	}

	parent.Attempted = true
	id, err := imp.store.ResolveParentInstance(
		ctx, rec.Propagation.ParentPlantName, userID,
	)
	if errors.Is(err, pipeline.ErrStoreUnavailable) {
		return parent, nil, true
	}
	if err != nil {
		return parent, &record.ImportError{
			Row:      rec.Row,
			Field:    "parent plant",
			Value:    rec.Propagation.ParentPlantName,
			Message:  err.Error(),
			Severity: record.SeverityError,
		}, false
	}
	parent.InstanceID = id
	return parent, nil, false
}

// persistRow writes one resolved row. An empty plantID means the
// store creates the catalog entry on the fly. A panic in the store
// becomes that row's error, not the job's.
func (imp *ioimport) persistRow(
	ctx context.Context,
	rec *record.ProcessedRecord,
	plantID string,
	parent resolve.ParentLookup,
	userID string,
) (rowErr *record.ImportError, fatal bool) {
	defer func() {
		if r := recover(); r != nil {
			rowErr = &record.ImportError{
				Row:      rec.Row,
				Message:  fmt.Sprintf("persistence failed: %v", r),
				Severity: record.SeverityError,
			}
			fatal = false
		}
	}()

	var err error
	switch rec.Type {
	case record.TypeTaxonomy:
		// A non-empty plantID is a merge against an existing entry;
		// there is nothing new to write.
		if plantID == "" {
			_, err = imp.store.PersistTaxonomy(ctx, rec.Taxonomy)
		}
	case record.TypeInstance:
		_, err = imp.store.PersistInstance(ctx, rec, plantID, userID)
	case record.TypePropagation:
		_, err = imp.store.PersistPropagation(
			ctx, rec, plantID, parent.InstanceID, userID,
		)
	}

	if errors.Is(err, pipeline.ErrStoreUnavailable) {
		return nil, true
	}
	if err != nil {
		return &record.ImportError{
			Row:      rec.Row,
			Message:  err.Error(),
			Severity: record.SeverityError,
		}, false
	}
	return nil, false
}

// advance records one processed row and publishes the new state.
func (imp *ioimport) advance(
	p *progress.ImportProgress,
	issues []record.ImportError,
	conflict *resolve.ImportConflict,
) {
	p.Errors = append(p.Errors, issues...)
	if conflict != nil {
		p.Conflicts = append(p.Conflicts, *conflict)
	}
	p.ProcessedRows++
	if p.TotalRows > 0 {
		p.Progress = float64(p.ProcessedRows) / float64(p.TotalRows) * 100
	} else {
		p.Progress = 100
	}
	imp.progress.Set(p.ID, *p)
}

// finishJob performs the single completed transition.
func (imp *ioimport) finishJob(
	p *progress.ImportProgress,
	successful, skipped int,
) {
	now := time.Now()
	errs, warns := splitBySeverity(p.Errors)

	p.Status = progress.StatusCompleted
	p.Progress = 100
	p.FinishedAt = &now
	p.Summary = &progress.ImportSummary{
		TotalRows:         p.TotalRows,
		ProcessedRows:     p.ProcessedRows,
		SuccessfulImports: successful,
		SkippedRows:       skipped,
		Errors:            errs,
		Warnings:          warns,
		Conflicts:         p.Conflicts,
		ImportType:        p.ImportType,
		StartedAt:         p.StartedAt,
		FinishedAt:        now,
		UserID:            p.UserID,
	}
	imp.progress.Set(p.ID, *p)

	imp.log.Info("Import job finished",
		"jobID", p.ID,
		"successful", successful,
		"skipped", skipped,
		"errors", len(errs),
		"conflicts", len(p.Conflicts),
	)
}

// failJob performs the single failed transition.
func (imp *ioimport) failJob(p *progress.ImportProgress, msg string) {
	now := time.Now()
	p.Errors = append(p.Errors, record.ImportError{
		Message:  msg,
		Severity: record.SeverityError,
	})
	errs, warns := splitBySeverity(p.Errors)

	p.Status = progress.StatusFailed
	p.FinishedAt = &now
	p.Summary = &progress.ImportSummary{
		TotalRows:     p.TotalRows,
		ProcessedRows: p.ProcessedRows,
		SkippedRows:   p.TotalRows - p.ProcessedRows,
		Errors:        errs,
		Warnings:      warns,
		Conflicts:     p.Conflicts,
		ImportType:    p.ImportType,
		StartedAt:     p.StartedAt,
		FinishedAt:    now,
		UserID:        p.UserID,
	}
	imp.progress.Set(p.ID, *p)
}

func splitBySeverity(
	issues []record.ImportError,
) (errs, warns []record.ImportError) {
	for _, e := range issues {
		if e.Severity == record.SeverityWarning {
			warns = append(warns, e)
		} else {
			errs = append(errs, e)
		}
	}
	return errs, warns
}
