// Package ioimport orchestrates import jobs: CSV decoding, row
// validation, fuzzy catalog matching, conflict resolution and
// persistence, with live progress reporting.
package ioimport

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/verdant/plantimport/pkg/config"
	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/parserpool"
	"github.com/verdant/plantimport/pkg/pipeline"
	"github.com/verdant/plantimport/pkg/progress"
	"github.com/verdant/plantimport/pkg/record"
	"github.com/verdant/plantimport/pkg/resolve"

	"github.com/verdant/plantimport/internal/iocsv"
)

type ioimport struct {
	cfg      *config.Config
	store    pipeline.CatalogStore
	progress *progress.Store
	parser   parserpool.Pool
	log      *slog.Logger
}

// New creates an Importer over a catalog store and a progress store.
// The parser pool is shared with other components; the importer does
// not close it.
func New(
	cfg *config.Config,
	store pipeline.CatalogStore,
	prog *progress.Store,
	parser parserpool.Pool,
	log *slog.Logger,
) pipeline.Importer {
	return &ioimport{
		cfg:      cfg,
		store:    store,
		progress: prog,
		parser:   parser,
		log:      log,
	}
}

func (imp *ioimport) matcher() *match.Matcher {
	return match.New(match.Config{
		Threshold:  imp.cfg.Import.MatchThreshold,
		TieEpsilon: imp.cfg.Import.TieEpsilon,
		MinScore:   imp.cfg.Import.MinScore,
	}, imp.parser)
}

func (imp *ioimport) resolver() *resolve.Resolver {
	return resolve.New(resolve.Policy{
		Threshold:           imp.cfg.Import.MatchThreshold,
		HandleDuplicates:    imp.cfg.Import.HandleDuplicates,
		CreateMissingPlants: imp.cfg.Import.CreateMissingPlants,
	})
}

// StartImport decodes the payload, registers the job and processes it
// in a background goroutine. Only submission-level problems are
// returned; everything row-level surfaces through progress polling.
func (imp *ioimport) StartImport(
	ctx context.Context,
	req pipeline.Request,
) (string, error) {
	if _, ok := record.ParseImportType(string(req.ImportType)); !ok {
		return "", ImportTypeError(string(req.ImportType))
	}

	_, rows, err := iocsv.Parse(req.Data)
	if err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	p := progress.ImportProgress{
		ID:         jobID,
		UserID:     req.UserID,
		FileName:   req.FileName,
		ImportType: req.ImportType,
		Status:     progress.StatusPending,
		TotalRows:  len(rows),
		StartedAt:  time.Now(),
	}
	imp.progress.Set(jobID, p)

	imp.log.Info("Import job submitted",
		"jobID", jobID,
		"type", req.ImportType,
		"file", req.FileName,
		"rows", len(rows),
	)

	// The job outlives the submission request.
	go imp.run(context.WithoutCancel(ctx), p, rows)

	return jobID, nil
}

// Progress returns the live view of a job.
func (imp *ioimport) Progress(jobID string) (progress.ImportProgress, bool) {
	return imp.progress.Get(jobID)
}

// ProgressForUser lists the tracked jobs of one user, newest first.
func (imp *ioimport) ProgressForUser(userID string) []progress.ImportProgress {
	return imp.progress.ForUser(userID)
}
