// Package pipeline defines the contracts of the CSV import pipeline:
// the importer exposed to callers and the catalog store boundary it
// consumes.
package pipeline

import (
	"context"
	"errors"

	"github.com/verdant/plantimport/pkg/match"
	"github.com/verdant/plantimport/pkg/progress"
	"github.com/verdant/plantimport/pkg/record"
	"github.com/verdant/plantimport/pkg/resolve"
)

// ErrStoreUnavailable marks a connectivity-level catalog store
// failure. Stores wrap it so the orchestrator can tell a per-row
// persistence failure (recoverable) from a dead store (fatal to the
// job).
var ErrStoreUnavailable = errors.New("catalog store unavailable")

// Request describes one import submission.
type Request struct {
	// FileName is kept for progress display only.
	FileName string

	// Data is the complete UTF-8 CSV payload including the header
	// row. Size capping happens upstream.
	Data []byte

	ImportType record.ImportType

	// UserID owns the created instances/propagations and the
	// progress entry.
	UserID string
}

// ValidationReport is the result of a dry run: validation and
// matching without persistence.
type ValidationReport struct {
	RecordCount int                      `json:"recordCount"`
	Errors      []record.ImportError     `json:"errors"`
	Conflicts   []resolve.ImportConflict `json:"conflicts"`
}

// Importer drives import jobs and exposes their progress.
type Importer interface {
	// StartImport submits a job and returns its ID immediately; the
	// rows are processed in a background goroutine. The returned
	// error covers submission problems only (unknown import type,
	// unreadable header); row-level problems surface through
	// progress.
	StartImport(ctx context.Context, req Request) (string, error)

	// Progress returns the live view of a job. ok is false for
	// unknown or expired jobs.
	Progress(jobID string) (progress.ImportProgress, bool)

	// ProgressForUser lists all tracked jobs of a user, newest
	// first.
	ProgressForUser(userID string) []progress.ImportProgress

	// ValidateOnly performs validation and matching without any
	// persistence, for pre-submission feedback. Running it twice on
	// the same content yields identical reports.
	ValidateOnly(
		ctx context.Context,
		data []byte,
		typ record.ImportType,
	) (*ValidationReport, error)
}

// CatalogStore is the persistence boundary of the pipeline. The
// pipeline never retries these calls; idempotency is the store's
// concern.
type CatalogStore interface {
	// GetCatalogSnapshot reads the full verified+unverified plant
	// catalog. It is taken once per job; later writes are not
	// visible to that job.
	GetCatalogSnapshot(ctx context.Context) ([]match.CatalogPlant, error)

	// PersistTaxonomy writes a catalog plant and returns its ID.
	PersistTaxonomy(
		ctx context.Context,
		tax record.Taxonomy,
	) (string, error)

	// PersistInstance writes an owned-plant instance linked to a
	// catalog plant.
	PersistInstance(
		ctx context.Context,
		rec *record.ProcessedRecord,
		plantID string,
		userID string,
	) (string, error)

	// PersistPropagation writes a propagation record. parentID is
	// empty for external sources.
	PersistPropagation(
		ctx context.Context,
		rec *record.ProcessedRecord,
		plantID string,
		parentID string,
		userID string,
	) (string, error)

	// ResolveParentInstance maps a plant nickname to the user's
	// instance ID; empty string when no instance matches.
	ResolveParentInstance(
		ctx context.Context,
		name string,
		userID string,
	) (string, error)
}

// SchemaManager manages the catalog database schema.
type SchemaManager interface {
	// Create creates the initial schema. Idempotent.
	Create(ctx context.Context) error

	// Migrate updates the schema to the latest version.
	Migrate(ctx context.Context) error
}
