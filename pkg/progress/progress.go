// Package progress tracks in-flight and recently finished import
// jobs in process-local memory.
//
// There is no persistence guarantee across restarts: a job in flight
// during a process crash is permanently lost and polling for it
// reports "not found" rather than stale data.
package progress

import (
	"time"

	"github.com/verdant/plantimport/pkg/record"
	"github.com/verdant/plantimport/pkg/resolve"
)

// Status is the lifecycle state of one import job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ImportSummary is the terminal aggregate for one job. It is created
// once the orchestrator finishes and never mutated afterwards.
type ImportSummary struct {
	TotalRows         int                       `json:"totalRows"`
	ProcessedRows     int                       `json:"processedRows"`
	SuccessfulImports int                       `json:"successfulImports"`
	SkippedRows       int                       `json:"skippedRows"`
	Errors            []record.ImportError      `json:"errors"`
	Warnings          []record.ImportError      `json:"warnings"`
	Conflicts         []resolve.ImportConflict  `json:"conflicts"`
	ImportType        record.ImportType         `json:"importType"`
	StartedAt         time.Time                 `json:"startedAt"`
	FinishedAt        time.Time                 `json:"finishedAt"`
	UserID            string                    `json:"userId"`
}

// ImportProgress is the live view of one import job. It is owned by
// the progress store; the owning orchestrator is the only writer.
type ImportProgress struct {
	// ID is the opaque job token handed to the caller.
	ID string `json:"id"`

	UserID     string            `json:"userId"`
	FileName   string            `json:"fileName"`
	ImportType record.ImportType `json:"importType"`

	Status Status `json:"status"`

	// Progress is the completion percentage in [0,100]. Pollers
	// observe monotonically non-decreasing values.
	Progress float64 `json:"progress"`

	TotalRows     int `json:"totalRows"`
	ProcessedRows int `json:"processedRows"`

	Errors    []record.ImportError     `json:"errors"`
	Conflicts []resolve.ImportConflict `json:"conflicts"`

	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	// Summary is set once the job reaches a terminal status.
	Summary *ImportSummary `json:"summary,omitempty"`
}

// Clone returns a deep copy so that pollers and the owning job never
// share slice backing arrays.
func (p ImportProgress) Clone() ImportProgress {
	cp := p
	cp.Errors = append([]record.ImportError(nil), p.Errors...)
	cp.Conflicts = append([]resolve.ImportConflict(nil), p.Conflicts...)
	if p.FinishedAt != nil {
		t := *p.FinishedAt
		cp.FinishedAt = &t
	}
	if p.Summary != nil {
		s := *p.Summary
		s.Errors = append([]record.ImportError(nil), p.Summary.Errors...)
		s.Warnings = append([]record.ImportError(nil), p.Summary.Warnings...)
		s.Conflicts = append(
			[]resolve.ImportConflict(nil), p.Summary.Conflicts...,
		)
		cp.Summary = &s
	}
	return cp
}
