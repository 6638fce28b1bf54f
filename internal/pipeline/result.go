package pipeline

import (
	"time"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/integrity"
	"github.com/joseph-ayodele/audity/internal/reconcile"
)

// DocumentStatus is the per-document outcome of a run.
type DocumentStatus string

const (
	StatusAccepted    DocumentStatus = "accepted"
	StatusDuplicate   DocumentStatus = "duplicate"
	StatusIncomplete  DocumentStatus = "incomplete"
	StatusUnreadable  DocumentStatus = "unreadable"
	StatusUnsupported DocumentStatus = "unsupported"
	StatusFailed      DocumentStatus = "failed"
)

type DocumentResult struct {
	Document   string            `json:"document"`
	Format     string            `json:"format"`
	Status     DocumentStatus    `json:"status"`
	Identifier string            `json:"unique_id,omitempty"`
	Method     string            `json:"method,omitempty"`
	Pages      int               `json:"pages,omitempty"`
	Integrity  *integrity.Result `json:"integrity,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// RunResult is everything one batch produced. Records are unique and sorted
// by (date, company name); diagnostics are in processing order.
type RunResult struct {
	RunID          string                   `json:"run_id"`
	StartedAt      time.Time                `json:"started_at"`
	FinishedAt     time.Time                `json:"finished_at"`
	Documents      []DocumentResult         `json:"documents"`
	Records        []entity.ExtractedRecord `json:"records"`
	Diagnostics    []entity.Diagnostic      `json:"diagnostics"`
	Reconciliation reconcile.Result         `json:"reconciliation"`
}

// GateOpen reports whether report generation is authorized for this batch.
func (r *RunResult) GateOpen() bool { return r.Reconciliation.GateOpen() }

// Count returns how many diagnostics of the given kind were raised.
func (r *RunResult) Count(kind constants.DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// CountStatus returns how many documents ended with status s.
func (r *RunResult) CountStatus(s DocumentStatus) int {
	n := 0
	for _, d := range r.Documents {
		if d.Status == s {
			n++
		}
	}
	return n
}

// Summary condenses the run for the history store.
func (r *RunResult) Summary() entity.RunSummary {
	return entity.RunSummary{
		RunID:       r.RunID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Documents:   len(r.Documents),
		Accepted:    r.CountStatus(StatusAccepted),
		Records:     len(r.Records),
		GateOpen:    r.GateOpen(),
		Diagnostics: r.Diagnostics,
	}
}
