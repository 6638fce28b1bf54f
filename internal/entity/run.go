package entity

import "time"

// RunSummary is the persisted view of one batch run.
type RunSummary struct {
	RunID       string       `json:"run_id"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Documents   int          `json:"documents"`
	Accepted    int          `json:"accepted"`
	Records     int          `json:"records"`
	GateOpen    bool         `json:"gate_open"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
