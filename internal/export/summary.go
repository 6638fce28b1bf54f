package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joseph-ayodele/audity/internal/pipeline"
)

// Summary is the machine-readable digest of one run.
type Summary struct {
	RunID                string         `json:"run_id"`
	StartedAt            string         `json:"started_at"`
	FinishedAt           string         `json:"finished_at"`
	Documents            int            `json:"documents"`
	Records              int            `json:"records"`
	DiagnosticCounts     map[string]int `json:"diagnostic_counts"`
	UnmatchedIdentifiers []string       `json:"unmatched_identifiers"`
	UnmatchedPairs       int            `json:"unmatched_pairs"`
	IdentifiersClean     bool           `json:"identifiers_clean"`
	PairingsClean        bool           `json:"pairings_clean"`
	GateOpen             bool           `json:"gate_open"`
}

var summarySchema = map[string]any{
	"type": "object",
	"required": []any{
		"run_id", "started_at", "finished_at", "documents", "records", "diagnostic_counts",
		"unmatched_identifiers", "unmatched_pairs", "identifiers_clean", "pairings_clean", "gate_open",
	},
	"additionalProperties": false,
	"properties": map[string]any{
		"run_id":      map[string]any{"type": "string", "minLength": 1},
		"started_at":  map[string]any{"type": "string", "format": "date-time"},
		"finished_at": map[string]any{"type": "string", "format": "date-time"},
		"documents":   map[string]any{"type": "integer", "minimum": 0},
		"records":     map[string]any{"type": "integer", "minimum": 0},
		"diagnostic_counts": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "integer", "minimum": 1},
		},
		"unmatched_identifiers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"unmatched_pairs":       map[string]any{"type": "integer", "minimum": 0},
		"identifiers_clean":     map[string]any{"type": "boolean"},
		"pairings_clean":        map[string]any{"type": "boolean"},
		"gate_open":             map[string]any{"type": "boolean"},
	},
}

// NewSummary condenses a run result.
func NewSummary(res *pipeline.RunResult) Summary {
	counts := make(map[string]int)
	for _, d := range res.Diagnostics {
		counts[string(d.Kind)]++
	}
	unmatched := res.Reconciliation.UnmatchedIdentifiers
	if unmatched == nil {
		unmatched = []string{}
	}
	return Summary{
		RunID:                res.RunID,
		StartedAt:            res.StartedAt.Format(time.RFC3339),
		FinishedAt:           res.FinishedAt.Format(time.RFC3339),
		Documents:            len(res.Documents),
		Records:              len(res.Records),
		DiagnosticCounts:     counts,
		UnmatchedIdentifiers: unmatched,
		UnmatchedPairs:       len(res.Reconciliation.UnmatchedPairs),
		IdentifiersClean:     res.Reconciliation.IdentifiersClean,
		PairingsClean:        res.Reconciliation.PairingsClean,
		GateOpen:             res.GateOpen(),
	}
}

// SummaryJSON renders the run summary and checks it against its schema.
func SummaryJSON(res *pipeline.RunResult) ([]byte, error) {
	b, err := json.MarshalIndent(NewSummary(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	if err := validateSummary(b); err != nil {
		return nil, err
	}
	return b, nil
}
