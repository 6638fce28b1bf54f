// Package reconcile cross-checks a batch of unique records against the
// reference ledger on identifiers and on (company, amount) pairings.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/ledger"
	"github.com/joseph-ayodele/audity/internal/parse"
)

// Pairing is the (company, amount) view of one record.
type Pairing struct {
	Identifier      string          `json:"unique_id"`
	CompanyName     string          `json:"company_name"`
	FormattedAmount string          `json:"amount"`
	Amount          decimal.Decimal `json:"-"`
	Date            string          `json:"date"`
	Document        string          `json:"document,omitempty"`
}

// Result holds both checks. Each flag starts clean and flips on the first
// mismatch of its check.
type Result struct {
	MatchedIdentifiers   []string  `json:"matched_identifiers"`
	UnmatchedIdentifiers []string  `json:"unmatched_identifiers"`
	MatchedPairs         []Pairing `json:"matched_pairs"`
	UnmatchedPairs       []Pairing `json:"unmatched_pairs"`
	IdentifiersClean     bool      `json:"identifiers_clean"`
	PairingsClean        bool      `json:"pairings_clean"`
}

// Clean reports whether both checks passed.
func (r Result) Clean() bool { return r.IdentifiersClean && r.PairingsClean }

// GateOpen reports whether report generation may run for this batch.
func (r Result) GateOpen() bool { return r.Clean() }

// Err is nil for a clean batch. Otherwise it wraps ErrUnmatchedIdentifier,
// ErrUnmatchedPairing or both, with the counts.
func (r Result) Err() error {
	var errs []error
	if !r.IdentifiersClean {
		errs = append(errs, fmt.Errorf("%w: %d", common.ErrUnmatchedIdentifier, len(r.UnmatchedIdentifiers)))
	}
	if !r.PairingsClean {
		errs = append(errs, fmt.Errorf("%w: %d", common.ErrUnmatchedPairing, len(r.UnmatchedPairs)))
	}
	return errors.Join(errs...)
}

type Engine struct {
	symbol string
	logger *slog.Logger
}

func NewEngine(symbol string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{symbol: symbol, logger: logger}
}

// Reconcile runs both checks to completion over the whole batch.
func (e *Engine) Reconcile(records []entity.ExtractedRecord, l *ledger.Ledger) Result {
	res := Result{IdentifiersClean: true, PairingsClean: true}

	matched := make(map[string]struct{})
	unmatched := make(map[string]struct{})
	for _, rec := range records {
		if l.HasIdentifier(rec.Identifier) {
			matched[rec.Identifier] = struct{}{}
		} else {
			unmatched[rec.Identifier] = struct{}{}
		}
	}
	res.MatchedIdentifiers = sortedKeys(matched)
	res.UnmatchedIdentifiers = sortedKeys(unmatched)
	if len(res.UnmatchedIdentifiers) > 0 {
		res.IdentifiersClean = false
	}

	rows := l.Records()
	for _, rec := range records {
		p := Pairing{
			Identifier:      rec.Identifier,
			CompanyName:     rec.CompanyName,
			FormattedAmount: rec.FormattedAmount,
			Date:            rec.Date.Format("2006-01-02"),
			Document:        rec.Document,
		}
		amount, err := parse.NormalizeAmount(rec.FormattedAmount, e.symbol)
		if err != nil {
			e.logger.Warn("record amount could not be normalized", "unique_id", rec.Identifier, "amount", rec.FormattedAmount, "error", err)
			res.UnmatchedPairs = append(res.UnmatchedPairs, p)
			res.PairingsClean = false
			continue
		}
		p.Amount = amount
		if hasPairing(rows, rec.CompanyName, amount) {
			res.MatchedPairs = append(res.MatchedPairs, p)
		} else {
			res.UnmatchedPairs = append(res.UnmatchedPairs, p)
			res.PairingsClean = false
		}
	}

	e.logger.Debug("reconciliation complete",
		"records", len(records),
		"unmatched_identifiers", len(res.UnmatchedIdentifiers),
		"unmatched_pairs", len(res.UnmatchedPairs))
	return res
}

// hasPairing scans every ledger row; batches and ledgers are small.
func hasPairing(rows []entity.LedgerRecord, company string, amount decimal.Decimal) bool {
	for _, row := range rows {
		if row.AmountValid && row.CompanyName == company && row.Amount.Equal(amount) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
