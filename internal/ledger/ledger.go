// Package ledger loads the trusted reference ledger of issued bills. A Ledger is
// read-only once loaded.
package ledger

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/parse"
)

// Ledger is the sorted, indexed set of reference rows.
type Ledger struct {
	records []entity.LedgerRecord
	hasHash bool
	byID    map[string]int
	// Warnings lists rows that were loaded but can never pair (bad amount).
	Warnings []string
}

type options struct {
	symbol string
	logger *slog.Logger
}

type Option func(*options)

// WithCurrencySymbol sets the symbol stripped from the Amount column.
func WithCurrencySymbol(s string) Option {
	return func(o *options) {
		if s != "" {
			o.symbol = s
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

var dateLayouts = []string{
	constants.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
}

// FromRows builds a ledger from a header row followed by data rows. Header
// names are trimmed; unknown columns are ignored.
func FromRows(rows [][]string, opts ...Option) (*Ledger, error) {
	o := options{symbol: constants.DefaultCurrencySymbol, logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	if len(rows) == 0 {
		return nil, common.NewAppError("LEDGER_ERROR", "ledger has no header row", common.ErrInvalidInput)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range constants.RequiredLedgerColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, common.NewAppError("LEDGER_ERROR",
			fmt.Sprintf("ledger is missing columns: %s", strings.Join(missing, ", ")), common.ErrInvalidInput)
	}
	hashCol, hasHash := cols[constants.ColPDFHash]

	l := &Ledger{hasHash: hasHash, byID: make(map[string]int)}
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		rec := entity.LedgerRecord{
			Identifier:  cell(cols[constants.ColUniqueID]),
			CompanyName: cell(cols[constants.ColCompanyName]),
			Date:        parseLedgerDate(cell(cols[constants.ColDate])),
			AmountRaw:   cell(cols[constants.ColAmount]),
		}
		if hasHash {
			rec.DocumentHash = cell(hashCol)
		}
		if amt, err := parse.NormalizeAmount(rec.AmountRaw, o.symbol); err == nil {
			rec.Amount = amt
			rec.AmountValid = true
		} else {
			msg := fmt.Sprintf("row %d (%s): unusable amount %q", n+2, rec.Identifier, rec.AmountRaw)
			l.Warnings = append(l.Warnings, msg)
			o.logger.Warn("ledger row has unusable amount", "row", n+2, "unique_id", rec.Identifier, "amount", rec.AmountRaw)
		}
		l.records = append(l.records, rec)
	}

	sortRecords(l.records)
	for i, r := range l.records {
		if _, seen := l.byID[r.Identifier]; !seen {
			l.byID[r.Identifier] = i
		}
	}
	o.logger.Debug("ledger loaded", "rows", len(l.records), "has_hash", hasHash)
	return l, nil
}

// sortRecords orders by (date, company name); rows without a usable date go last.
func sortRecords(recs []entity.LedgerRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Date.IsZero() != b.Date.IsZero() {
			return !a.Date.IsZero()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.CompanyName < b.CompanyName
	})
}

func parseLedgerDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Records returns the rows sorted by (date, company name).
func (l *Ledger) Records() []entity.LedgerRecord {
	out := make([]entity.LedgerRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len is the number of rows.
func (l *Ledger) Len() int { return len(l.records) }

// HasHashColumn reports whether the ledger carries document hashes.
func (l *Ledger) HasHashColumn() bool { return l.hasHash }

// Lookup returns the first row (in sorted order) with the given identifier.
func (l *Ledger) Lookup(id string) (entity.LedgerRecord, bool) {
	i, ok := l.byID[id]
	if !ok {
		return entity.LedgerRecord{}, false
	}
	return l.records[i], true
}

// HasIdentifier reports whether any row carries id.
func (l *Ledger) HasIdentifier(id string) bool {
	_, ok := l.byID[id]
	return ok
}
