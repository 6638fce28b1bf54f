// Package dedup accumulates extracted records for a batch, keeping the first
// occurrence of each uniqueness key.
package dedup

import (
	"fmt"
	"sort"

	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
)

// DuplicateError reports a record whose key was already accepted.
type DuplicateError struct {
	Key entity.UniquenessKey
	// FirstDocument is the document that supplied the kept record.
	FirstDocument string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record %s/%s/%s/%s (first seen in %s)",
		e.Key.Identifier, e.Key.CompanyName, e.Key.FormattedAmount, e.Key.Date, e.FirstDocument)
}

func (e *DuplicateError) Unwrap() error { return common.ErrDuplicateRecord }

// Builder is not safe for concurrent use.
type Builder struct {
	seen    map[entity.UniquenessKey]int
	records []entity.ExtractedRecord
}

func NewBuilder() *Builder {
	return &Builder{seen: make(map[entity.UniquenessKey]int)}
}

// Add accepts rec unless a record with the same key was added before.
func (b *Builder) Add(rec entity.ExtractedRecord) error {
	key := rec.Key()
	if i, dup := b.seen[key]; dup {
		return &DuplicateError{Key: key, FirstDocument: b.records[i].Document}
	}
	b.seen[key] = len(b.records)
	b.records = append(b.records, rec)
	return nil
}

func (b *Builder) Len() int { return len(b.records) }

// Records returns accepted records in insertion order.
func (b *Builder) Records() []entity.ExtractedRecord {
	out := make([]entity.ExtractedRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Sorted returns accepted records ordered by (date, company name). Ties keep
// insertion order.
func (b *Builder) Sorted() []entity.ExtractedRecord {
	out := b.Records()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CompanyName < out[j].CompanyName
	})
	return out
}
