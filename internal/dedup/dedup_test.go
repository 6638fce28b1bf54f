package dedup

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
)

func record(id, company, amount, formatted, date, doc string) entity.ExtractedRecord {
	d, _ := time.Parse("2006-01-02", date)
	return entity.ExtractedRecord{
		Identifier:      id,
		CompanyName:     company,
		Amount:          decimal.RequireFromString(amount),
		FormattedAmount: formatted,
		Date:            d,
		Document:        doc,
	}
}

func TestBuilderKeepsFirstOccurrence(t *testing.T) {
	b := NewBuilder()
	first := record("A1", "Acme", "100", "₹100.00", "2024-01-02", "one.pdf")
	require.NoError(t, b.Add(first))

	err := b.Add(record("A1", "Acme", "100", "₹100.00", "2024-01-02", "two.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateRecord))

	var dupErr *DuplicateError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "one.pdf", dupErr.FirstDocument)
	assert.Equal(t, first.Key(), dupErr.Key)

	require.Equal(t, 1, b.Len())
	assert.Equal(t, "one.pdf", b.Records()[0].Document)
}

func TestBuilderDistinctKeys(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(record("A1", "Acme", "100", "₹100.00", "2024-01-02", "a")))
	// any differing field makes a new key
	require.NoError(t, b.Add(record("A2", "Acme", "100", "₹100.00", "2024-01-02", "b")))
	require.NoError(t, b.Add(record("A1", "Acme Ltd", "100", "₹100.00", "2024-01-02", "c")))
	require.NoError(t, b.Add(record("A1", "Acme", "101", "₹101.00", "2024-01-02", "d")))
	require.NoError(t, b.Add(record("A1", "Acme", "100", "₹100.00", "2024-01-03", "e")))
	assert.Equal(t, 5, b.Len())
}

func TestBuilderKeyUsesFormattedAmount(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(record("A1", "Acme", "100", "₹100.00", "2024-01-02", "a")))
	require.NoError(t, b.Add(record("A1", "Acme", "100", "100.00", "2024-01-02", "b")))
	assert.Equal(t, 2, b.Len())
}

func TestBuilderSorted(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Add(record("C", "Zeta", "1", "₹1.00", "2024-02-01", "c")))
	require.NoError(t, b.Add(record("B", "Beta", "1", "₹1.00", "2024-01-15", "b")))
	require.NoError(t, b.Add(record("A", "Alpha", "1", "₹1.00", "2024-01-15", "a")))
	require.NoError(t, b.Add(record("D", "Alpha", "2", "₹2.00", "2024-01-15", "d")))

	var docs []string
	for _, r := range b.Sorted() {
		docs = append(docs, r.Document)
	}
	assert.Equal(t, []string{"a", "d", "b", "c"}, docs)

	var inserted []string
	for _, r := range b.Records() {
		inserted = append(inserted, r.Document)
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, inserted)
}

func TestEmptyBuilder(t *testing.T) {
	b := NewBuilder()
	assert.Empty(t, b.Records())
	assert.Empty(t, b.Sorted())
}
