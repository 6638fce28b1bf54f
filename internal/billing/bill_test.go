package billing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/integrity"
	"github.com/joseph-ayodele/audity/internal/ledger"
	"github.com/joseph-ayodele/audity/internal/ocr"
	"github.com/joseph-ayodele/audity/internal/parse"
)

var issuedAt = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func items() []Item {
	return []Item{
		{Name: "Consulting", Price: decimal.RequireFromString("750.50")},
		{Name: "Support", Price: decimal.RequireFromString("249.50")},
	}
}

func TestNewUniqueID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-F]{10}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewUniqueID()
		assert.Regexp(t, re, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestValidatePAN(t *testing.T) {
	assert.NoError(t, ValidatePAN("ABCDE1234F"))
	for _, bad := range []string{"", "abcde1234f", "ABCD1234F", "ABCDE12345", "ABCDE1234FG"} {
		err := ValidatePAN(bad)
		assert.ErrorIs(t, err, common.ErrInvalidInput, bad)
	}
}

func TestNewBill(t *testing.T) {
	b, err := NewBill("  Acme Corp ", "ABCDE1234F", items(), issuedAt)
	require.NoError(t, err)

	assert.Len(t, b.UniqueID, IDLength)
	assert.Equal(t, "Acme Corp", b.CompanyName)
	assert.Equal(t, "SN1709289000", b.SerialNumber)
	assert.True(t, b.Total.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, []string{
		"Unique ID: " + b.UniqueID,
		"Company Name: Acme Corp",
		"Date: 2024-03-01",
		"Serial Number: SN1709289000",
		"Products/Services:",
		"Consulting - 750.50",
		"Support - 249.50",
		"Total: 1000.00",
	}, b.Lines())
}

func TestNewBillRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		company string
		pan     string
		items   []Item
		field   string
	}{
		{"missing company", " ", "ABCDE1234F", items(), "company_name"},
		{"bad pan", "Acme", "ABC", items(), "pan_number"},
		{"no items", "Acme", "ABCDE1234F", nil, "items"},
		{"negative price", "Acme", "ABCDE1234F", []Item{{Name: "Refund", Price: decimal.NewFromInt(-5)}}, "items[0].price"},
		{"unnamed item", "Acme", "ABCDE1234F", []Item{{Price: decimal.NewFromInt(5)}}, "items[0].name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBill(tt.company, tt.pan, tt.items, issuedAt)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Contains(t, err.Error(), "'"+tt.field+"'")
		})
	}
}

func TestFreeItemIsAllowed(t *testing.T) {
	b, err := NewBill("Acme", "ABCDE1234F", []Item{{Name: "Sample", Price: decimal.Zero}}, issuedAt)
	require.NoError(t, err)
	assert.True(t, b.Total.IsZero())
	assert.Equal(t, "Total: 0.00", b.Lines()[len(b.Lines())-1])
}

func TestTextParsesBack(t *testing.T) {
	b, err := NewBill("Acme Corp", "ABCDE1234F", items(), issuedAt)
	require.NoError(t, err)

	rec, err := parse.NewParser("").Parse(b.Text())
	require.NoError(t, err)
	assert.Equal(t, b.UniqueID, rec.Identifier)
	assert.Equal(t, "Acme Corp", rec.CompanyName)
	assert.Equal(t, "₹1,000.00", rec.FormattedAmount)
}

func TestPDFRoundTrip(t *testing.T) {
	b, err := NewBill("Acme Corp", "ABCDE1234F", items(), issuedAt)
	require.NoError(t, err)

	doc, err := b.PDF()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	path := filepath.Join(t.TempDir(), "bill_"+b.UniqueID+".pdf")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	res, err := ocr.NewExtractor(ocr.Config{}, nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)

	rec, err := parse.NewParser("").Parse(res.Text)
	require.NoError(t, err)
	assert.Equal(t, b.UniqueID, rec.Identifier)
	assert.Equal(t, "Acme Corp", rec.CompanyName)
	assert.Equal(t, "2024-03-01", rec.Date.Format("2006-01-02"))
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(1000)))
}

func TestAppendLedgerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billing_records.csv")

	first, err := NewBill("Acme Corp", "ABCDE1234F", items(), issuedAt)
	require.NoError(t, err)
	second, err := NewBill("Globex", "PQRSX6789Z", []Item{{Name: "Audit", Price: decimal.NewFromInt(2500)}}, issuedAt.AddDate(0, 0, 1))
	require.NoError(t, err)

	doc, err := first.PDF()
	require.NoError(t, err)
	hash, err := integrity.Digest(bytes.NewReader(doc), 0)
	require.NoError(t, err)

	require.NoError(t, AppendLedgerRow(path, first, hash))
	require.NoError(t, AppendLedgerRow(path, second, ""))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Unique ID,Date,serial_number,Amount,pan_number,Company Name,PDF Hash", lines[0])

	l, err := ledger.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.HasHashColumn())

	got, ok := l.Lookup(first.UniqueID)
	require.True(t, ok)
	assert.True(t, got.AmountValid)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1000)))

	res, err := integrity.NewVerifier(0).Verify(bytes.NewReader(doc), first.UniqueID, l)
	require.NoError(t, err)
	assert.Equal(t, integrity.Matched, res.Outcome)

	res, err = integrity.NewVerifier(0).Verify(bytes.NewReader(doc), second.UniqueID, l)
	require.NoError(t, err)
	assert.Equal(t, integrity.NoStoredHash, res.Outcome)
}
