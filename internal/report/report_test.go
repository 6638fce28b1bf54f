package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/ledger"
	"github.com/joseph-ayodele/audity/internal/ocr"
)

const ledgerCSV = "Unique ID,Company Name,Amount,Date,\n" +
	"A1,Acme,1000,2024-01-01,\n" +
	"B2,,NA,2024-01-02,x\n" +
	",,,,\n" +
	"C3,Globex,250.50\n"

func TestSummarizeCSV(t *testing.T) {
	rep, err := SummarizeCSV(strings.NewReader(ledgerCSV))
	require.NoError(t, err)
	require.Len(t, rep.Sheets, 1)

	s := rep.Sheets[0]
	assert.Equal(t, "Data", s.Name)
	assert.Equal(t, 3, s.RowCount)
	assert.Equal(t, 5, s.ColumnCount)
	assert.Equal(t, []string{"Unique ID", "Company Name", "Amount", "Date", "Unnamed: 4"}, s.Columns)
	assert.Equal(t, map[string]int{
		"Unique ID":    0,
		"Company Name": 1,
		"Amount":       1,
		"Date":         1,
		"Unnamed: 4":   2,
	}, s.MissingValues)
	assert.Equal(t, 3, rep.TotalRows())
}

func TestSummarizeXLSXAllSheets(t *testing.T) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(first, "A1", &[]any{"Unique ID", "Amount"}))
	require.NoError(t, f.SetSheetRow(first, "A2", &[]any{"A1", 10}))
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Second", "A1", &[]any{"Name"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rep, err := SummarizeXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rep.Sheets, 2)
	assert.Equal(t, first, rep.Sheets[0].Name)
	assert.Equal(t, 1, rep.Sheets[0].RowCount)
	assert.Equal(t, "Second", rep.Sheets[1].Name)
	assert.Equal(t, 0, rep.Sheets[1].RowCount)
	assert.Equal(t, 1, rep.Sheets[1].ColumnCount)
}

func TestSummarizeRejectsOtherTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, err := Summarize(path)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBuildOverview(t *testing.T) {
	l, err := ledger.ReadCSV(strings.NewReader("Unique ID,Company Name,Amount,Date\n" +
		"A,Acme,100,2024-01-01\nB,Globex,300,2024-01-02\nC,Acme,50.50,2024-01-03\nD,Bad,oops,2024-01-04\n"))
	require.NoError(t, err)

	ov := BuildOverview(l, 1)
	assert.Equal(t, 3, ov.Transactions)
	assert.True(t, ov.Highest.Equal(decimal.NewFromInt(300)))
	assert.True(t, ov.Lowest.Equal(decimal.RequireFromString("50.50")))
	assert.True(t, ov.Total.Equal(decimal.RequireFromString("450.50")))
	assert.True(t, ov.Average.Equal(decimal.RequireFromString("150.17")))
	require.Len(t, ov.ByCompany, 1)
	assert.Equal(t, "Globex", ov.ByCompany[0].CompanyName)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "billing_records.csv")
	require.NoError(t, os.WriteFile(src, []byte(ledgerCSV), 0o644))

	out, err := NewGenerator(nil).Generate(context.Background(), src, filepath.Join(dir, "report"))
	require.NoError(t, err)

	f, err := excelize.OpenFile(out.SummaryXLSX)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Data", "3", "5"}, rows[1][:3])

	res, err := ocr.NewExtractor(ocr.Config{}, nil).Extract(context.Background(), out.ReportPDF)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Final Audit Report")
	assert.Contains(t, res.Text, "Total Number of Transactions: 2")
	assert.Contains(t, res.Text, "Acme - Rs. 1,000.00")
}

func TestGenerateUsesCurrencySymbol(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ledger.csv")
	csv := "Unique ID,Company Name,Amount,Date\n" +
		"A1,Acme,\"$1,000.00\",2024-01-01\n" +
		"B2,Globex,$250.50,2024-01-02\n"
	require.NoError(t, os.WriteFile(src, []byte(csv), 0o644))

	gen := NewGenerator(nil)
	gen.CurrencySymbol = "$"
	out, err := gen.Generate(context.Background(), src, filepath.Join(dir, "report"))
	require.NoError(t, err)

	res, err := ocr.NewExtractor(ocr.Config{}, nil).Extract(context.Background(), out.ReportPDF)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Total Number of Transactions: 2")
	assert.Contains(t, res.Text, "Acme - Rs. 1,000.00")
	assert.Contains(t, res.Text, "Globex - Rs. 250.50")
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator(nil).Generate(ctx, "unused.csv", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
