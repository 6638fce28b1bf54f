// Package report summarizes a ledger-shaped spreadsheet and renders the audit
// report. The pipeline decides whether to call it; this package only renders.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/audity/internal/common"
)

// SheetSummary describes one sheet of the source file.
type SheetSummary struct {
	Name          string         `json:"name"`
	RowCount      int            `json:"row_count"`
	ColumnCount   int            `json:"column_count"`
	Columns       []string       `json:"columns"`
	MissingValues map[string]int `json:"missing_values"`
}

type Report struct {
	Source string         `json:"source"`
	Sheets []SheetSummary `json:"sheets"`
}

// TotalRows is the row count across all sheets.
func (r Report) TotalRows() int {
	n := 0
	for _, s := range r.Sheets {
		n += s.RowCount
	}
	return n
}

// csvSheetName is the single sheet name used for CSV sources.
const csvSheetName = "Data"

// missing markers follow the usual spreadsheet-tool defaults
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// Summarize reads a .csv or .xlsx file and summarizes every sheet.
func Summarize(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer f.Close()

	var rep Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rep, err = SummarizeCSV(f)
	case ".xlsx":
		rep, err = SummarizeXLSX(f)
	default:
		return Report{}, common.NewAppError("REPORT_ERROR",
			"unsupported file type, expected .xlsx or .csv: "+filepath.Base(path), common.ErrInvalidInput)
	}
	rep.Source = path
	return rep, err
}

func SummarizeCSV(r io.Reader) (Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Report{}, fmt.Errorf("read csv: %w", err)
	}
	return Report{Sheets: []SheetSummary{summarizeRows(csvSheetName, rows)}}, nil
}

func SummarizeXLSX(r io.Reader) (Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Report{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var rep Report
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return Report{}, fmt.Errorf("read sheet %s: %w", name, err)
		}
		rep.Sheets = append(rep.Sheets, summarizeRows(name, rows))
	}
	return rep, nil
}

// summarizeRows treats the first row as the header. Blank rows are skipped
// and short rows count their absent cells as missing.
func summarizeRows(name string, rows [][]string) SheetSummary {
	s := SheetSummary{Name: name, MissingValues: map[string]int{}}
	if len(rows) == 0 {
		return s
	}
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		s.Columns = append(s.Columns, h)
		s.MissingValues[h] = 0
	}
	s.ColumnCount = len(s.Columns)

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		s.RowCount++
		for i, col := range s.Columns {
			if i >= len(row) {
				s.MissingValues[col]++
				continue
			}
			if _, na := naValues[row[i]]; na {
				s.MissingValues[col]++
			}
		}
	}
	return s
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
