// Package export writes a run's unique records and diagnostics as CSV and
// XLSX, plus a schema-checked JSON summary.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/pipeline"
)

const (
	SheetRecords     = "Parsed Data"
	SheetDiagnostics = "Diagnostics"
)

// RecordHeaders is the column order of exported records.
var RecordHeaders = []string{constants.ColUniqueID, constants.ColCompanyName, constants.ColAmount, constants.ColDate}

var diagnosticHeaders = []string{"Kind", "Severity", "Document", constants.ColUniqueID, constants.ColCompanyName, constants.ColDate, "Message"}

// Service produces export files for a finished run.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Paths lists the files written by WriteAll.
type Paths struct {
	RecordsCSV  string
	RecordsXLSX string
	SummaryJSON string
}

// WriteAll writes records.csv, records.xlsx and summary.json into dir.
func (s *Service) WriteAll(dir string, res *pipeline.RunResult) (Paths, error) {
	start := time.Now()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}
	out := Paths{
		RecordsCSV:  filepath.Join(dir, "records.csv"),
		RecordsXLSX: filepath.Join(dir, "records.xlsx"),
		SummaryJSON: filepath.Join(dir, "summary.json"),
	}

	f, err := os.Create(out.RecordsCSV)
	if err != nil {
		return out, err
	}
	if err := WriteRecordsCSV(f, res.Records); err != nil {
		_ = f.Close()
		return out, err
	}
	if err := f.Close(); err != nil {
		return out, err
	}

	xlsx, err := s.RecordsXLSX(res)
	if err != nil {
		return out, err
	}
	if err := os.WriteFile(out.RecordsXLSX, xlsx, 0o644); err != nil {
		return out, err
	}

	summary, err := SummaryJSON(res)
	if err != nil {
		return out, err
	}
	if err := os.WriteFile(out.SummaryJSON, summary, 0o644); err != nil {
		return out, err
	}

	s.logger.Info("export written",
		"dir", dir,
		"records", len(res.Records),
		"diagnostics", len(res.Diagnostics),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// WriteRecordsCSV writes the header and one row per record.
func WriteRecordsCSV(w io.Writer, recs []entity.ExtractedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordHeaders); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(recordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordRow(r entity.ExtractedRecord) []string {
	return []string{r.Identifier, r.CompanyName, r.FormattedAmount, r.Date.Format(constants.DateLayout)}
}

// RecordsXLSX returns a workbook (as bytes) with the records and diagnostics.
func (s *Service) RecordsXLSX(res *pipeline.RunResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	// rename the default sheet so the records come first
	if err := f.SetSheetName(f.GetSheetName(0), SheetRecords); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetDiagnostics); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(res.Records))
	for _, r := range res.Records {
		rows = append(rows, recordRow(r))
	}
	if err := writeSheet(f, SheetRecords, RecordHeaders, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetRecords, "A", "A", 14)
	_ = f.SetColWidth(SheetRecords, "B", "B", 32)
	_ = f.SetColWidth(SheetRecords, "C", "D", 16)

	rows = rows[:0]
	for _, d := range res.Diagnostics {
		rows = append(rows, []string{string(d.Kind), string(d.Severity), d.Document, d.Identifier, d.CompanyName, d.Date, d.Message})
	}
	if err := writeSheet(f, SheetDiagnostics, diagnosticHeaders, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetDiagnostics, "A", "A", 24)
	_ = f.SetColWidth(SheetDiagnostics, "G", "G", 80)

	idx, _ := f.GetSheetIndex(SheetRecords)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
