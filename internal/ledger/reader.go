package ledger

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

// Load reads a ledger from a .csv or .xlsx file.
func Load(path string, opts ...Option) (*Ledger, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(file, opts...)
	case ".xlsx":
		return ReadXLSX(file, opts...)
	default:
		return nil, common.NewAppError("LEDGER_ERROR", "unsupported ledger file type: "+filepath.Ext(path), common.ErrInvalidInput)
	}
}

// ReadCSV parses a comma separated ledger with a header row.
func ReadCSV(r io.Reader, opts ...Option) (*Ledger, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading ledger csv: %w", err)
	}
	return FromRows(rows, opts...)
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader, opts ...Option) (*Ledger, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open ledger workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.NewAppError("LEDGER_ERROR", "workbook has no sheets", common.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return FromRows(rows, opts...)
}
