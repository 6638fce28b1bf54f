package billing

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/joseph-ayodele/audity/constants"
)

// LedgerHeader is the column order of the billing ledger file.
var LedgerHeader = []string{
	constants.ColUniqueID,
	constants.ColDate,
	constants.ColSerial,
	constants.ColAmount,
	constants.ColPAN,
	constants.ColCompanyName,
	constants.ColPDFHash,
}

// LedgerRow returns the bill's ledger entry. hash may be empty.
func (b Bill) LedgerRow(hash string) []string {
	return []string{
		b.UniqueID,
		b.Date.Format(constants.DateLayout),
		b.SerialNumber,
		b.Total.StringFixed(2),
		b.PAN,
		b.CompanyName,
		hash,
	}
}

// AppendLedgerRow appends the bill to the CSV ledger at path, writing the
// header first when the file is new or empty.
func AppendLedgerRow(path string, b Bill, hash string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(LedgerHeader); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Write(b.LedgerRow(hash)); err != nil {
		_ = f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write ledger row: %w", err)
	}
	return f.Close()
}
