package billing

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// PDF renders the bill as a single A4 page, one line per label.
func (b Bill) PDF() ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bill "+b.UniqueID, false)
	pdf.SetCreationDate(b.Date)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	for _, line := range b.Lines() {
		pdf.CellFormat(190, 10, tr(line), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render bill %s: %w", b.UniqueID, err)
	}
	return buf.Bytes(), nil
}
