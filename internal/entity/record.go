package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedRecord is a fully parsed bill. All fields are mandatory.
type ExtractedRecord struct {
	Identifier      string          `json:"unique_id"`
	CompanyName     string          `json:"company_name"`
	Amount          decimal.Decimal `json:"amount"`
	FormattedAmount string          `json:"formatted_amount"`
	Date            time.Time       `json:"date"`
	Document        string          `json:"document,omitempty"`
}

// UniquenessKey identifies a logical record within a batch.
type UniquenessKey struct {
	Identifier      string
	CompanyName     string
	FormattedAmount string
	Date            string
}

// Key returns the record's uniqueness key. The amount participates in its
// formatted form, so equal values with different renderings do not collide.
func (r ExtractedRecord) Key() UniquenessKey {
	return UniquenessKey{
		Identifier:      r.Identifier,
		CompanyName:     r.CompanyName,
		FormattedAmount: r.FormattedAmount,
		Date:            r.Date.Format("2006-01-02"),
	}
}

// LedgerRecord is one row of the trusted reference ledger.
type LedgerRecord struct {
	Identifier   string          `json:"unique_id"`
	CompanyName  string          `json:"company_name"`
	Date         time.Time       `json:"date"`
	AmountRaw    string          `json:"amount_raw"`
	Amount       decimal.Decimal `json:"amount"`
	AmountValid  bool            `json:"amount_valid"`
	DocumentHash string          `json:"pdf_hash,omitempty"`
}
