// Package billing issues bills: identifiers, validation, the label-layout
// document, and the ledger row the audit later reconciles against.
package billing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
)

// IDLength is the length of a bill identifier.
const IDLength = 10

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

type Item struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Bill struct {
	UniqueID     string          `json:"unique_id"`
	CompanyName  string          `json:"company_name"`
	PAN          string          `json:"pan_number"`
	SerialNumber string          `json:"serial_number"`
	Date         time.Time       `json:"date"`
	Items        []Item          `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

// NewUniqueID returns 10 uppercase hex characters taken from a random UUID.
func NewUniqueID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return id[:IDLength]
}

// ValidatePAN checks the ABCDE1234F layout.
func ValidatePAN(pan string) error {
	return common.NewValidator().
		Field("pan_number", pan, common.Required, common.Matches(panPattern, "ABCDE1234F")).
		Error()
}

// NewBill validates the inputs and assembles a bill dated now. The total is
// the sum of the item prices.
func NewBill(company, pan string, items []Item, now time.Time) (Bill, error) {
	company = strings.TrimSpace(company)
	v := common.NewValidator().
		Field("company_name", company, common.Required, common.MaxLength(200)).
		Field("pan_number", pan, common.Required, common.Matches(panPattern, "ABCDE1234F"))
	if len(items) == 0 {
		v.Field("items", nil, common.Required)
	}
	total := decimal.Zero
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		v.Field(field+".name", it.Name, common.Required, common.MaxLength(120))
		if it.Price.IsNegative() {
			v.Field(field+".price", it.Price.String(), nonNegative)
		}
		total = total.Add(it.Price)
	}
	if err := v.Error(); err != nil {
		return Bill{}, err
	}

	return Bill{
		UniqueID:     NewUniqueID(),
		CompanyName:  company,
		PAN:          pan,
		SerialNumber: fmt.Sprintf("SN%d", now.Unix()),
		Date:         now,
		Items:        items,
		Total:        total,
	}, nil
}

func nonNegative(fieldName string, value interface{}) *common.ValidationError {
	return &common.ValidationError{Field: fieldName, Value: value, Message: "must not be negative"}
}

// Lines is the label layout printed on the bill, one entry per line.
func (b Bill) Lines() []string {
	lines := []string{
		"Unique ID: " + b.UniqueID,
		"Company Name: " + b.CompanyName,
		"Date: " + b.Date.Format(constants.DateLayout),
		"Serial Number: " + b.SerialNumber,
		"Products/Services:",
	}
	for _, it := range b.Items {
		lines = append(lines, fmt.Sprintf("%s - %s", it.Name, it.Price.StringFixed(2)))
	}
	return append(lines, "Total: "+b.Total.StringFixed(2))
}

// Text is the bill as plain text.
func (b Bill) Text() string {
	return strings.Join(b.Lines(), "\n") + "\n"
}
