// Package parse turns extracted bill text into typed records using a fixed
// label layout (Unique ID:, Company Name:, Date:, Total:).
package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
)

// Field names reported in IncompleteError.Missing.
const (
	FieldIdentifier  = "identifier"
	FieldCompanyName = "company_name"
	FieldDate        = "date"
	FieldAmount      = "amount"
)

var (
	reIdentifier = regexp.MustCompile(`Unique ID:\s*(\w+)`)
	reCompany    = regexp.MustCompile(`(?s)Company Name:\s*(.*?)\s*Date:`)
	reDate       = regexp.MustCompile(`Date:\s*(\d{4}-\d{2}-\d{2})`)
	reTotal      = regexp.MustCompile(`Total:\s*([\d,]+(?:\.\d+)?)`)
)

// an empty Unique ID label must not capture the label that follows it
var reLabel = regexp.MustCompile(`^(?:Unique ID|Company Name|Date|Serial Number|Products/Services|Total):`)

// IncompleteError reports which mandatory fields could not be extracted.
// Identifier is set when the Unique ID label was found, so callers can still
// run the integrity check.
type IncompleteError struct {
	Missing    []string
	Identifier string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("missing fields: %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return common.ErrIncompleteExtraction }

// Parser is a pure function of its input text; it holds only the display symbol.
type Parser struct {
	symbol string
}

func NewParser(symbol string) *Parser {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	return &Parser{symbol: symbol}
}

// Parse extracts all four mandatory fields or none. A malformed date counts as
// absent.
func (p *Parser) Parse(text string) (entity.ExtractedRecord, error) {
	id := Identifier(text)
	company := firstGroup(reCompany, text)
	date, dateOK := parseDate(firstGroup(reDate, text))
	amount, amountOK := parseTotal(firstGroup(reTotal, text))

	var missing []string
	if id == "" {
		missing = append(missing, FieldIdentifier)
	}
	if company == "" {
		missing = append(missing, FieldCompanyName)
	}
	if !dateOK {
		missing = append(missing, FieldDate)
	}
	if !amountOK {
		missing = append(missing, FieldAmount)
	}
	if len(missing) > 0 {
		return entity.ExtractedRecord{}, &IncompleteError{Missing: missing, Identifier: id}
	}

	return entity.ExtractedRecord{
		Identifier:      id,
		CompanyName:     company,
		Amount:          amount,
		FormattedAmount: FormatAmount(amount, p.symbol),
		Date:            date,
	}, nil
}

// Identifier returns the first word after the Unique ID label, which may sit
// on the following line, or "".
func Identifier(text string) string {
	m := reIdentifier.FindStringSubmatchIndex(text)
	if m == nil || reLabel.MatchString(text[m[2]:]) {
		return ""
	}
	return text[m[2]:m[3]]
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(constants.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseTotal(s string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
