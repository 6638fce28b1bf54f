package parse

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders d with two decimals, the currency symbol and Indian
// digit grouping (last three digits, then pairs): 1234567.5 -> ₹12,34,567.50.
func FormatAmount(d decimal.Decimal, symbol string) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString(symbol)
	b.WriteString(groupDigits(intPart))
	b.WriteString(".")
	b.WriteString(frac)
	return b.String()
}

func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

// NormalizeAmount strips the currency symbol and thousands separators from a
// formatted amount and parses what is left as an exact decimal.
func NormalizeAmount(s, symbol string) (decimal.Decimal, error) {
	cleaned := s
	if symbol != "" {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",", ""))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount %q", s)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}
