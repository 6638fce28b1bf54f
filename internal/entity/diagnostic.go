package entity

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/audity/constants"
)

// Diagnostic is a caller-visible message describing a non-fatal failure or check outcome.
type Diagnostic struct {
	Kind        constants.DiagnosticKind `json:"kind"`
	Severity    constants.Severity       `json:"severity"`
	Document    string                   `json:"document,omitempty"`
	Identifier  string                   `json:"unique_id,omitempty"`
	CompanyName string                   `json:"company_name,omitempty"`
	Date        string                   `json:"date,omitempty"`
	Message     string                   `json:"message"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Kind, d.Message)
	if d.Document != "" {
		fmt.Fprintf(&b, " (document=%s)", d.Document)
	}
	return b.String()
}
