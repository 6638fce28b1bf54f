package constants

// Ledger and output column headers.
const (
	ColUniqueID    = "Unique ID"
	ColCompanyName = "Company Name"
	ColAmount      = "Amount"
	ColDate        = "Date"
	ColPDFHash     = "PDF Hash"
	ColSerial      = "serial_number"
	ColPAN         = "pan_number"
)

// RequiredLedgerColumns must be present in every reference ledger.
var RequiredLedgerColumns = []string{ColUniqueID, ColCompanyName, ColAmount, ColDate}

// DefaultCurrencySymbol is the display symbol for formatted amounts.
const DefaultCurrencySymbol = "₹"

// DateLayout is the only accepted date shape on documents.
const DateLayout = "2006-01-02"
