package constants

// DiagnosticKind is the canonical category of a caller-visible diagnostic.
type DiagnosticKind string

// Stable values (these exact strings are persisted in run history).
const (
	DiagUnsupportedDocument  DiagnosticKind = "UNSUPPORTED_DOCUMENT"
	DiagUnreadableDocument   DiagnosticKind = "UNREADABLE_DOCUMENT"
	DiagExtractionFailed     DiagnosticKind = "EXTRACTION_FAILED"
	DiagIncompleteExtraction DiagnosticKind = "INCOMPLETE_EXTRACTION"
	DiagDuplicateRecord      DiagnosticKind = "DUPLICATE_RECORD"
	DiagHashMatched          DiagnosticKind = "HASH_MATCHED"
	DiagHashMismatch         DiagnosticKind = "HASH_MISMATCH"
	DiagNoStoredHash         DiagnosticKind = "NO_STORED_HASH"
	DiagIdentifierNotFound   DiagnosticKind = "IDENTIFIER_NOT_FOUND"
	DiagUnmatchedIdentifier  DiagnosticKind = "UNMATCHED_IDENTIFIER"
	DiagUnmatchedPairing     DiagnosticKind = "UNMATCHED_PAIRING"
	DiagEmptyBatch           DiagnosticKind = "EMPTY_BATCH"
)

// Severity of a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)
