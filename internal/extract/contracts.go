package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/audity/internal/entity"
)

// TextExtractor is Stage 1: file -> text.
//
//go:generate mockgen -destination=mocks/mock_contracts.go -source=contracts.go
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE"
	Method     string // "pdf-text" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// FieldExtractor is Stage 2: text -> record. Implementations return a
// *parse.IncompleteError when any field is missing.
type FieldExtractor interface {
	Parse(text string) (entity.ExtractedRecord, error)
}
