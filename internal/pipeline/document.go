package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/dedup"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/integrity"
	"github.com/joseph-ayodele/audity/internal/parse"
)

// processDocument owns the document's temp file for the whole of extraction
// and hashing; the file is removed before it returns.
func (p *Processor) processDocument(ctx context.Context, doc entity.SourceDocument, builder *dedup.Builder) (DocumentResult, []entity.Diagnostic) {
	log := common.LoggerFromContext(ctx, p.Logger)
	out := DocumentResult{Document: doc.Filename, Format: doc.Format}
	base := entity.Diagnostic{Document: doc.Filename, Severity: constants.SeverityWarning}

	if doc.Format == "" {
		out.Status = StatusUnsupported
		d := base
		d.Kind = constants.DiagUnsupportedDocument
		d.Message = fmt.Sprintf("unsupported document type %q", filepath.Ext(doc.Filename))
		return out, []entity.Diagnostic{d}
	}

	tmpPath, err := p.stage(doc)
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		d := base
		d.Kind = constants.DiagExtractionFailed
		d.Message = "could not stage document: " + err.Error()
		return out, []entity.Diagnostic{d}
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove temp file", "path", tmpPath, "error", err)
		}
	}()

	text, err := p.Text.Extract(ctx, tmpPath)
	if err != nil {
		out.Error = err.Error()
		d := base
		switch {
		case errors.Is(err, common.ErrUnreadableDocument):
			out.Status = StatusUnreadable
			d.Kind = constants.DiagUnreadableDocument
			d.Message = "document could not be read"
		case errors.Is(err, common.ErrUnsupportedDocument):
			out.Status = StatusUnsupported
			d.Kind = constants.DiagUnsupportedDocument
			d.Message = "unsupported document type"
		default:
			out.Status = StatusFailed
			d.Kind = constants.DiagExtractionFailed
			d.Message = "text extraction failed"
		}
		d.Message += ": " + err.Error()
		return out, []entity.Diagnostic{d}
	}
	out.Method = text.Method
	out.Pages = text.Pages
	for _, w := range text.Warnings {
		log.Debug("extraction warning", "warning", w)
	}

	var diags []entity.Diagnostic
	rec, err := p.Fields.Parse(text.Text)
	var incomplete *parse.IncompleteError
	switch {
	case err == nil:
		rec.Document = doc.Filename
		out.Identifier = rec.Identifier
		if derr := builder.Add(rec); derr != nil {
			out.Status = StatusDuplicate
			d := base
			d.Kind = constants.DiagDuplicateRecord
			d.Identifier = rec.Identifier
			d.CompanyName = rec.CompanyName
			d.Date = rec.Date.Format(constants.DateLayout)
			d.Message = fmt.Sprintf("duplicate record found: %s, %s, %s, %s",
				rec.Identifier, rec.CompanyName, rec.FormattedAmount, d.Date)
			diags = append(diags, d)
		} else {
			out.Status = StatusAccepted
		}
	case errors.As(err, &incomplete):
		out.Status = StatusIncomplete
		out.Identifier = incomplete.Identifier
		out.Error = err.Error()
		d := base
		d.Kind = constants.DiagIncompleteExtraction
		d.Identifier = incomplete.Identifier
		d.Message = "incomplete data extracted: " + err.Error()
		diags = append(diags, d)
	default:
		out.Status = StatusFailed
		out.Error = err.Error()
		d := base
		d.Kind = constants.DiagExtractionFailed
		d.Message = "field parsing failed: " + err.Error()
		return out, append(diags, d)
	}

	if p.Ledger.HasHashColumn() {
		if d, ok := p.verify(tmpPath, out.Identifier, &out); ok {
			d.Document = doc.Filename
			diags = append(diags, d)
		}
	}
	return out, diags
}

// stage copies the document body into a temp file carrying its extension, so
// the extractor can dispatch on it.
func (p *Processor) stage(doc entity.SourceDocument) (string, error) {
	f, err := os.CreateTemp(p.tempDir, "audity-doc-*"+filepath.Ext(doc.Filename))
	if err != nil {
		return "", err
	}
	if _, err := f.Write(doc.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (p *Processor) verify(path, id string, out *DocumentResult) (entity.Diagnostic, bool) {
	f, err := os.Open(path)
	if err != nil {
		p.Logger.Warn("could not reopen document for hashing", "path", path, "error", err)
		return entity.Diagnostic{}, false
	}
	defer f.Close()

	res, err := p.Verifier.Verify(f, id, p.Ledger)
	if err != nil {
		p.Logger.Warn("document hashing failed", "path", path, "error", err)
		return entity.Diagnostic{}, false
	}
	out.Integrity = &res

	d := entity.Diagnostic{Identifier: id, Severity: constants.SeverityWarning}
	switch res.Outcome {
	case integrity.Matched:
		d.Kind = constants.DiagHashMatched
		d.Severity = constants.SeverityInfo
		d.Message = fmt.Sprintf("hash matched for unique id %s", id)
	case integrity.Mismatched:
		d.Kind = constants.DiagHashMismatch
		d.Message = fmt.Sprintf("hash mismatch for unique id %s: document may have been altered", id)
	case integrity.NoStoredHash:
		d.Kind = constants.DiagNoStoredHash
		d.Message = fmt.Sprintf("no stored hash for unique id %s", id)
	default:
		d.Kind = constants.DiagIdentifierNotFound
		if id == "" {
			d.Message = "unique id not found in document"
		} else {
			d.Message = fmt.Sprintf("unique id %s not found in ledger", id)
		}
	}
	return d, true
}
