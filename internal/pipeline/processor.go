// Package pipeline runs a batch of source documents through extraction,
// parsing, dedup, integrity verification and reconciliation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/dedup"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/extract"
	"github.com/joseph-ayodele/audity/internal/integrity"
	"github.com/joseph-ayodele/audity/internal/ledger"
	"github.com/joseph-ayodele/audity/internal/reconcile"
)

type Config struct {
	TempDir        string // "" -> os.TempDir()
	HashChunkSize  int
	CurrencySymbol string
}

// Processor coordinates text extraction then field parsing per document, and
// reconciles the batch at the end. Documents are handled one at a time.
type Processor struct {
	Logger   *slog.Logger
	Text     extract.TextExtractor
	Fields   extract.FieldExtractor
	Ledger   *ledger.Ledger
	Verifier *integrity.Verifier
	Engine   *reconcile.Engine

	tempDir string
	now     func() time.Time
}

func NewProcessor(cfg Config, text extract.TextExtractor, fields extract.FieldExtractor, l *ledger.Ledger, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = constants.DefaultCurrencySymbol
	}
	return &Processor{
		Logger:   logger,
		Text:     text,
		Fields:   fields,
		Ledger:   l,
		Verifier: integrity.NewVerifier(cfg.HashChunkSize),
		Engine:   reconcile.NewEngine(cfg.CurrencySymbol, logger),
		tempDir:  cfg.TempDir,
		now:      time.Now,
	}
}

// Run processes docs in order. Per-document failures become diagnostics; the
// returned error is reserved for a missing collaborator.
func (p *Processor) Run(ctx context.Context, docs []entity.SourceDocument) (*RunResult, error) {
	if p.Text == nil || p.Fields == nil || p.Ledger == nil {
		return nil, common.NewAppError("PIPELINE_ERROR", "processor is missing a collaborator", common.ErrInvalidInput)
	}

	res := &RunResult{RunID: uuid.NewString(), StartedAt: p.now().UTC()}
	ctx = common.WithRunID(ctx, res.RunID)
	log := common.LoggerFromContext(ctx, p.Logger)
	log.Info("batch started", "documents", len(docs), "ledger_rows", p.Ledger.Len())

	builder := dedup.NewBuilder()
	for _, doc := range docs {
		dctx := common.WithDocument(ctx, doc.Filename)
		out, diags := p.processDocument(dctx, doc, builder)
		res.Documents = append(res.Documents, out)
		p.emit(dctx, res, diags...)
	}

	accepted := builder.Records()
	res.Records = builder.Sorted()
	res.Reconciliation = p.Engine.Reconcile(accepted, p.Ledger)
	p.emit(ctx, res, reconciliationDiagnostics(accepted, res.Reconciliation)...)
	if len(accepted) == 0 {
		p.emit(ctx, res, entity.Diagnostic{
			Kind:     constants.DiagEmptyBatch,
			Severity: constants.SeverityWarning,
			Message:  "no valid data was parsed from the uploaded documents",
		})
	}

	res.FinishedAt = p.now().UTC()
	log.Info("batch finished",
		"records", len(res.Records),
		"diagnostics", len(res.Diagnostics),
		"identifiers_clean", res.Reconciliation.IdentifiersClean,
		"pairings_clean", res.Reconciliation.PairingsClean,
		"gate_open", res.GateOpen(),
		"duration_ms", res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) emit(ctx context.Context, res *RunResult, diags ...entity.Diagnostic) {
	log := common.LoggerFromContext(ctx, p.Logger)
	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, d)
		attrs := []any{"kind", d.Kind, "unique_id", d.Identifier}
		if d.Severity == constants.SeverityInfo {
			log.Info(d.Message, attrs...)
		} else {
			log.Warn(d.Message, attrs...)
		}
	}
}

// reconciliationDiagnostics reports unmatched items in the order their
// records were accepted. Each unmatched identifier is reported once.
func reconciliationDiagnostics(records []entity.ExtractedRecord, r reconcile.Result) []entity.Diagnostic {
	unmatched := make(map[string]bool, len(r.UnmatchedIdentifiers))
	for _, id := range r.UnmatchedIdentifiers {
		unmatched[id] = true
	}
	var out []entity.Diagnostic
	for _, rec := range records {
		if !unmatched[rec.Identifier] {
			continue
		}
		unmatched[rec.Identifier] = false
		out = append(out, entity.Diagnostic{
			Kind:        constants.DiagUnmatchedIdentifier,
			Severity:    constants.SeverityWarning,
			Document:    rec.Document,
			Identifier:  rec.Identifier,
			CompanyName: rec.CompanyName,
			Date:        rec.Date.Format(constants.DateLayout),
			Message:     fmt.Sprintf("unique id %s not found in ledger", rec.Identifier),
		})
	}
	for _, pr := range r.UnmatchedPairs {
		out = append(out, entity.Diagnostic{
			Kind:        constants.DiagUnmatchedPairing,
			Severity:    constants.SeverityWarning,
			Document:    pr.Document,
			Identifier:  pr.Identifier,
			CompanyName: pr.CompanyName,
			Date:        pr.Date,
			Message:     fmt.Sprintf("no ledger row for company %q with amount %s", pr.CompanyName, pr.FormattedAmount),
		})
	}
	return out
}
