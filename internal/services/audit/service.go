// Package audit runs a whole batch: load documents, extract and reconcile,
// write outputs, generate the report when the gate is open, and record the
// run in history.
package audit

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/audity/internal/async"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
	"github.com/joseph-ayodele/audity/internal/export"
	"github.com/joseph-ayodele/audity/internal/ingest"
	"github.com/joseph-ayodele/audity/internal/pipeline"
	"github.com/joseph-ayodele/audity/internal/report"
	"github.com/joseph-ayodele/audity/internal/repository"
)

type Config struct {
	OutputDir string
	// ReportSource is the file the audit report summarizes; "" skips the report.
	ReportSource string
	// PerRunDirs writes each run under OutputDir/<run id>.
	PerRunDirs bool
}

// Service wires the batch stages together. Runs may be nil to skip history.
type Service struct {
	cfg      Config
	ingestor *ingest.FSIngestor
	proc     *pipeline.Processor
	exporter *export.Service
	reports  *report.Generator
	runs     repository.RunRepository
	logger   *slog.Logger
}

func NewService(cfg Config, ing *ingest.FSIngestor, proc *pipeline.Processor, exp *export.Service,
	gen *report.Generator, runs repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		ingestor: ing,
		proc:     proc,
		exporter: exp,
		reports:  gen,
		runs:     runs,
		logger:   logger,
	}
}

// Outcome is what one audit produced.
type Outcome struct {
	Run        *pipeline.RunResult
	Outputs    export.Paths
	Report     *report.Artifacts
	LoadErrors []ingest.FileError
	Stats      ingest.DirStats
}

// DirectoryRequest audits every supported file under RootPath.
type DirectoryRequest struct {
	RootPath   string
	SkipHidden bool
}

// AuditDirectory loads the directory in walk order and audits it as one batch.
func (s *Service) AuditDirectory(ctx context.Context, req DirectoryRequest) (*Outcome, error) {
	root := strings.TrimSpace(req.RootPath)
	if root == "" {
		s.logger.Error("audit directory request missing root_path")
		return nil, common.NewAppError("AUDIT_ERROR", "root_path is required", common.ErrInvalidInput)
	}

	s.logger.Info("starting directory audit", "root", root, "skip_hidden", req.SkipHidden)
	docs, stats, failed, err := s.ingestor.LoadDirectory(root, req.SkipHidden)
	if err != nil {
		return nil, common.NewAppError("AUDIT_ERROR", "load directory", err)
	}
	s.logger.Info("directory loaded", "scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded, "failed", stats.Failed)

	out, err := s.audit(ctx, docs, failed)
	if out != nil {
		out.Stats = stats
	}
	return out, err
}

// AuditPaths audits the given files, in order, as one batch.
func (s *Service) AuditPaths(ctx context.Context, paths []string) (*Outcome, error) {
	if len(paths) == 0 {
		s.logger.Warn("audit requested with no paths")
	}
	docs, failed := s.ingestor.LoadPaths(paths)
	return s.audit(ctx, docs, failed)
}

// HandleJob adapts AuditPaths to the batch queue.
func (s *Service) HandleJob(ctx context.Context, job async.Job) error {
	_, err := s.AuditPaths(ctx, job.Paths)
	return err
}

// NewJob builds a queue job for a watcher batch.
func NewJob(paths []string) async.Job {
	return async.Job{ID: uuid.NewString(), Paths: paths, SubmittedAt: time.Now()}
}

func (s *Service) audit(ctx context.Context, docs []entity.SourceDocument, failed []ingest.FileError) (*Outcome, error) {
	for _, fe := range failed {
		s.logger.Warn("document could not be loaded", "path", fe.Path, "error", fe.Err)
	}

	run, err := s.proc.Run(ctx, docs)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Run: run, LoadErrors: failed}
	log := common.LoggerFromContext(common.WithRunID(ctx, run.RunID), s.logger)

	dir := s.cfg.OutputDir
	if s.cfg.PerRunDirs {
		dir = filepath.Join(dir, run.RunID)
	}
	if out.Outputs, err = s.exporter.WriteAll(dir, run); err != nil {
		return out, common.NewAppError("AUDIT_ERROR", "write outputs", err)
	}

	switch {
	case !run.GateOpen():
		log.Warn("report withheld: batch did not reconcile", "error", run.Reconciliation.Err())
	case s.reports == nil || s.cfg.ReportSource == "":
		log.Info("batch reconciled; no report source configured")
	default:
		art, err := s.reports.Generate(ctx, s.cfg.ReportSource, dir)
		if err != nil {
			return out, common.NewAppError("AUDIT_ERROR", "generate report", err)
		}
		out.Report = &art
	}

	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run.Summary()); err != nil {
			return out, err
		}
	}

	log.Info("audit complete",
		"documents", len(run.Documents),
		"records", len(run.Records),
		"diagnostics", len(run.Diagnostics),
		"gate_open", run.GateOpen())
	return out, nil
}
