package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/audity/internal/async"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/export"
	"github.com/joseph-ayodele/audity/internal/extract"
	"github.com/joseph-ayodele/audity/internal/ingest"
	"github.com/joseph-ayodele/audity/internal/ledger"
	"github.com/joseph-ayodele/audity/internal/ocr"
	"github.com/joseph-ayodele/audity/internal/parse"
	"github.com/joseph-ayodele/audity/internal/pipeline"
	"github.com/joseph-ayodele/audity/internal/report"
	"github.com/joseph-ayodele/audity/internal/repository"
	"github.com/joseph-ayodele/audity/internal/services/audit"
)

// Exit codes. A batch that did not reconcile is not an error, but callers
// scripting the audit need to tell it apart from a clean one.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitGateShut = 3
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		envFile    = flag.String("env", ".env", "dotenv file to preload (missing file is ignored)")
		ledgerPath = flag.String("ledger", "", "reference ledger (.csv or .xlsx); overrides AUDITY_LEDGER_PATH")
		dir        = flag.String("dir", "", "directory of documents to audit")
		outDir     = flag.String("out", "", "output directory; overrides AUDITY_OUTPUT_DIR")
		reportSrc  = flag.String("report-source", "", "file the audit report summarizes (defaults to the ledger)")
		dbURL      = flag.String("db", "", "run-history DSN (sqlite://, file:, postgres://); overrides DB_URL")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		watch      = flag.Bool("watch", false, "keep running and audit new documents as they arrive in -dir")
		debounce   = flag.Duration("debounce", 2*time.Second, "quiet period that closes a watch batch")
		history    = flag.Int("history", 0, "print the N most recent runs from the history store and exit")
	)
	flag.Usage = func() {
		printError("usage: audity -ledger ledger.csv [-dir docs | file ...] [flags]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		printError("Error: loading %s: %v\n", *envFile, err)
		return exitUsage
	}

	cfg := common.LoadConfig()
	override(&cfg.Audit.LedgerPath, *ledgerPath)
	override(&cfg.Audit.OutputDir, *outDir)
	override(&cfg.Audit.ReportSource, *reportSrc)
	override(&cfg.Database.DSN, *dbURL)
	if cfg.Audit.ReportSource == "" {
		cfg.Audit.ReportSource = cfg.Audit.LedgerPath
	}

	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs repository.RunRepository
	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		}, logger)
		if err != nil {
			logger.Error("failed to open run history", "error", err)
			return exitFailure
		}
		defer db.Close()
		runs = repository.NewRunRepository(db)
	}

	if *history > 0 {
		return printHistory(ctx, runs, *history)
	}

	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		return exitUsage
	}
	if *dir == "" && flag.NArg() == 0 {
		printError("Error: -dir or at least one document path is required\n")
		flag.Usage()
		return exitUsage
	}
	if *watch && *dir == "" {
		printError("Error: -watch requires -dir\n")
		return exitUsage
	}

	l, err := ledger.Load(cfg.Audit.LedgerPath,
		ledger.WithCurrencySymbol(cfg.Audit.CurrencySymbol), ledger.WithLogger(logger))
	if err != nil {
		logger.Error("failed to load ledger", "path", cfg.Audit.LedgerPath, "error", err)
		return exitFailure
	}
	logger.Info("ledger loaded", "path", cfg.Audit.LedgerPath, "rows", l.Len(), "hash_column", l.HasHashColumn(), "warnings", len(l.Warnings))

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Lang:        cfg.OCR.Lang,
		PSM:         cfg.OCR.PSM,
		TempDir:     cfg.Audit.TempDir,
	}, logger)
	if err := extractor.Warmup(ctx); err != nil {
		// PDFs with a text layer still work; images will be reported unreadable
		logger.Warn("ocr engine unavailable", "error", err)
	}

	proc := pipeline.NewProcessor(pipeline.Config{
		TempDir:        cfg.Audit.TempDir,
		HashChunkSize:  cfg.Audit.HashChunkSize,
		CurrencySymbol: cfg.Audit.CurrencySymbol,
	}, extract.NewOCRAdapter(extractor), parse.NewParser(cfg.Audit.CurrencySymbol), l, logger)

	gen := report.NewGenerator(logger)
	gen.CurrencySymbol = cfg.Audit.CurrencySymbol

	svc := audit.NewService(audit.Config{
		OutputDir:    cfg.Audit.OutputDir,
		ReportSource: cfg.Audit.ReportSource,
		PerRunDirs:   *watch,
	}, ingest.NewFSIngestor(logger), proc, export.NewService(logger), gen, runs, logger)

	if *watch {
		return watchLoop(ctx, svc, ingest.WatchConfig{
			Roots:       []string{*dir},
			InitialScan: true,
			SkipHidden:  *skipHidden,
			Debounce:    *debounce,
		}, logger)
	}

	var out *audit.Outcome
	if *dir != "" {
		out, err = svc.AuditDirectory(ctx, audit.DirectoryRequest{RootPath: *dir, SkipHidden: *skipHidden})
	} else {
		out, err = svc.AuditPaths(ctx, flag.Args())
	}
	if err != nil {
		logger.Error("audit failed", "error", err)
		return exitFailure
	}

	printSummary(out)
	if !out.Run.GateOpen() {
		return exitGateShut
	}
	return exitOK
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func watchLoop(ctx context.Context, svc *audit.Service, wc ingest.WatchConfig, logger *slog.Logger) int {
	batches, errs, err := ingest.StartWatcher(ctx, wc, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return exitFailure
	}
	queue := async.NewBatchQueue(svc.HandleJob, logger)
	logger.Info("watching for documents", "root", wc.Roots[0], "debounce", wc.Debounce)

	for {
		select {
		case paths, ok := <-batches:
			if !ok {
				batches = nil
				continue
			}
			if err := queue.Enqueue(ctx, audit.NewJob(paths)); err != nil {
				logger.Warn("batch dropped", "documents", len(paths), "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			return exitOK
		}
	}
}

func printSummary(out *audit.Outcome) {
	res := out.Run
	fmt.Printf("Audit run %s complete!\n", res.RunID)
	fmt.Printf("- Documents: %d (accepted %d, duplicate %d, incomplete %d, unreadable %d, unsupported %d, failed %d)\n",
		len(res.Documents),
		res.CountStatus(pipeline.StatusAccepted),
		res.CountStatus(pipeline.StatusDuplicate),
		res.CountStatus(pipeline.StatusIncomplete),
		res.CountStatus(pipeline.StatusUnreadable),
		res.CountStatus(pipeline.StatusUnsupported),
		res.CountStatus(pipeline.StatusFailed))
	if len(out.LoadErrors) > 0 {
		fmt.Printf("- Not loaded: %d\n", len(out.LoadErrors))
	}
	fmt.Printf("- Records: %d\n", len(res.Records))
	fmt.Printf("- Diagnostics: %d\n", len(res.Diagnostics))
	fmt.Printf("- Identifiers clean: %t\n", res.Reconciliation.IdentifiersClean)
	fmt.Printf("- Pairings clean: %t\n", res.Reconciliation.PairingsClean)
	fmt.Printf("- Outputs: %s, %s, %s\n", out.Outputs.RecordsCSV, out.Outputs.RecordsXLSX, out.Outputs.SummaryJSON)
	if out.Report != nil {
		fmt.Printf("- Report: %s, %s\n", out.Report.ReportPDF, out.Report.SummaryXLSX)
	} else {
		fmt.Printf("- Report: not generated\n")
	}
}

func printHistory(ctx context.Context, runs repository.RunRepository, n int) int {
	if runs == nil {
		printError("Error: -history needs a run-history store (-db or DB_URL)\n")
		return exitUsage
	}
	list, err := runs.ListRuns(ctx, n)
	if err != nil {
		printError("Error: %v\n", err)
		return exitFailure
	}
	for _, r := range list {
		fmt.Printf("%s  %s  documents=%d accepted=%d records=%d gate_open=%t\n",
			r.StartedAt.Format(time.RFC3339), r.RunID, r.Documents, r.Accepted, r.Records, r.GateOpen)
	}
	return exitOK
}
