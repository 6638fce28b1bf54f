package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	Lang        string // default "eng"

	// PSM is the tesseract page segmentation mode. 6 assumes a single uniform
	// block of text, which fits the label/value bill layout.
	PSM int

	TempDir string // scratch space for grayscale renders; "" -> os.TempDir()
}

type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE
	Method     string // "pdf-text" | "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
}

// Extractor turns source documents into plain text. It holds the OCR engine
// settings and is safe to reuse across a run; build one per process and pass it
// to whoever needs it.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
	ready  bool
}

type Option func(*Extractor)

// WithRunner replaces the command runner used for tesseract.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM == 0 {
		cfg.PSM = 6
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Warmup probes the OCR engine once (tesseract --version) so a missing binary or
// language pack is reported before the first image is processed. It is the only
// setup cost; calling it again is a no-op after success.
func (e *Extractor) Warmup(ctx context.Context) error {
	if e.ready {
		return nil
	}
	start := time.Now()
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")
	if err != nil {
		return fmt.Errorf("tesseract warmup: %w: %s", err, truncate(string(errb), 512))
	}
	e.ready = true
	e.logger.Debug("ocr engine ready",
		"binary", e.cfg.Tesseract,
		"version", firstLine(string(out)),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return Result{}, fmt.Errorf("%w: %q", common.ErrUnsupportedDocument, ext)
	}
}

// UnreadableError reports that the decoder could not open a document's bytes.
type UnreadableError struct {
	Path   string
	Format string
	Cause  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable %s document %q: %v", e.Format, filepath.Base(e.Path), e.Cause)
}

func (e *UnreadableError) Unwrap() []error {
	return []error{common.ErrUnreadableDocument, e.Cause}
}
