package ocr

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joseph-ayodele/audity/constants"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	res := Result{SourceType: constants.IMAGE, Method: "image-ocr", Pages: 1, Language: e.cfg.Lang}

	gray, err := loadGray(path)
	if err != nil {
		return res, &UnreadableError{Path: path, Format: constants.IMAGE, Cause: err}
	}

	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "audity-ocr-*")
	if err != nil {
		return res, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	grayPath := filepath.Join(tmpDir, "gray.png")
	if err := writePNG(grayPath, gray); err != nil {
		return res, fmt.Errorf("write grayscale render: %w", err)
	}

	txt, warn, err := e.tesseractOCR(ctx, grayPath)
	res.Warnings = append(res.Warnings, warn...)
	if err != nil {
		return res, err
	}
	res.Text = txt
	return res, nil
}

// tesseractOCR returns tesseract's stdout as-is; no post-correction is applied.
func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang> --psm <n>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

func loadGray(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return toGray(img), nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
